package repository

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/brocante/brocante-api/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildOfferFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.OfferFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty",
			filter:    model.OfferFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "title lowercased",
			filter:    model.OfferFilter{Title: "Nike"},
			wantWhere: " WHERE LOWER(o.name) COLLATE utf8mb4_bin LIKE ?",
			wantArgs:  []any{"%nike%"},
		},
		{
			name:      "title metacharacters escaped",
			filter:    model.OfferFilter{Title: `50%_off\`},
			wantWhere: " WHERE LOWER(o.name) COLLATE utf8mb4_bin LIKE ?",
			wantArgs:  []any{`%50\%\_off\\%`},
		},
		{
			name:      "accented title kept as is",
			filter:    model.OfferFilter{Title: "Café"},
			wantWhere: " WHERE LOWER(o.name) COLLATE utf8mb4_bin LIKE ?",
			wantArgs:  []any{"%café%"},
		},
		{
			name:      "surrounding spaces kept",
			filter:    model.OfferFilter{Title: " red "},
			wantWhere: " WHERE LOWER(o.name) COLLATE utf8mb4_bin LIKE ?",
			wantArgs:  []any{"% red %"},
		},
		{
			name:      "min only",
			filter:    model.OfferFilter{PriceMin: floatPtr(5)},
			wantWhere: " WHERE o.price >= ?",
			wantArgs:  []any{5.0},
		},
		{
			name:      "max only",
			filter:    model.OfferFilter{PriceMax: floatPtr(20)},
			wantWhere: " WHERE o.price <= ?",
			wantArgs:  []any{20.0},
		},
		{
			name:      "all combined",
			filter:    model.OfferFilter{Title: "shoe", PriceMin: floatPtr(0), PriceMax: floatPtr(99.5)},
			wantWhere: " WHERE LOWER(o.name) COLLATE utf8mb4_bin LIKE ? AND o.price >= ? AND o.price <= ?",
			wantArgs:  []any{"%shoe%", 0.0, 99.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildOfferFilter(tt.filter)
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %#v, want %#v", args, tt.wantArgs)
			}
		})
	}
}

func TestOrderOffersBy(t *testing.T) {
	tests := map[model.OfferSort]string{
		model.SortPriceAsc:  " ORDER BY o.price ASC, o.created_at ASC, o.id ASC",
		model.SortPriceDesc: " ORDER BY o.price DESC, o.created_at ASC, o.id ASC",
		model.SortNone:      " ORDER BY o.created_at ASC, o.id ASC",
		"price-sideways":    " ORDER BY o.created_at ASC, o.id ASC",
	}
	for sort, want := range tests {
		if got := orderOffersBy(sort); got != want {
			t.Errorf("orderOffersBy(%q) = %q, want %q", sort, got, want)
		}
	}
}

func TestOfferFindPaginated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)

	rows := sqlmock.NewRows([]string{"o.id", "o.name", "o.price", "u.id", "u.username", "u.phone", "u.avatar"}).
		AddRow("o1", "Red shoe", 12.0, "u1", "alice", nil, nil).
		AddRow("o2", "Blue shoe", 15.0, nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(o.name) COLLATE utf8mb4_bin LIKE ? AND o.price >= ? ORDER BY o.price ASC, o.created_at ASC, o.id ASC LIMIT ? OFFSET ?")).
		WithArgs("%shoe%", 10.0, 2, 4).
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), model.OfferQuery{
		Filter: model.OfferFilter{Title: "Shoe", PriceMin: floatPtr(10)},
		Sort:   model.SortPriceAsc,
		Page:   3,
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("Find() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Find() returned %d offers, want 2", len(got))
	}
	if got[0].Owner == nil || got[0].Owner.Account.Username != "alice" {
		t.Errorf("Find()[0].Owner = %+v, want alice", got[0].Owner)
	}
	if got[1].Owner != nil {
		t.Errorf("Find()[1].Owner = %+v, want nil for a missing owner", got[1].Owner)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOfferFindUnbounded(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)

	mock.ExpectQuery(`ORDER BY o\.created_at ASC, o\.id ASC$`).
		WillReturnRows(sqlmock.NewRows([]string{"o.id", "o.name", "o.price", "u.id", "u.username", "u.phone", "u.avatar"}))

	got, err := repo.Find(context.Background(), model.OfferQuery{Page: 4})
	if err != nil {
		t.Fatalf("Find() unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Find() = %#v, want empty non-nil slice", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOfferCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM offers o WHERE o.price <= ?")).
		WithArgs(20.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), model.OfferFilter{PriceMax: floatPtr(20)})
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if count != 7 {
		t.Errorf("Count() = %d, want 7", count)
	}
}

func TestOfferGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	details := []byte(`[{"brand":"Nike"},{"size":"42"},{"condition":""},{"color":"red"},{"location":"Paris"}]`)
	image := []byte(`{"public_id":"offers/o1/a.jpg","url":"https://cdn.example.com/offers/o1/a.jpg"}`)

	rows := sqlmock.NewRows([]string{"o.id", "o.name", "o.description", "o.price", "o.details", "o.owner_id", "o.image", "o.created_at",
		"u.id", "u.username", "u.phone", "u.avatar"}).
		AddRow("o1", "Red shoe", "barely worn", 12.5, details, "u1", image, created, "u1", "alice", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.id = ?")).WithArgs("o1").WillReturnRows(rows)

	offer, err := repo.GetByID(context.Background(), "o1")
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}

	wantDetails := model.Details{Brand: "Nike", Size: "42", Color: "red", Location: "Paris"}
	if offer.Details != wantDetails {
		t.Errorf("GetByID() details = %+v, want %+v", offer.Details, wantDetails)
	}
	if offer.Image.PublicID != "offers/o1/a.jpg" {
		t.Errorf("GetByID() image = %+v", offer.Image)
	}
	if offer.Owner == nil || offer.Owner.ID != "u1" {
		t.Errorf("GetByID() owner = %+v", offer.Owner)
	}
}

func TestOfferGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"o.id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrOfferNotFound", err)
	}
}

func TestOfferDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM offers WHERE id = ?")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("Delete() error = %v, want ErrOfferNotFound", err)
	}
}

func TestOfferUpdateKeepsOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOfferRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE offers SET name = ?, description = ?, price = ?, details = ?, image = ? WHERE id = ?")).
		WithArgs("New name", "", 30.0, sqlmock.AnyArg(), sqlmock.AnyArg(), "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &model.Offer{ID: "o1", Name: "New name", Price: 30, OwnerID: "someone-else"})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
