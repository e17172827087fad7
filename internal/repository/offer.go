package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/brocante/brocante-api/internal/model"
)

var ErrOfferNotFound = errors.New("offer not found")

// OfferRepository handles offer persistence and search.
type OfferRepository struct {
	db *sql.DB
}

// NewOfferRepository creates a new OfferRepository.
func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Create inserts a new offer. The caller assigns the ID.
func (r *OfferRepository) Create(ctx context.Context, offer *model.Offer) error {
	details, image, err := encodeOfferJSON(offer)
	if err != nil {
		return err
	}

	query := `INSERT INTO offers (id, name, description, price, details, owner_id, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		offer.ID,
		offer.Name,
		offer.Description,
		offer.Price,
		details,
		offer.OwnerID,
		image,
		offer.CreatedAt,
	)
	return err
}

// Update rewrites the mutable fields of an offer. Owner and creation time are never changed.
func (r *OfferRepository) Update(ctx context.Context, offer *model.Offer) error {
	details, image, err := encodeOfferJSON(offer)
	if err != nil {
		return err
	}

	query := `UPDATE offers SET name = ?, description = ?, price = ?, details = ?, image = ? WHERE id = ?`

	_, err = r.db.ExecContext(ctx, query,
		offer.Name,
		offer.Description,
		offer.Price,
		details,
		image,
		offer.ID,
	)
	return err
}

// GetByID retrieves an offer with its owner projection joined in.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*model.Offer, error) {
	query := `SELECT o.id, o.name, o.description, o.price, o.details, o.owner_id, o.image, o.created_at,
			u.id, u.username, u.phone, u.avatar
		FROM offers o
		LEFT JOIN users u ON u.id = o.owner_id
		WHERE o.id = ?`

	var (
		offer   model.Offer
		details []byte
		image   []byte
		owner   ownerColumns
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&offer.ID, &offer.Name, &offer.Description, &offer.Price, &details, &offer.OwnerID, &image, &offer.CreatedAt,
		&owner.id, &owner.username, &owner.phone, &owner.avatar,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(details, &offer.Details); err != nil {
		return nil, fmt.Errorf("decoding offer details: %w", err)
	}
	if len(image) > 0 {
		if err := json.Unmarshal(image, &offer.Image); err != nil {
			return nil, fmt.Errorf("decoding offer image: %w", err)
		}
	}
	offer.Owner = owner.project()

	return &offer, nil
}

// Find returns one page of offers matching the query's filter, in the query's order.
func (r *OfferRepository) Find(ctx context.Context, q model.OfferQuery) ([]model.OfferSummary, error) {
	where, args := buildOfferFilter(q.Filter)

	query := `SELECT o.id, o.name, o.price, u.id, u.username, u.phone, u.avatar
		FROM offers o
		LEFT JOIN users u ON u.id = o.owner_id` + where + orderOffersBy(q.Sort)

	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Skip())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := []model.OfferSummary{}
	for rows.Next() {
		var (
			s     model.OfferSummary
			owner ownerColumns
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &owner.id, &owner.username, &owner.phone, &owner.avatar); err != nil {
			return nil, err
		}
		s.Owner = owner.project()
		offers = append(offers, s)
	}

	return offers, rows.Err()
}

// Count returns the number of offers matching the filter, ignoring pagination.
func (r *OfferRepository) Count(ctx context.Context, filter model.OfferFilter) (int64, error) {
	where, args := buildOfferFilter(filter)

	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers o`+where, args...).Scan(&count)
	return count, err
}

// Delete removes an offer record.
func (r *OfferRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrOfferNotFound
	}

	return nil
}

// buildOfferFilter renders the conjunctive WHERE clause for a filter.
func buildOfferFilter(f model.OfferFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	// The binary collation keeps matching accent-sensitive; LOWER handles case.
	if f.Title != "" {
		conds = append(conds, "LOWER(o.name) COLLATE utf8mb4_bin LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(f.Title))+"%")
	}
	if f.PriceMin != nil {
		conds = append(conds, "o.price >= ?")
		args = append(args, *f.PriceMin)
	}
	if f.PriceMax != nil {
		conds = append(conds, "o.price <= ?")
		args = append(args, *f.PriceMax)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderOffersBy(sort model.OfferSort) string {
	switch sort {
	case model.SortPriceAsc:
		return " ORDER BY o.price ASC, o.created_at ASC, o.id ASC"
	case model.SortPriceDesc:
		return " ORDER BY o.price DESC, o.created_at ASC, o.id ASC"
	default:
		return " ORDER BY o.created_at ASC, o.id ASC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func encodeOfferJSON(offer *model.Offer) ([]byte, []byte, error) {
	details, err := json.Marshal(offer.Details)
	if err != nil {
		return nil, nil, err
	}
	image, err := json.Marshal(offer.Image)
	if err != nil {
		return nil, nil, err
	}
	return details, image, nil
}

// ownerColumns scans the LEFT JOINed user columns, which are all NULL when the
// owner no longer exists.
type ownerColumns struct {
	id       sql.NullString
	username sql.NullString
	phone    sql.NullString
	avatar   []byte
}

func (c ownerColumns) project() *model.Owner {
	if !c.id.Valid {
		return nil
	}
	owner := &model.Owner{
		ID: c.id.String,
		Account: model.Account{
			Username: c.username.String,
			Phone:    c.phone.String,
		},
	}
	if len(c.avatar) > 0 {
		owner.Account.Avatar = json.RawMessage(c.avatar)
	}
	return owner
}
