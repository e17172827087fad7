package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Details is the fixed five-slot attribute record of an offer.
// Slots keep their position even when empty.
type Details struct {
	Brand     string
	Size      string
	Condition string
	Color     string
	Location  string
}

type detailSlot struct {
	key   string
	value *string
}

func (d *Details) slots() []detailSlot {
	return []detailSlot{
		{"brand", &d.Brand},
		{"size", &d.Size},
		{"condition", &d.Condition},
		{"color", &d.Color},
		{"location", &d.Location},
	}
}

// MarshalJSON encodes the details as an ordered array of single-key objects.
func (d Details) MarshalJSON() ([]byte, error) {
	slots := d.slots()
	out := make([]map[string]string, len(slots))
	for i, s := range slots {
		out[i] = map[string]string{s.key: *s.value}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the ordered array form produced by MarshalJSON.
func (d *Details) UnmarshalJSON(data []byte) error {
	var in []map[string]string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	slots := d.slots()
	if len(in) > len(slots) {
		return fmt.Errorf("details: expected at most %d entries, got %d", len(slots), len(in))
	}
	for i, entry := range in {
		*slots[i].value = entry[slots[i].key]
	}
	return nil
}

// Asset describes a file stored by the media uploader.
type Asset struct {
	PublicID    string    `json:"public_id,omitempty"`
	Folder      string    `json:"folder,omitempty"`
	URL         string    `json:"url,omitempty"`
	Format      string    `json:"format,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Bytes       int64     `json:"bytes,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// IsZero reports whether no file has been stored for the asset.
func (a Asset) IsZero() bool {
	return a.PublicID == ""
}

// Offer represents a marketplace listing.
type Offer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Details     Details   `json:"details"`
	OwnerID     string    `json:"-"`
	Owner       *Owner    `json:"owner"`
	Image       Asset     `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// OfferSummary is the reduced offer projection returned by searches.
type OfferSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Owner *Owner  `json:"owner"`
}

// OfferSort selects the ordering of a search.
type OfferSort string

const (
	SortNone      OfferSort = ""
	SortPriceAsc  OfferSort = "price-asc"
	SortPriceDesc OfferSort = "price-desc"
)

// OfferFilter is the conjunctive search predicate. Nil bounds are not applied.
type OfferFilter struct {
	Title    string
	PriceMin *float64
	PriceMax *float64
}

// OfferQuery is a parsed search request. Limit 0 means unbounded.
type OfferQuery struct {
	Filter OfferFilter
	Sort   OfferSort
	Page   int
	Limit  int
}

// Skip returns the number of matches to skip before the requested page.
func (q OfferQuery) Skip() int {
	if q.Limit <= 0 || q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// OfferList is the search response.
type OfferList struct {
	Count  int64          `json:"count"`
	Offers []OfferSummary `json:"offers"`
}

// OfferInput carries the raw publish/update form values. An empty string
// means the field was not supplied.
type OfferInput struct {
	Title       string
	Description string
	Price       string
	Brand       string
	Size        string
	Condition   string
	Color       string
	City        string
}

// MessageResponse is a plain {message} body.
type MessageResponse struct {
	Message string `json:"message"`
}
