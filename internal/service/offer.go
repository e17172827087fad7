package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/brocante/brocante-api/internal/media"
	"github.com/brocante/brocante-api/internal/model"
	"github.com/brocante/brocante-api/internal/repository"
)

const (
	MaxTitleLength       = 50
	MaxDescriptionLength = 500
	MaxPrice             = 100000
)

// OfferService handles offer publication, search and maintenance.
type OfferService struct {
	offers OfferStore
	media  MediaUploader
	folder string
	now    func() time.Time
}

// NewOfferService creates a new OfferService. Pictures of an offer are stored
// under folder/<offer id>.
func NewOfferService(offers OfferStore, uploader MediaUploader, folder string) *OfferService {
	return &OfferService{
		offers: offers,
		media:  uploader,
		folder: folder,
		now:    time.Now,
	}
}

// Publish validates and stores a new offer, then uploads its picture.
//
// The offer is written before the upload because the storage folder is named
// after the offer ID, and written again once the asset descriptor is known.
// A failed upload leaves the offer stored without a picture.
func (s *OfferService) Publish(ctx context.Context, owner model.Owner, in model.OfferInput, picture *media.File) (*model.Offer, error) {
	if err := validateText(in.Title, in.Description); err != nil {
		return nil, err
	}
	price, hasPrice, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	if in.Title == "" || !hasPrice || picture == nil || len(picture.Data) == 0 {
		return nil, ErrMissingOfferFields
	}

	offer := &model.Offer{
		ID:          uuid.NewString(),
		Name:        in.Title,
		Description: in.Description,
		Price:       price,
		Details: model.Details{
			Brand:     in.Brand,
			Size:      in.Size,
			Condition: in.Condition,
			Color:     in.Color,
			Location:  in.City,
		},
		OwnerID:   owner.ID,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, failed(err)
	}

	asset, err := s.media.Upload(ctx, *picture, s.offerFolder(offer.ID))
	if err != nil {
		slog.Error("picture upload failed, offer stored without image", "offer_id", offer.ID, "error", err)
		return nil, failed(err)
	}
	offer.Image = asset

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, failed(err)
	}

	offer.Owner = &owner
	return offer, nil
}

// Get returns an offer with its owner projection.
func (s *OfferService) Get(ctx context.Context, id string) (*model.Offer, error) {
	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, offerLookupError(err)
	}
	return offer, nil
}

// Search returns the total match count and the requested page of summaries.
func (s *OfferService) Search(ctx context.Context, q model.OfferQuery) (model.OfferList, error) {
	offers, err := s.offers.Find(ctx, q)
	if err != nil {
		return model.OfferList{}, failed(err)
	}

	count, err := s.offers.Count(ctx, q.Filter)
	if err != nil {
		return model.OfferList{}, failed(err)
	}

	return model.OfferList{Count: count, Offers: offers}, nil
}

// Update applies the supplied fields to an offer. Empty fields are left
// unchanged. A new picture replaces the asset descriptor.
func (s *OfferService) Update(ctx context.Context, id string, in model.OfferInput, picture *media.File) error {
	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return offerLookupError(err)
	}

	if err := validateText(in.Title, in.Description); err != nil {
		return err
	}
	price, hasPrice, err := parsePrice(in.Price)
	if err != nil {
		return err
	}

	setIfPresent(&offer.Name, in.Title)
	setIfPresent(&offer.Description, in.Description)
	if hasPrice {
		offer.Price = price
	}

	setIfPresent(&offer.Details.Brand, in.Brand)
	setIfPresent(&offer.Details.Size, in.Size)
	setIfPresent(&offer.Details.Condition, in.Condition)
	setIfPresent(&offer.Details.Color, in.Color)
	setIfPresent(&offer.Details.Location, in.City)

	if picture != nil && len(picture.Data) > 0 {
		asset, err := s.media.Upload(ctx, *picture, s.offerFolder(offer.ID))
		if err != nil {
			return failed(err)
		}
		offer.Image = asset
	}

	if err := s.offers.Update(ctx, offer); err != nil {
		return failed(err)
	}
	return nil
}

// Delete removes an offer's stored pictures, then the offer itself. If the
// pictures cannot be removed the offer is kept.
func (s *OfferService) Delete(ctx context.Context, id string) error {
	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return offerLookupError(err)
	}

	folder := s.offerFolder(offer.ID)
	if err := s.media.DeleteByPrefix(ctx, folder); err != nil {
		return failed(err)
	}
	if err := s.media.DeleteFolder(ctx, folder); err != nil {
		return failed(err)
	}

	if err := s.offers.Delete(ctx, offer.ID); err != nil {
		return offerLookupError(err)
	}
	return nil
}

func (s *OfferService) offerFolder(id string) string {
	return path.Join(s.folder, id)
}

func offerLookupError(err error) error {
	if errors.Is(err, repository.ErrOfferNotFound) {
		return ErrOfferNotFound
	}
	return failed(err)
}

func validateText(title, description string) error {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// parsePrice reports whether a price was supplied. Anything that is not a
// finite number in [0, MaxPrice] fails the bound check.
func parsePrice(raw string) (float64, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 || price > MaxPrice {
		return 0, false, ErrPriceTooHigh
	}
	return price, true, nil
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
