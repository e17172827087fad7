package service

import (
	"context"
	"encoding/json"

	"github.com/brocante/brocante-api/internal/media"
	"github.com/brocante/brocante-api/internal/model"
	"github.com/brocante/brocante-api/internal/payment"
)

// UserStore persists users. Implemented by repository.UserRepository and
// repository.MemoryUserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByToken(ctx context.Context, token string) (*model.User, error)
}

// OfferStore persists and searches offers.
type OfferStore interface {
	Create(ctx context.Context, offer *model.Offer) error
	Update(ctx context.Context, offer *model.Offer) error
	GetByID(ctx context.Context, id string) (*model.Offer, error)
	Find(ctx context.Context, q model.OfferQuery) ([]model.OfferSummary, error)
	Count(ctx context.Context, filter model.OfferFilter) (int64, error)
	Delete(ctx context.Context, id string) error
}

// MediaUploader stores offer pictures grouped by folder.
type MediaUploader interface {
	Upload(ctx context.Context, f media.File, folder string) (model.Asset, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
	DeleteFolder(ctx context.Context, prefix string) error
}

// PaymentGateway submits charges.
type PaymentGateway interface {
	Charge(ctx context.Context, req payment.ChargeRequest) (json.RawMessage, error)
}
