package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/brocante/brocante-api/internal/media"
	"github.com/brocante/brocante-api/internal/model"
	"github.com/brocante/brocante-api/internal/payment"
	"github.com/brocante/brocante-api/internal/repository"
)

// recordingOffers wraps the memory offer repository and counts writes.
type recordingOffers struct {
	*repository.MemoryOfferRepository
	creates   int
	updates   int
	deletes   int
	createErr error
	findErr   error
}

func (r *recordingOffers) Create(ctx context.Context, offer *model.Offer) error {
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	return r.MemoryOfferRepository.Create(ctx, offer)
}

func (r *recordingOffers) Update(ctx context.Context, offer *model.Offer) error {
	r.updates++
	return r.MemoryOfferRepository.Update(ctx, offer)
}

func (r *recordingOffers) Delete(ctx context.Context, id string) error {
	r.deletes++
	return r.MemoryOfferRepository.Delete(ctx, id)
}

func (r *recordingOffers) Find(ctx context.Context, q model.OfferQuery) ([]model.OfferSummary, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.MemoryOfferRepository.Find(ctx, q)
}

type fakeUploader struct {
	calls       []string
	uploads     int
	uploadErr   error
	deletePfx   []string
	deleteErr   error
	folderErr   error
	deletedDirs []string
}

func (f *fakeUploader) Upload(ctx context.Context, file media.File, folder string) (model.Asset, error) {
	f.calls = append(f.calls, "upload:"+folder)
	f.uploads++
	if f.uploadErr != nil {
		return model.Asset{}, f.uploadErr
	}
	return model.Asset{
		PublicID: folder + "/" + file.Name,
		Folder:   folder,
		URL:      "https://cdn.example.com/" + folder + "/" + file.Name,
		Bytes:    int64(len(file.Data)),
	}, nil
}

func (f *fakeUploader) DeleteByPrefix(ctx context.Context, prefix string) error {
	f.calls = append(f.calls, "delete-prefix:"+prefix)
	f.deletePfx = append(f.deletePfx, prefix)
	return f.deleteErr
}

func (f *fakeUploader) DeleteFolder(ctx context.Context, prefix string) error {
	f.calls = append(f.calls, "delete-folder:"+prefix)
	f.deletedDirs = append(f.deletedDirs, prefix)
	return f.folderErr
}

type fakeGateway struct {
	got  payment.ChargeRequest
	resp json.RawMessage
	err  error
}

func (f *fakeGateway) Charge(ctx context.Context, req payment.ChargeRequest) (json.RawMessage, error) {
	f.got = req
	return f.resp, f.err
}

type failingUsers struct{}

var errStoreDown = errors.New("store unavailable")

func (failingUsers) Create(context.Context, *model.User) error { return errStoreDown }
func (failingUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, errStoreDown
}
func (failingUsers) GetByToken(context.Context, string) (*model.User, error) {
	return nil, errStoreDown
}
