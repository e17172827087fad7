package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/brocante/brocante-api/internal/model"
)

// MemoryStore keeps users and offers in process memory. It backs the
// "memory" storage driver and the HTTP tests.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]model.User
	offers map[string]memoryOffer
	seq    int64
}

type memoryOffer struct {
	offer model.Offer
	seq   int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]model.User),
		offers: make(map[string]memoryOffer),
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

// Offers returns the offer repository view of the store.
func (s *MemoryStore) Offers() *MemoryOfferRepository {
	return &MemoryOfferRepository{store: s}
}

// MemoryUserRepository is the in-memory counterpart of UserRepository.
type MemoryUserRepository struct {
	store *MemoryStore
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) GetByToken(ctx context.Context, token string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Token == token })
}

func (r *MemoryUserRepository) find(match func(model.User) bool) (*model.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			found := cloneUser(u)
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

// MemoryOfferRepository is the in-memory counterpart of OfferRepository.
type MemoryOfferRepository struct {
	store *MemoryStore
}

func (r *MemoryOfferRepository) Create(ctx context.Context, offer *model.Offer) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	stored := *offer
	stored.Owner = nil
	s.offers[offer.ID] = memoryOffer{offer: stored, seq: s.seq}
	return nil
}

func (r *MemoryOfferRepository) Update(ctx context.Context, offer *model.Offer) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.offers[offer.ID]
	if !ok {
		return ErrOfferNotFound
	}
	existing.offer.Name = offer.Name
	existing.offer.Description = offer.Description
	existing.offer.Price = offer.Price
	existing.offer.Details = offer.Details
	existing.offer.Image = offer.Image
	s.offers[offer.ID] = existing
	return nil
}

func (r *MemoryOfferRepository) GetByID(ctx context.Context, id string) (*model.Offer, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.offers[id]
	if !ok {
		return nil, ErrOfferNotFound
	}
	offer := stored.offer
	offer.Owner = s.ownerOf(offer.OwnerID)
	return &offer, nil
}

func (r *MemoryOfferRepository) Find(ctx context.Context, q model.OfferQuery) ([]model.OfferSummary, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.match(q.Filter)
	sortMemoryOffers(matches, q.Sort)

	skip := q.Skip()
	if skip > len(matches) {
		skip = len(matches)
	}
	matches = matches[skip:]
	if q.Limit > 0 && q.Limit < len(matches) {
		matches = matches[:q.Limit]
	}

	offers := make([]model.OfferSummary, len(matches))
	for i, m := range matches {
		offers[i] = model.OfferSummary{
			ID:    m.offer.ID,
			Name:  m.offer.Name,
			Price: m.offer.Price,
			Owner: s.ownerOf(m.offer.OwnerID),
		}
	}
	return offers, nil
}

func (r *MemoryOfferRepository) Count(ctx context.Context, filter model.OfferFilter) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.match(filter))), nil
}

func (r *MemoryOfferRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.offers[id]; !ok {
		return ErrOfferNotFound
	}
	delete(s.offers, id)
	return nil
}

// match must be called with s.mu held.
func (s *MemoryStore) match(f model.OfferFilter) []memoryOffer {
	title := strings.ToLower(f.Title)

	var out []memoryOffer
	for _, m := range s.offers {
		if title != "" && !strings.Contains(strings.ToLower(m.offer.Name), title) {
			continue
		}
		if f.PriceMin != nil && m.offer.Price < *f.PriceMin {
			continue
		}
		if f.PriceMax != nil && m.offer.Price > *f.PriceMax {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ownerOf must be called with s.mu held.
func (s *MemoryStore) ownerOf(userID string) *model.Owner {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	c := cloneUser(u)
	owner := c.Owner()
	return &owner
}

func sortMemoryOffers(offers []memoryOffer, order model.OfferSort) {
	sort.Slice(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		switch order {
		case model.SortPriceAsc:
			if a.offer.Price != b.offer.Price {
				return a.offer.Price < b.offer.Price
			}
		case model.SortPriceDesc:
			if a.offer.Price != b.offer.Price {
				return a.offer.Price > b.offer.Price
			}
		}
		return a.seq < b.seq
	})
}

func cloneUser(u model.User) model.User {
	if u.Account.Avatar != nil {
		u.Account.Avatar = json.RawMessage(bytes.Clone(u.Account.Avatar))
	}
	return u
}
