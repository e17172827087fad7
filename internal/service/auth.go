package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brocante/brocante-api/internal/crypto"
	"github.com/brocante/brocante-api/internal/model"
	"github.com/brocante/brocante-api/internal/repository"
)

// AuthService handles credential issuance and bearer token checks.
type AuthService struct {
	users UserStore
	now   func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore) *AuthService {
	return &AuthService{
		users: users,
		now:   time.Now,
	}
}

// Signup creates a new account with a fresh salt and session token.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.SessionResponse, error) {
	if req.Email != "" {
		_, err := s.users.GetByEmail(ctx, req.Email)
		if err == nil {
			return model.SessionResponse{}, ErrEmailTaken
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return model.SessionResponse{}, failed(err)
		}
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return model.SessionResponse{}, ErrMissingSignupFields
	}

	salt, err := crypto.RandomToken(crypto.SaltLength)
	if err != nil {
		return model.SessionResponse{}, failed(err)
	}
	token, err := crypto.RandomToken(crypto.SessionTokenLength)
	if err != nil {
		return model.SessionResponse{}, failed(err)
	}

	user := &model.User{
		ID: uuid.NewString(),
		Account: model.Account{
			Username: req.Username,
			Phone:    req.Phone,
		},
		Email:     req.Email,
		Salt:      salt,
		Hash:      crypto.HashPassword(req.Password, salt),
		Token:     token,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.SessionResponse{}, ErrEmailTaken
		}
		return model.SessionResponse{}, failed(err)
	}

	return model.SessionResponse{
		ID:      user.ID,
		Account: user.Account,
		Email:   user.Email,
		Token:   user.Token,
	}, nil
}

// Login checks the password against the stored salted hash and returns the
// user's existing session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.SessionResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.SessionResponse{}, ErrUserNotFound
		}
		return model.SessionResponse{}, failed(err)
	}

	if !crypto.VerifyPassword(req.Password, user.Salt, user.Hash) {
		return model.SessionResponse{}, ErrUnauthorized
	}

	return model.SessionResponse{
		ID:      user.ID,
		Account: user.Account,
		Token:   user.Token,
	}, nil
}

// Authenticate resolves a bearer token to the owner projection of its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Owner, error) {
	if token == "" {
		return model.Owner{}, ErrUnauthorized
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Owner{}, ErrUnauthorized
		}
		return model.Owner{}, failed(err)
	}
	if user.Token != token {
		return model.Owner{}, ErrUnauthorized
	}

	return user.Owner(), nil
}
