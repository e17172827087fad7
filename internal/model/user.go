package model

import (
	"encoding/json"
	"time"
)

// Account holds the public profile of a user.
type Account struct {
	Username string          `json:"username"`
	Phone    string          `json:"phone,omitempty"`
	Avatar   json.RawMessage `json:"avatar,omitempty"`
}

// User represents a user in the database.
type User struct {
	ID        string
	Account   Account
	Email     string
	Salt      string
	Hash      string
	Token     string
	CreatedAt time.Time
}

// Owner returns the projection of the user that is safe to attach to offers
// and request contexts.
func (u *User) Owner() Owner {
	return Owner{ID: u.ID, Account: u.Account}
}

// Owner is the reduced user projection: identifier and account only.
type Owner struct {
	ID      string  `json:"id"`
	Account Account `json:"account"`
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by signup and login. Email is only set on signup.
type SessionResponse struct {
	ID      string  `json:"id"`
	Account Account `json:"account"`
	Email   string  `json:"email,omitempty"`
	Token   string  `json:"token"`
}
