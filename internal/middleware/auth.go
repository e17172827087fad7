package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brocante/brocante-api/internal/model"
)

type contextKey string

const ownerKey contextKey = "owner"

const unauthorizedMessage = "Unauthorized"

// Authenticator resolves a session token to its owner.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Owner, error)
}

// TokenAuth returns middleware that resolves the session token from the
// Authorization header. The "Bearer " prefix is optional.
func TokenAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeMessage(w, http.StatusBadRequest, unauthorizedMessage)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			owner, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, unauthorizedMessage)
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFromContext extracts the authenticated owner from the request context.
func OwnerFromContext(ctx context.Context) (model.Owner, bool) {
	owner, ok := ctx.Value(ownerKey).(model.Owner)
	return owner, ok
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.MessageResponse{Message: msg})
}
