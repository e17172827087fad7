package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brocante/brocante-api/internal/model"
	"github.com/brocante/brocante-api/internal/service"
)

const maxJSONBody = 1 << 20 // 1MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func messageResponse(msg string) model.MessageResponse {
	return model.MessageResponse{Message: msg}
}

// writeError reports any failure as 400 with its client message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if service.KindOf(err) == service.KindOperationFailed {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, http.StatusBadRequest, messageResponse(err.Error()))
}

// decodeJSON reads a JSON body of at most maxJSONBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, messageResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, messageResponse("invalid request body"))
		return false
	}
	return true
}
