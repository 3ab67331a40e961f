package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/eventconnect/server/internal/api/problem"
	"github.com/eventconnect/server/internal/auth"
	"github.com/eventconnect/server/internal/storage"
	"github.com/go-playground/validator/v10"
)

const (
	typeValidationError = "https://eventconnect.dev/problems/validation-error"
	typeNotFound        = "https://eventconnect.dev/problems/not-found"
	typeConflict        = "https://eventconnect.dev/problems/conflict"
	typeForbidden       = "https://eventconnect.dev/problems/forbidden"
	typeUnavailable     = "https://eventconnect.dev/problems/store-unavailable"
	typeServerError     = "https://eventconnect.dev/problems/server-error"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// writeError maps the store/auth taxonomy onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	switch {
	case errors.Is(err, auth.ErrMalformedToken):
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Malformed token", err, env)
	case errors.Is(err, auth.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", err, env)
	case errors.Is(err, storage.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", err, env)
	case errors.Is(err, storage.ErrConflict):
		problem.Write(w, r, http.StatusConflict, typeConflict, "Conflict", err, env)
	case errors.Is(err, storage.ErrUnavailable):
		problem.Write(w, r, http.StatusServiceUnavailable, typeUnavailable, "Store unavailable", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, env)
	}
}
