package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/http/respond"
	"github.com/hongminglow/skillpath-be/internal/middleware"
	"github.com/hongminglow/skillpath-be/internal/service"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

const (
	maxBodyBytes = 1 << 20
	// Posts carry base64 media of up to 5 MiB.
	maxPostBodyBytes = 8 << 20
)

// Guard wraps a handler with route-level middleware.
type Guard func(http.Handler) http.Handler

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respond.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			respond.Error(w, http.StatusBadRequest, "request body is required")
		default:
			respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		}
		return false
	}
	return true
}

// currentUser returns the authenticated user ID set by RequireAuth.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}

// writeError maps service and storage errors to HTTP responses. Unknown
// errors are logged and reported with fallback.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Validation(w, verr.First(), verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, service.ErrForbidden):
		respond.Error(w, http.StatusForbidden, "You can only change your own content.")
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "already exists")
	case errors.Is(err, storage.ErrConflict):
		respond.Error(w, http.StatusConflict, "The record was changed by another request. Please retry.")
	case errors.Is(err, service.ErrAIUnavailable):
		respond.Error(w, http.StatusServiceUnavailable, "AI features are not configured.")
	case errors.Is(err, service.ErrAIFailure):
		log.Error(fallback, zap.Error(err))
		respond.Error(w, http.StatusBadGateway, fallback)
	default:
		log.Error(fallback, zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, fallback)
	}
}
