package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dultive/dultive-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper. Errors use the same shape.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// AuthEnvelope wraps login and register responses.
type AuthEnvelope struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user"`
}

// LikeEnvelope wraps like-toggle responses.
type LikeEnvelope struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

// writeDomainError maps a service error onto the wire. Throttled requests
// additionally carry a Retry-After header.
func writeDomainError(w http.ResponseWriter, err error) {
	var retry *domain.RetryAfterError
	if errors.As(err, &retry) {
		w.Header().Set("Retry-After", strconv.Itoa(retry.Seconds))
	}
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	// Conflicts surface as 400 so mobile clients render them like any other
	// validation failure.
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
