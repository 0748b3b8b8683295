package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type submitReservationRequest struct {
	ResourceKind string     `json:"resource_kind"`
	ResourceID   int32      `json:"resource_id"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Seats        int32      `json:"seats,omitempty"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int32       `json:"total"`
}

type rideResponse struct {
	Ride           *domain.Ride `json:"ride"`
	SeatsRemaining int32        `json:"seats_remaining"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

// statusForError maps domain and service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, domain.ErrOverlapConflict),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrPaymentWindowExpired):
		return http.StatusConflict
	case domain.IsInvalidTransition(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrResourceUnavailable),
		errors.Is(err, domain.ErrSelfBookingForbidden),
		errors.Is(err, domain.ErrUseNotEnded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
