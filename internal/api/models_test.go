package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/service"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, http.StatusForbidden},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"overlap", domain.ErrOverlapConflict, http.StatusConflict},
		{"capacity", domain.ErrCapacityExceeded, http.StatusConflict},
		{"finalized", domain.ErrAlreadyFinalized, http.StatusConflict},
		{"payment window", domain.ErrPaymentWindowExpired, http.StatusConflict},
		{"invalid transition", domain.NewInvalidTransition(domain.StateCompleted, domain.StateInUse), http.StatusConflict},
		{"unavailable", domain.ErrResourceUnavailable, http.StatusUnprocessableEntity},
		{"self booking", domain.ErrSelfBookingForbidden, http.StatusUnprocessableEntity},
		{"use not ended", domain.ErrUseNotEnded, http.StatusUnprocessableEntity},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domain.ErrOverlapConflict)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"time range overlaps an active reservation"}`, rec.Body.String())
}
