package domain

import "time"

// Notification event kinds emitted by the reservation engine.
const (
	NoteReservationRequested = "RESERVATION_REQUESTED"
	NotePaymentRequested     = "PAYMENT_REQUESTED"
	NoteReservationRejected  = "RESERVATION_REJECTED"
	NoteReservationPaid      = "RESERVATION_PAID"
	NotePaymentExpired       = "PAYMENT_EXPIRED"
	NoteReservationCancelled = "RESERVATION_CANCELLED"
	NoteReservationCompleted = "RESERVATION_COMPLETED"
	NoteRideCancelled        = "RIDE_CANCELLED"
)

type Notification struct {
	ID        int32             `json:"id"`
	UserID    int32             `json:"user_id"`
	Kind      string            `json:"kind"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Payload   map[string]string `json:"payload,omitempty"`
	Read      bool              `json:"read"`
	CreatedOn time.Time         `json:"created_on"`
}
