package domain

import "time"

type ReservationState string

const (
	StatePending         ReservationState = "PENDING"
	StateAwaitingPayment ReservationState = "AWAITING_PAYMENT"
	StateConfirmed       ReservationState = "CONFIRMED"
	StateInUse           ReservationState = "IN_USE"
	StateCompleted       ReservationState = "COMPLETED"
	StateRejected        ReservationState = "REJECTED"
	StateCancelled       ReservationState = "CANCELLED"
	StatePaymentExpired  ReservationState = "PAYMENT_EXPIRED"
)

type PaymentState string

const (
	PaymentUnpaid   PaymentState = "UNPAID"
	PaymentPaid     PaymentState = "PAID"
	PaymentFailed   PaymentState = "FAILED"
	PaymentRefunded PaymentState = "REFUNDED"
	PaymentExpired  PaymentState = "EXPIRED"
)

// Reservation is the single booking entity for both resource kinds.
// Exclusive reservations carry a [StartTime, EndTime) interval; pooled
// reservations carry a seat count. PriceQuotedCents is fixed at creation
// and never re-quoted.
type Reservation struct {
	ID               int32            `json:"id"`
	Code             string           `json:"code"`
	ResourceKind     ResourceKind     `json:"resource_kind"`
	ResourceID       int32            `json:"resource_id"`
	RequesterID      int32            `json:"requester_id"`
	OwnerID          int32            `json:"owner_id"`
	StartTime        *time.Time       `json:"start_time,omitempty"`
	EndTime          *time.Time       `json:"end_time,omitempty"`
	Seats            int32            `json:"seats,omitempty"`
	State            ReservationState `json:"state"`
	PaymentState     PaymentState     `json:"payment_state"`
	PaymentDeadline  *time.Time       `json:"payment_deadline,omitempty"`
	PriceQuotedCents int32            `json:"price_quoted_cents"`
	RejectReason     string           `json:"reject_reason,omitempty"`
	CancelledBy      *int32           `json:"cancelled_by,omitempty"`
	CancelledAt      *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason     string           `json:"cancel_reason,omitempty"`
	RefundCents      int32            `json:"refund_cents"`
	CreatedOn        time.Time        `json:"created_on"`
	UpdatedOn        time.Time        `json:"updated_on"`
}

// allowedTransitions is the lifecycle graph. Terminal states map to empty
// slices so every edge out of them is rejected.
var allowedTransitions = map[ReservationState][]ReservationState{
	StatePending:         {StateAwaitingPayment, StateRejected, StateCancelled},
	StateAwaitingPayment: {StateConfirmed, StatePaymentExpired, StateCancelled},
	StateConfirmed:       {StateInUse, StateCancelled},
	StateInUse:           {StateCompleted},
	StateCompleted:       {},
	StateRejected:        {},
	StateCancelled:       {},
	StatePaymentExpired:  {},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to ReservationState) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the state absorbs all further transitions.
func (s ReservationState) Terminal() bool {
	switch s {
	case StateCompleted, StateRejected, StateCancelled, StatePaymentExpired:
		return true
	}
	return false
}

// ActiveStates are the states that occupy capacity on the owning resource.
var ActiveStates = []ReservationState{StatePending, StateAwaitingPayment, StateConfirmed, StateInUse}

// Active reports whether the state occupies capacity.
func (s ReservationState) Active() bool {
	for _, a := range ActiveStates {
		if s == a {
			return true
		}
	}
	return false
}

// Active reports whether the reservation currently occupies capacity.
func (r *Reservation) Active() bool {
	return r.State.Active()
}
