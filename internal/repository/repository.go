package repository

import (
	"context"
	"time"

	"wheelshare-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	GetByID(ctx context.Context, id int32) (*domain.Vehicle, error)
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.Vehicle, int32, error)
	// SetStatus is reserved for explicit lifecycle actions
	// (maintenance/inactive/available); derived statuses are written only by
	// the reservation repository's in-transaction recompute.
	SetStatus(ctx context.Context, id int32, status domain.VehicleStatus) error
}

type RideRepository interface {
	Create(ctx context.Context, r *domain.Ride) error
	GetByID(ctx context.Context, id int32) (*domain.Ride, error)
	ListUpcoming(ctx context.Context, from time.Time, page, pageSize int32) ([]domain.Ride, int32, error)
	// SetStatus is reserved for explicit lifecycle actions (cancel/complete).
	SetStatus(ctx context.Context, id int32, status domain.RideStatus) error
}

// ReservationRepository owns every write to the reservation set. Submit runs
// the conflict/capacity check, the insert, and the resource status recompute
// as one transaction. The transition methods are compare-and-swap: they
// guard on the expected current state and report false, without error, when
// a concurrent writer got there first.
type ReservationRepository interface {
	Submit(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id int32) (*domain.Reservation, error)
	GetByCode(ctx context.Context, code string) (*domain.Reservation, error)

	Approve(ctx context.Context, id int32, deadline time.Time) (bool, error)
	Reject(ctx context.Context, id int32, reason string) (bool, error)
	MarkPaid(ctx context.Context, id int32, now time.Time) (bool, error)
	Expire(ctx context.Context, id int32) (bool, error)
	BeginUse(ctx context.Context, id int32) (bool, error)
	Complete(ctx context.Context, id int32) (bool, error)
	Cancel(ctx context.Context, id int32, cancelledBy int32, reason string, refundCents int32) (bool, error)

	ListByRequester(ctx context.Context, requesterID int32, page, pageSize int32) ([]domain.Reservation, int32, error)
	ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Reservation, int32, error)
	ListActiveByResource(ctx context.Context, kind domain.ResourceKind, resourceID int32) ([]domain.Reservation, error)
	ListLapsedAwaitingPayment(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	ListElapsedInUse(ctx context.Context, now time.Time) ([]domain.Reservation, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
