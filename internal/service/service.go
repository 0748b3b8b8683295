package service

import (
	"context"
	"time"

	"wheelshare-backend/internal/domain"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   int32
	Role domain.Role
}

func (a Actor) Admin() bool {
	return a.Role == domain.RoleAdmin
}

type AuthService interface {
	Signup(ctx context.Context, name, email, phone, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

// SubmitRequest carries the booking parameters for either resource kind.
// Exclusive bookings set StartTime/EndTime; pooled bookings set Seats.
type SubmitRequest struct {
	ResourceKind domain.ResourceKind
	ResourceID   int32
	StartTime    *time.Time
	EndTime      *time.Time
	Seats        int32
}

type ReservationService interface {
	Submit(ctx context.Context, actor Actor, req SubmitRequest) (*domain.Reservation, error)
	Get(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error)
	Approve(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error)
	Reject(ctx context.Context, actor Actor, id int32, reason string) (*domain.Reservation, error)
	Pay(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error)
	BeginUse(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error)
	Complete(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error)
	Cancel(ctx context.Context, actor Actor, id int32, reason string) (*domain.Reservation, error)
	ListMine(ctx context.Context, actor Actor, page, pageSize int32) ([]domain.Reservation, int32, error)
	ListOwned(ctx context.Context, actor Actor, page, pageSize int32) ([]domain.Reservation, int32, error)
}

type CatalogService interface {
	AddVehicle(ctx context.Context, actor Actor, v *domain.Vehicle) error
	GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context, status string, page, pageSize int32) ([]domain.Vehicle, int32, error)
	SetVehicleStatus(ctx context.Context, actor Actor, id int32, status domain.VehicleStatus) error
	VehicleSchedule(ctx context.Context, id int32) ([]domain.Reservation, error)

	AddRide(ctx context.Context, actor Actor, r *domain.Ride) error
	GetRide(ctx context.Context, id int32) (*domain.Ride, int32, error) // ride, seats remaining
	ListUpcomingRides(ctx context.Context, page, pageSize int32) ([]domain.Ride, int32, error)
	CancelRide(ctx context.Context, actor Actor, id int32, reason string) error
	CompleteRide(ctx context.Context, actor Actor, id int32) error
}

type NotificationService interface {
	List(ctx context.Context, actor Actor, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, actor Actor, id int32) error
}

// Notifier fans a reservation event out to the persisted feed and the
// delivery channels. Delivery is best-effort: failures are logged, never
// returned, so a flaky channel cannot fail a booking.
type Notifier interface {
	Notify(ctx context.Context, userID int32, kind, title, message string, payload map[string]string)
}

type EmailService interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

type SMSService interface {
	Send(ctx context.Context, toPhone, body string) error
}

type PushService interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}
