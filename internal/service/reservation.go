package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wheelshare-backend/internal/config"
	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/repository"
	"wheelshare-backend/internal/utils"
)

type reservationService struct {
	resRepo     repository.ReservationRepository
	vehicleRepo repository.VehicleRepository
	rideRepo    repository.RideRepository
	notifier    Notifier
	window      time.Duration
	refunds     utils.RefundPolicy
}

func NewReservationService(
	resRepo repository.ReservationRepository,
	vehicleRepo repository.VehicleRepository,
	rideRepo repository.RideRepository,
	notifier Notifier,
	booking config.BookingConfig,
) ReservationService {
	return &reservationService{
		resRepo:     resRepo,
		vehicleRepo: vehicleRepo,
		rideRepo:    rideRepo,
		notifier:    notifier,
		window:      time.Duration(booking.PaymentWindowMinutes) * time.Minute,
		refunds: utils.RefundPolicy{
			FullRefundHours: booking.FullRefundHours,
			HalfRefundHours: booking.HalfRefundHours,
		},
	}
}

func (s *reservationService) Submit(ctx context.Context, actor Actor, req SubmitRequest) (*domain.Reservation, error) {
	res := &domain.Reservation{
		Code:         uuid.NewString(),
		ResourceKind: req.ResourceKind,
		ResourceID:   req.ResourceID,
		RequesterID:  actor.ID,
		State:        domain.StatePending,
		PaymentState: domain.PaymentUnpaid,
	}

	switch req.ResourceKind {
	case domain.KindExclusive:
		if req.StartTime == nil || req.EndTime == nil {
			return nil, errors.New("start and end times are required for vehicle bookings")
		}
		if !req.EndTime.After(*req.StartTime) {
			return nil, errors.New("end time must be after start time")
		}
		if req.StartTime.Before(time.Now()) {
			return nil, errors.New("start time must be in the future")
		}
		v, err := s.vehicleRepo.GetByID(ctx, req.ResourceID)
		if err != nil {
			return nil, err
		}
		if !v.Bookable() {
			return nil, domain.ErrResourceUnavailable
		}
		if v.OwnerID == actor.ID {
			return nil, domain.ErrSelfBookingForbidden
		}
		res.StartTime = req.StartTime
		res.EndTime = req.EndTime
		res.PriceQuotedCents = utils.QuoteExclusive(v.PricePerHourCents, v.PricePerDayCents, *req.StartTime, *req.EndTime)

	case domain.KindPooled:
		if req.Seats < 1 {
			return nil, errors.New("at least one seat is required")
		}
		rd, err := s.rideRepo.GetByID(ctx, req.ResourceID)
		if err != nil {
			return nil, err
		}
		if !rd.Bookable() || time.Now().After(rd.DepartureTime) {
			return nil, domain.ErrResourceUnavailable
		}
		if rd.HostID == actor.ID {
			return nil, domain.ErrSelfBookingForbidden
		}
		res.Seats = req.Seats
		res.PriceQuotedCents = utils.QuotePooled(rd.PricePerSeatCents, req.Seats)

	default:
		return nil, fmt.Errorf("unknown resource kind %q", req.ResourceKind)
	}

	// The repository re-runs availability, ownership, and capacity checks
	// under the resource row lock; the checks above are only a fast path.
	if err := s.resRepo.Submit(ctx, res); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, res.OwnerID, domain.NoteReservationRequested,
		"New reservation request",
		fmt.Sprintf("Reservation %s is awaiting your review", res.Code),
		reservationPayload(res))
	return res, nil
}

func (s *reservationService) Get(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	res, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != res.RequesterID && actor.ID != res.OwnerID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	return res, nil
}

func (s *reservationService) Approve(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	res, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != res.OwnerID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}

	deadline := time.Now().Add(s.window)
	ok, err := s.resRepo.Approve(ctx, id, deadline)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.staleTransition(ctx, id, domain.StateAwaitingPayment)
	}

	s.notifier.Notify(ctx, res.RequesterID, domain.NotePaymentRequested,
		"Reservation approved",
		fmt.Sprintf("Pay within %d minutes to confirm reservation %s", int(s.window.Minutes()), res.Code),
		reservationPayload(res))
	return s.resRepo.GetByID(ctx, id)
}

func (s *reservationService) Reject(ctx context.Context, actor Actor, id int32, reason string) (*domain.Reservation, error) {
	res, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != res.OwnerID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}

	ok, err := s.resRepo.Reject(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.staleTransition(ctx, id, domain.StateRejected)
	}

	s.notifier.Notify(ctx, res.RequesterID, domain.NoteReservationRejected,
		"Reservation rejected",
		fmt.Sprintf("Reservation %s was rejected: %s", res.Code, reason),
		reservationPayload(res))
	return s.resRepo.GetByID(ctx, id)
}

// Pay confirms an approved reservation. The window is enforced twice: a
// lapsed deadline seen here expires the reservation immediately instead of
// waiting for the sweep, and the repository update re-checks the deadline so
// a payment racing the sweep can never confirm a lapsed reservation.
func (s *reservationService) Pay(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	res, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != res.RequesterID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	if res.PaymentState == domain.PaymentPaid {
		return nil, domain.ErrAlreadyFinalized
	}

	now := time.Now()
	if res.State == domain.StateAwaitingPayment && res.PaymentDeadline != nil && !res.PaymentDeadline.After(now) {
		return nil, s.expireLapsed(ctx, res)
	}

	ok, err := s.resRepo.MarkPaid(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		cur, err := s.resRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.State == domain.StateAwaitingPayment {
			// deadline guard lost between the read and the update
			return nil, s.expireLapsed(ctx, cur)
		}
		if cur.PaymentState == domain.PaymentPaid {
			return nil, domain.ErrAlreadyFinalized
		}
		if cur.State.Terminal() {
			return nil, domain.ErrAlreadyFinalized
		}
		return nil, domain.NewInvalidTransition(cur.State, domain.StateConfirmed)
	}

	s.notifier.Notify(ctx, res.OwnerID, domain.NoteReservationPaid,
		"Reservation confirmed",
		fmt.Sprintf("Reservation %s has been paid and confirmed", res.Code),
		reservationPayload(res))
	return s.resRepo.GetByID(ctx, id)
}

// expireLapsed moves an awaiting-payment reservation whose deadline has
// passed to PAYMENT_EXPIRED and reports the expiry to the caller.
func (s *reservationService) expireLapsed(ctx context.Context, res *domain.Reservation) error {
	ok, err := s.resRepo.Expire(ctx, res.ID)
	if err != nil {
		return err
	}
	if ok {
		s.notifier.Notify(ctx, res.RequesterID, domain.NotePaymentExpired,
			"Payment window expired",
			fmt.Sprintf("Reservation %s expired before payment", res.Code),
			reservationPayload(res))
	}
	return domain.ErrPaymentWindowExpired
}

// BeginUse is driven by the requester picking up the vehicle or boarding the
// ride; the owner and admins may also record it.
func (s *reservationService) BeginUse(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	res, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != res.RequesterID && actor.ID != res.OwnerID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}

	ok, err := s.resRepo.BeginUse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.staleTransition(ctx, id, domain.StateInUse)
	}
	return s.resRepo.GetByID(ctx, id)
}

func (s *reservationService) Complete(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	res, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != res.OwnerID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	if res.ResourceKind == domain.KindExclusive && res.EndTime != nil && time.Now().Before(*res.EndTime) {
		return nil, domain.ErrUseNotEnded
	}

	ok, err := s.resRepo.Complete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.staleTransition(ctx, id, domain.StateCompleted)
	}

	s.notifier.Notify(ctx, res.RequesterID, domain.NoteReservationCompleted,
		"Reservation completed",
		fmt.Sprintf("Reservation %s is complete", res.Code),
		reservationPayload(res))
	return s.resRepo.GetByID(ctx, id)
}

func (s *reservationService) Cancel(ctx context.Context, actor Actor, id int32, reason string) (*domain.Reservation, error) {
	res, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != res.RequesterID && actor.ID != res.OwnerID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	if res.State.Terminal() {
		return nil, domain.ErrAlreadyFinalized
	}
	if !domain.CanTransition(res.State, domain.StateCancelled) {
		return nil, domain.NewInvalidTransition(res.State, domain.StateCancelled)
	}

	refund := int32(0)
	if res.PaymentState == domain.PaymentPaid {
		start, err := s.reservationStart(ctx, res)
		if err != nil {
			return nil, err
		}
		refund = utils.ComputeRefund(s.refunds, res.PriceQuotedCents, true, time.Until(start).Hours())
	}

	ok, err := s.resRepo.Cancel(ctx, id, actor.ID, reason, refund)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.staleTransition(ctx, id, domain.StateCancelled)
	}

	counterpart := res.OwnerID
	if actor.ID != res.RequesterID {
		counterpart = res.RequesterID
	}
	s.notifier.Notify(ctx, counterpart, domain.NoteReservationCancelled,
		"Reservation cancelled",
		fmt.Sprintf("Reservation %s was cancelled: %s", res.Code, reason),
		reservationPayload(res))
	return s.resRepo.GetByID(ctx, id)
}

func (s *reservationService) ListMine(ctx context.Context, actor Actor, page, pageSize int32) ([]domain.Reservation, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.resRepo.ListByRequester(ctx, actor.ID, page, pageSize)
}

func (s *reservationService) ListOwned(ctx context.Context, actor Actor, page, pageSize int32) ([]domain.Reservation, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.resRepo.ListByOwner(ctx, actor.ID, page, pageSize)
}

// reservationStart resolves the instant the refund tiers are measured
// against: booking start for vehicles, departure for rides.
func (s *reservationService) reservationStart(ctx context.Context, res *domain.Reservation) (time.Time, error) {
	if res.StartTime != nil {
		return *res.StartTime, nil
	}
	rd, err := s.rideRepo.GetByID(ctx, res.ResourceID)
	if err != nil {
		return time.Time{}, err
	}
	return rd.DepartureTime, nil
}

// staleTransition turns a lost compare-and-swap into a caller-facing error
// by re-reading the row a concurrent writer moved first.
func (s *reservationService) staleTransition(ctx context.Context, id int32, to domain.ReservationState) error {
	cur, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur.State.Terminal() {
		return domain.ErrAlreadyFinalized
	}
	return domain.NewInvalidTransition(cur.State, to)
}

func reservationPayload(res *domain.Reservation) map[string]string {
	return map[string]string{
		"reservation_id":   fmt.Sprintf("%d", res.ID),
		"reservation_code": res.Code,
	}
}

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
