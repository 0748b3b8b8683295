package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/logger"
	"wheelshare-backend/internal/repository"
)

type catalogService struct {
	vehicleRepo repository.VehicleRepository
	rideRepo    repository.RideRepository
	resRepo     repository.ReservationRepository
	notifier    Notifier
}

func NewCatalogService(
	vehicleRepo repository.VehicleRepository,
	rideRepo repository.RideRepository,
	resRepo repository.ReservationRepository,
	notifier Notifier,
) CatalogService {
	return &catalogService{
		vehicleRepo: vehicleRepo,
		rideRepo:    rideRepo,
		resRepo:     resRepo,
		notifier:    notifier,
	}
}

func (s *catalogService) AddVehicle(ctx context.Context, actor Actor, v *domain.Vehicle) error {
	if v.Make == "" || v.Model == "" || v.Plate == "" {
		return errors.New("make, model and plate are required")
	}
	if v.PricePerHourCents <= 0 || v.PricePerDayCents <= 0 {
		return errors.New("hourly and daily prices must be positive")
	}
	v.OwnerID = actor.ID
	v.Status = domain.VehicleStatusAvailable
	return s.vehicleRepo.Create(ctx, v)
}

func (s *catalogService) GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *catalogService) ListVehicles(ctx context.Context, status string, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.vehicleRepo.List(ctx, status, page, pageSize)
}

// SetVehicleStatus handles the explicit lifecycle statuses only; the derived
// ones are owned by the reservation recompute and cannot be set by hand.
func (s *catalogService) SetVehicleStatus(ctx context.Context, actor Actor, id int32, status domain.VehicleStatus) error {
	switch status {
	case domain.VehicleStatusAvailable, domain.VehicleStatusMaintenance, domain.VehicleStatusInactive:
	default:
		return fmt.Errorf("status %q cannot be set directly", status)
	}

	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != v.OwnerID && !actor.Admin() {
		return domain.ErrUnauthorized
	}
	return s.vehicleRepo.SetStatus(ctx, id, status)
}

func (s *catalogService) VehicleSchedule(ctx context.Context, id int32) ([]domain.Reservation, error) {
	if _, err := s.vehicleRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.resRepo.ListActiveByResource(ctx, domain.KindExclusive, id)
}

func (s *catalogService) AddRide(ctx context.Context, actor Actor, r *domain.Ride) error {
	if r.Origin == "" || r.Destination == "" {
		return errors.New("origin and destination are required")
	}
	if r.SeatsTotal < 1 {
		return errors.New("ride must offer at least one seat")
	}
	if r.PricePerSeatCents <= 0 {
		return errors.New("seat price must be positive")
	}
	if !r.DepartureTime.After(time.Now()) {
		return errors.New("departure time must be in the future")
	}
	r.HostID = actor.ID
	r.Status = domain.RideStatusOpen
	return s.rideRepo.Create(ctx, r)
}

func (s *catalogService) GetRide(ctx context.Context, id int32) (*domain.Ride, int32, error) {
	rd, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	active, err := s.resRepo.ListActiveByResource(ctx, domain.KindPooled, id)
	if err != nil {
		return nil, 0, err
	}
	return rd, domain.RemainingSeats(rd, active), nil
}

func (s *catalogService) ListUpcomingRides(ctx context.Context, page, pageSize int32) ([]domain.Ride, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.rideRepo.ListUpcoming(ctx, time.Now(), page, pageSize)
}

// CancelRide pulls the ride from the catalog and cancels every active
// reservation against it. Host cancellation refunds paid riders in full,
// whatever the notice; the tiered schedule applies only to rider-initiated
// cancellations.
func (s *catalogService) CancelRide(ctx context.Context, actor Actor, id int32, reason string) error {
	rd, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != rd.HostID && !actor.Admin() {
		return domain.ErrUnauthorized
	}
	if !rd.Bookable() {
		return domain.ErrAlreadyFinalized
	}

	if err := s.rideRepo.SetStatus(ctx, id, domain.RideStatusCancelled); err != nil {
		return err
	}

	active, err := s.resRepo.ListActiveByResource(ctx, domain.KindPooled, id)
	if err != nil {
		return err
	}
	for _, res := range active {
		refund := int32(0)
		if res.PaymentState == domain.PaymentPaid {
			refund = res.PriceQuotedCents
		}
		ok, err := s.resRepo.Cancel(ctx, res.ID, actor.ID, reason, refund)
		if err != nil {
			logger.Error("Failed to cancel reservation for cancelled ride",
				"ride_id", id, "reservation_id", res.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		s.notifier.Notify(ctx, res.RequesterID, domain.NoteRideCancelled,
			"Ride cancelled",
			fmt.Sprintf("Ride %s to %s was cancelled by the host", rd.Origin, rd.Destination),
			reservationPayload(&res))
	}
	return nil
}

// CompleteRide closes out a ride: confirmed and in-use seats complete, and
// requests still waiting on approval or payment are cancelled.
func (s *catalogService) CompleteRide(ctx context.Context, actor Actor, id int32) error {
	rd, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != rd.HostID && !actor.Admin() {
		return domain.ErrUnauthorized
	}
	if !rd.Bookable() {
		return domain.ErrAlreadyFinalized
	}

	if err := s.rideRepo.SetStatus(ctx, id, domain.RideStatusCompleted); err != nil {
		return err
	}

	active, err := s.resRepo.ListActiveByResource(ctx, domain.KindPooled, id)
	if err != nil {
		return err
	}
	for _, res := range active {
		switch res.State {
		case domain.StateConfirmed:
			if ok, err := s.resRepo.BeginUse(ctx, res.ID); err != nil || !ok {
				continue
			}
			fallthrough
		case domain.StateInUse:
			if ok, err := s.resRepo.Complete(ctx, res.ID); err != nil || !ok {
				continue
			}
			s.notifier.Notify(ctx, res.RequesterID, domain.NoteReservationCompleted,
				"Ride completed",
				fmt.Sprintf("Ride %s to %s is complete", rd.Origin, rd.Destination),
				reservationPayload(&res))
		case domain.StatePending, domain.StateAwaitingPayment:
			if ok, err := s.resRepo.Cancel(ctx, res.ID, actor.ID, "ride completed", 0); err != nil || !ok {
				continue
			}
			s.notifier.Notify(ctx, res.RequesterID, domain.NoteReservationCancelled,
				"Reservation cancelled",
				fmt.Sprintf("Ride %s to %s departed before your request was confirmed", rd.Origin, rd.Destination),
				reservationPayload(&res))
		}
	}
	return nil
}
