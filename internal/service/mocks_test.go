package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"wheelshare-backend/internal/domain"
)

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Submit(ctx context.Context, res *domain.Reservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) Approve(ctx context.Context, id int32, deadline time.Time) (bool, error) {
	args := m.Called(ctx, id, deadline)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) Reject(ctx context.Context, id int32, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) MarkPaid(ctx context.Context, id int32, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) Expire(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) BeginUse(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) Complete(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) Cancel(ctx context.Context, id int32, cancelledBy int32, reason string, refundCents int32) (bool, error) {
	args := m.Called(ctx, id, cancelledBy, reason, refundCents)
	return args.Bool(0), args.Error(1)
}
func (m *MockReservationRepo) ListByRequester(ctx context.Context, requesterID int32, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, requesterID, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, ownerID, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ListActiveByResource(ctx context.Context, kind domain.ResourceKind, resourceID int32) ([]domain.Reservation, error) {
	args := m.Called(ctx, kind, resourceID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListLapsedAwaitingPayment(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListElapsedInUse(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}
func (m *MockVehicleRepo) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) List(ctx context.Context, status string, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.Vehicle), args.Get(1).(int32), args.Error(2)
}
func (m *MockVehicleRepo) SetStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockRideRepo
type MockRideRepo struct {
	mock.Mock
}

func (m *MockRideRepo) Create(ctx context.Context, r *domain.Ride) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockRideRepo) GetByID(ctx context.Context, id int32) (*domain.Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}
func (m *MockRideRepo) ListUpcoming(ctx context.Context, from time.Time, page, pageSize int32) ([]domain.Ride, int32, error) {
	args := m.Called(ctx, from, page, pageSize)
	return args.Get(0).([]domain.Ride), args.Get(1).(int32), args.Error(2)
}
func (m *MockRideRepo) SetStatus(ctx context.Context, id int32, status domain.RideStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// recorderNotifier captures notification events for assertions.
type recorderNotifier struct {
	mu     sync.Mutex
	events []recordedNote
}

type recordedNote struct {
	UserID int32
	Kind   string
}

func (r *recorderNotifier) Notify(_ context.Context, userID int32, kind, _, _ string, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedNote{UserID: userID, Kind: kind})
}

func (r *recorderNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

// fakeReservationRepo is an in-memory ReservationRepository that reproduces
// the storage layer's locking discipline with a single mutex: submissions
// check conflicts against committed rows, transitions are state-guarded
// compare-and-swaps. It backs the concurrency tests.
type fakeReservationRepo struct {
	mu       sync.Mutex
	nextID   int32
	rows     map[int32]*domain.Reservation
	vehicles map[int32]*domain.Vehicle
	rides    map[int32]*domain.Ride
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{
		rows:     make(map[int32]*domain.Reservation),
		vehicles: make(map[int32]*domain.Vehicle),
		rides:    make(map[int32]*domain.Ride),
	}
}

func (f *fakeReservationRepo) Submit(_ context.Context, res *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch res.ResourceKind {
	case domain.KindExclusive:
		v, ok := f.vehicles[res.ResourceID]
		if !ok {
			return domain.ErrNotFound
		}
		if !v.Bookable() {
			return domain.ErrResourceUnavailable
		}
		if v.OwnerID == res.RequesterID {
			return domain.ErrSelfBookingForbidden
		}
		for _, row := range f.rows {
			if row.ResourceKind != domain.KindExclusive || row.ResourceID != res.ResourceID || !row.Active() {
				continue
			}
			if domain.Overlaps(*row.StartTime, *row.EndTime, *res.StartTime, *res.EndTime) {
				return domain.ErrOverlapConflict
			}
		}
		res.OwnerID = v.OwnerID
	case domain.KindPooled:
		rd, ok := f.rides[res.ResourceID]
		if !ok {
			return domain.ErrNotFound
		}
		if !rd.Bookable() {
			return domain.ErrResourceUnavailable
		}
		if rd.HostID == res.RequesterID {
			return domain.ErrSelfBookingForbidden
		}
		var occupied int32
		for _, row := range f.rows {
			if row.ResourceKind == domain.KindPooled && row.ResourceID == res.ResourceID && row.Active() {
				occupied += row.Seats
			}
		}
		if occupied+res.Seats > rd.SeatsTotal {
			return domain.ErrCapacityExceeded
		}
		res.OwnerID = rd.HostID
	}

	f.nextID++
	res.ID = f.nextID
	res.CreatedOn = time.Now()
	res.UpdatedOn = res.CreatedOn
	clone := *res
	f.rows[res.ID] = &clone
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id int32) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *fakeReservationRepo) GetByCode(_ context.Context, code string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Code == code {
			clone := *row
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReservationRepo) cas(id int32, guard func(*domain.Reservation) bool, apply func(*domain.Reservation)) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || !guard(row) {
		return false, nil
	}
	apply(row)
	row.UpdatedOn = time.Now()
	return true, nil
}

func (f *fakeReservationRepo) Approve(_ context.Context, id int32, deadline time.Time) (bool, error) {
	return f.cas(id,
		func(r *domain.Reservation) bool { return r.State == domain.StatePending },
		func(r *domain.Reservation) {
			r.State = domain.StateAwaitingPayment
			d := deadline
			r.PaymentDeadline = &d
		})
}

func (f *fakeReservationRepo) Reject(_ context.Context, id int32, reason string) (bool, error) {
	return f.cas(id,
		func(r *domain.Reservation) bool { return r.State == domain.StatePending },
		func(r *domain.Reservation) {
			r.State = domain.StateRejected
			r.RejectReason = reason
		})
}

func (f *fakeReservationRepo) MarkPaid(_ context.Context, id int32, now time.Time) (bool, error) {
	return f.cas(id,
		func(r *domain.Reservation) bool {
			return r.State == domain.StateAwaitingPayment && r.PaymentDeadline != nil && r.PaymentDeadline.After(now)
		},
		func(r *domain.Reservation) {
			r.State = domain.StateConfirmed
			r.PaymentState = domain.PaymentPaid
			r.PaymentDeadline = nil
		})
}

func (f *fakeReservationRepo) Expire(_ context.Context, id int32) (bool, error) {
	return f.cas(id,
		func(r *domain.Reservation) bool { return r.State == domain.StateAwaitingPayment },
		func(r *domain.Reservation) {
			r.State = domain.StatePaymentExpired
			r.PaymentState = domain.PaymentExpired
			r.PaymentDeadline = nil
		})
}

func (f *fakeReservationRepo) BeginUse(_ context.Context, id int32) (bool, error) {
	return f.cas(id,
		func(r *domain.Reservation) bool { return r.State == domain.StateConfirmed },
		func(r *domain.Reservation) { r.State = domain.StateInUse })
}

func (f *fakeReservationRepo) Complete(_ context.Context, id int32) (bool, error) {
	return f.cas(id,
		func(r *domain.Reservation) bool { return r.State == domain.StateInUse },
		func(r *domain.Reservation) { r.State = domain.StateCompleted })
}

func (f *fakeReservationRepo) Cancel(_ context.Context, id int32, cancelledBy int32, reason string, refundCents int32) (bool, error) {
	return f.cas(id,
		func(r *domain.Reservation) bool {
			return r.State == domain.StatePending || r.State == domain.StateAwaitingPayment || r.State == domain.StateConfirmed
		},
		func(r *domain.Reservation) {
			r.State = domain.StateCancelled
			r.CancelledBy = &cancelledBy
			now := time.Now()
			r.CancelledAt = &now
			r.CancelReason = reason
			r.RefundCents = refundCents
			r.PaymentDeadline = nil
			if r.PaymentState == domain.PaymentPaid {
				r.PaymentState = domain.PaymentRefunded
			}
		})
}

func (f *fakeReservationRepo) ListByRequester(_ context.Context, requesterID int32, _, _ int32) ([]domain.Reservation, int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, row := range f.rows {
		if row.RequesterID == requesterID {
			out = append(out, *row)
		}
	}
	return out, int32(len(out)), nil
}

func (f *fakeReservationRepo) ListByOwner(_ context.Context, ownerID int32, _, _ int32) ([]domain.Reservation, int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, row := range f.rows {
		if row.OwnerID == ownerID {
			out = append(out, *row)
		}
	}
	return out, int32(len(out)), nil
}

func (f *fakeReservationRepo) ListActiveByResource(_ context.Context, kind domain.ResourceKind, resourceID int32) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, row := range f.rows {
		if row.ResourceKind == kind && row.ResourceID == resourceID && row.Active() {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListLapsedAwaitingPayment(_ context.Context, now time.Time) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, row := range f.rows {
		if row.State == domain.StateAwaitingPayment && row.PaymentDeadline != nil && !row.PaymentDeadline.After(now) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListElapsedInUse(_ context.Context, now time.Time) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, row := range f.rows {
		if row.State == domain.StateInUse && row.ResourceKind == domain.KindExclusive && row.EndTime != nil && !row.EndTime.After(now) {
			out = append(out, *row)
		}
	}
	return out, nil
}
