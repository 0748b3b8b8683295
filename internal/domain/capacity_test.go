package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(h int) time.Time {
	return time.Date(2026, 9, 1, h, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		startA, endA, startB, endB     time.Time
		want                           bool
	}{
		{"disjoint", ts(1), ts(3), ts(5), ts(7), false},
		{"partial overlap", ts(1), ts(5), ts(4), ts(8), true},
		{"contained", ts(2), ts(6), ts(3), ts(4), true},
		{"identical", ts(2), ts(6), ts(2), ts(6), true},
		{"back to back shares boundary only", ts(1), ts(3), ts(3), ts(5), false},
		{"back to back reversed", ts(3), ts(5), ts(1), ts(3), false},
		{"one minute into the other", ts(1), ts(3).Add(time.Minute), ts(3), ts(5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.startA, tt.endA, tt.startB, tt.endB))
			// symmetry
			assert.Equal(t, tt.want, Overlaps(tt.startB, tt.endB, tt.startA, tt.endA))
		})
	}
}

func TestSeatsOccupied(t *testing.T) {
	reservations := []Reservation{
		{State: StatePending, Seats: 1},
		{State: StateAwaitingPayment, Seats: 2},
		{State: StateConfirmed, Seats: 1},
		{State: StateCancelled, Seats: 3},
		{State: StatePaymentExpired, Seats: 2},
		{State: StateCompleted, Seats: 1},
	}
	assert.Equal(t, int32(4), SeatsOccupied(reservations))
	assert.Equal(t, int32(0), SeatsOccupied(nil))
}

func TestRemainingSeats(t *testing.T) {
	ride := &Ride{SeatsTotal: 3}
	assert.Equal(t, int32(3), RemainingSeats(ride, nil))
	assert.Equal(t, int32(1), RemainingSeats(ride, []Reservation{
		{State: StateConfirmed, Seats: 2},
	}))
}

func TestDeriveRideStatus(t *testing.T) {
	ride := &Ride{SeatsTotal: 3, Status: RideStatusOpen}

	assert.Equal(t, RideStatusOpen, DeriveRideStatus(ride, 2))
	assert.Equal(t, RideStatusFull, DeriveRideStatus(ride, 3))

	// releasing capacity reopens the ride
	assert.Equal(t, RideStatusOpen, DeriveRideStatus(&Ride{SeatsTotal: 3, Status: RideStatusFull}, 2))

	// explicit lifecycle statuses are preserved
	assert.Equal(t, RideStatusCancelled, DeriveRideStatus(&Ride{SeatsTotal: 3, Status: RideStatusCancelled}, 0))
	assert.Equal(t, RideStatusCompleted, DeriveRideStatus(&Ride{SeatsTotal: 3, Status: RideStatusCompleted}, 3))
}

func TestDeriveVehicleStatus(t *testing.T) {
	now := ts(12)
	future := ts(18)
	past := ts(6)

	v := &Vehicle{Status: VehicleStatusAvailable}

	assert.Equal(t, VehicleStatusAvailable, DeriveVehicleStatus(v, nil, now))

	assert.Equal(t, VehicleStatusPending, DeriveVehicleStatus(v, []Reservation{
		{State: StatePending, EndTime: &future},
	}, now))

	assert.Equal(t, VehicleStatusReserved, DeriveVehicleStatus(v, []Reservation{
		{State: StatePending, EndTime: &future},
		{State: StateConfirmed, EndTime: &future},
	}, now))

	// reservations already over do not hold the vehicle
	assert.Equal(t, VehicleStatusAvailable, DeriveVehicleStatus(v, []Reservation{
		{State: StateConfirmed, EndTime: &past},
	}, now))

	// maintenance is an explicit owner action and wins over everything
	assert.Equal(t, VehicleStatusMaintenance, DeriveVehicleStatus(&Vehicle{Status: VehicleStatusMaintenance}, []Reservation{
		{State: StateConfirmed, EndTime: &future},
	}, now))
}
