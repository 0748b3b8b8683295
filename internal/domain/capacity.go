package domain

import "time"

// Overlaps performs the half-open interval test [startA, endA) vs
// [startB, endB). Back-to-back intervals (endA == startB) do not overlap.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// SeatsOccupied sums the seats of every capacity-occupying reservation.
// The result depends only on the set, never on ordering, so recomputation
// is idempotent.
func SeatsOccupied(reservations []Reservation) int32 {
	var occupied int32
	for i := range reservations {
		if reservations[i].Active() {
			occupied += reservations[i].Seats
		}
	}
	return occupied
}

// RemainingSeats returns the free capacity of a ride given its reservation
// set. The submit path must prevent this from ever going negative.
func RemainingSeats(ride *Ride, reservations []Reservation) int32 {
	return ride.SeatsTotal - SeatsOccupied(reservations)
}

// DeriveRideStatus recomputes a ride's derived status from occupancy.
// Explicit lifecycle statuses (COMPLETED, CANCELLED) are preserved.
func DeriveRideStatus(ride *Ride, occupied int32) RideStatus {
	if ride.Status == RideStatusCompleted || ride.Status == RideStatusCancelled {
		return ride.Status
	}
	if occupied >= ride.SeatsTotal {
		return RideStatusFull
	}
	return RideStatusOpen
}

// DeriveVehicleStatus recomputes a vehicle's derived status from its
// reservation set: RESERVED while a paid-for reservation occupies the
// current or future timeline, PENDING while only unconfirmed requests do,
// AVAILABLE otherwise. MAINTENANCE and INACTIVE are preserved.
func DeriveVehicleStatus(v *Vehicle, reservations []Reservation, now time.Time) VehicleStatus {
	if v.Status == VehicleStatusMaintenance || v.Status == VehicleStatusInactive {
		return v.Status
	}

	var pending, reserved bool
	for i := range reservations {
		r := &reservations[i]
		if !r.Active() || r.EndTime == nil || !r.EndTime.After(now) {
			continue
		}
		switch r.State {
		case StateConfirmed, StateInUse:
			reserved = true
		case StatePending, StateAwaitingPayment:
			pending = true
		}
	}
	if reserved {
		return VehicleStatusReserved
	}
	if pending {
		return VehicleStatusPending
	}
	return VehicleStatusAvailable
}
