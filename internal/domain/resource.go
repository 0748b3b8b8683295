package domain

import "time"

type ResourceKind string

const (
	KindExclusive ResourceKind = "EXCLUSIVE"
	KindPooled    ResourceKind = "POOLED"
)

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusPending     VehicleStatus = "PENDING"
	VehicleStatusReserved    VehicleStatus = "RESERVED"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusInactive    VehicleStatus = "INACTIVE"
)

// Vehicle is an exclusive-use resource: at most one active reservation may
// occupy any point in time. Status is derived from the active reservation
// set except for MAINTENANCE and INACTIVE, which are explicit owner actions.
type Vehicle struct {
	ID                int32         `json:"id"`
	OwnerID           int32         `json:"owner_id"`
	Make              string        `json:"make"`
	Model             string        `json:"model"`
	Plate             string        `json:"plate"`
	PricePerHourCents int32         `json:"price_per_hour_cents"`
	PricePerDayCents  int32         `json:"price_per_day_cents"`
	Status            VehicleStatus `json:"status"`
	CreatedOn         time.Time     `json:"created_on"`
	UpdatedOn         time.Time     `json:"updated_on"`
}

// Bookable reports whether new reservations may be submitted against the
// vehicle. Derived statuses (AVAILABLE/PENDING/RESERVED) stay bookable for
// non-overlapping intervals; the overlap checker handles the rest.
func (v *Vehicle) Bookable() bool {
	return v.Status != VehicleStatusMaintenance && v.Status != VehicleStatusInactive
}

type RideStatus string

const (
	RideStatusOpen      RideStatus = "OPEN"
	RideStatusFull      RideStatus = "FULL"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// Ride is a pooled resource: a fixed number of seats shared across many
// reservations. Status flips between OPEN and FULL as the ledger recomputes
// occupancy; COMPLETED and CANCELLED are explicit host actions.
type Ride struct {
	ID                int32      `json:"id"`
	HostID            int32      `json:"host_id"`
	Origin            string     `json:"origin"`
	Destination       string     `json:"destination"`
	DepartureTime     time.Time  `json:"departure_time"`
	SeatsTotal        int32      `json:"seats_total"`
	PricePerSeatCents int32      `json:"price_per_seat_cents"`
	Status            RideStatus `json:"status"`
	CreatedOn         time.Time  `json:"created_on"`
	UpdatedOn         time.Time  `json:"updated_on"`
}

// Bookable reports whether new seat requests may be submitted. A FULL ride
// stays bookable here; the capacity check rejects the request instead, so
// callers get CapacityExceeded rather than ResourceUnavailable.
func (r *Ride) Bookable() bool {
	return r.Status != RideStatusCompleted && r.Status != RideStatusCancelled
}
