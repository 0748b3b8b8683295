package utils

import (
	"math"
	"time"
)

// QuoteExclusive prices a vehicle booking over [start, end). Bookings under
// a day are charged by started hour, longer ones by started day. The quote
// is fixed at submission time and never recomputed.
func QuoteExclusive(pricePerHourCents, pricePerDayCents int32, start, end time.Time) int32 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	hours := int32(math.Ceil(d.Hours()))
	if hours < 1 {
		hours = 1
	}
	if hours < 24 {
		return pricePerHourCents * hours
	}
	days := int32(math.Ceil(d.Hours() / 24))
	return pricePerDayCents * days
}

// QuotePooled prices a seat-count booking.
func QuotePooled(pricePerSeatCents, seats int32) int32 {
	if seats < 1 {
		return 0
	}
	return pricePerSeatCents * seats
}
