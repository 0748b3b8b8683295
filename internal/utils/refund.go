package utils

// RefundPolicy holds the cancellation tiers. The cutoffs are business
// parameters surfaced through configuration, not invariants.
type RefundPolicy struct {
	FullRefundHours float64 // more than this many hours before start: 100%
	HalfRefundHours float64 // more than this (and at most FullRefundHours): 50%
}

// DefaultRefundPolicy mirrors the shipped configuration defaults.
var DefaultRefundPolicy = RefundPolicy{FullRefundHours: 24, HalfRefundHours: 2}

// ComputeRefund derives the refund amount for a cancellation. It is total
// over its inputs: nothing was collected for an unpaid reservation, so the
// refund is zero, and the result is always within [0, priceQuotedCents].
// It computes an amount only; moving money is downstream settlement.
func ComputeRefund(policy RefundPolicy, priceQuotedCents int32, paid bool, hoursUntilStart float64) int32 {
	if !paid || priceQuotedCents <= 0 {
		return 0
	}
	switch {
	case hoursUntilStart > policy.FullRefundHours:
		return priceQuotedCents
	case hoursUntilStart > policy.HalfRefundHours:
		return priceQuotedCents / 2
	default:
		return 0
	}
}
