package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeRefund(t *testing.T) {
	policy := DefaultRefundPolicy

	tests := []struct {
		name            string
		priceCents      int32
		paid            bool
		hoursUntilStart float64
		want            int32
	}{
		{"full refund above 24h", 1000, true, 25, 1000},
		{"half refund between 2h and 24h", 1000, true, 12, 500},
		{"half refund just under full cutoff", 1000, true, 24, 500},
		{"no refund at 2h", 1000, true, 2, 0},
		{"no refund under 2h", 1000, true, 0.5, 0},
		{"no refund after start", 1000, true, -3, 0},
		{"unpaid always zero", 1000, false, 100, 0},
		{"zero price", 0, true, 100, 0},
		{"odd amount rounds down", 999, true, 12, 499},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRefund(policy, tt.priceCents, tt.paid, tt.hoursUntilStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeRefundNeverExceedsPrice(t *testing.T) {
	policy := RefundPolicy{FullRefundHours: 48, HalfRefundHours: 6}
	for _, hours := range []float64{-10, 0, 6, 7, 48, 49, 1000} {
		got := ComputeRefund(policy, 2500, true, hours)
		assert.GreaterOrEqual(t, got, int32(0))
		assert.LessOrEqual(t, got, int32(2500))
	}
}
