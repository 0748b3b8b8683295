package jobs

import (
	"context"
	"fmt"
	"time"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/logger"
)

// ExpireLapsedPayments sweeps reservations stuck in AWAITING_PAYMENT past
// their deadline and moves them to PAYMENT_EXPIRED, releasing the held
// capacity. Each row is expired with a state-guarded update, so a payment
// that lands between the listing and the sweep wins and the row is skipped.
func (jr *JobRunner) ExpireLapsedPayments() {
	jr.runWithRecovery("ExpireLapsedPayments", func() {
		ctx := context.Background()

		lapsed, err := jr.resRepo.ListLapsedAwaitingPayment(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list lapsed reservations", "error", err)
			return
		}

		count := 0
		for _, res := range lapsed {
			ok, err := jr.resRepo.Expire(ctx, res.ID)
			if err != nil {
				logger.Error("Failed to expire reservation", "reservation_id", res.ID, "error", err)
				continue
			}
			if !ok {
				// paid or cancelled since the listing
				continue
			}
			count++
			jr.notifier.Notify(ctx, res.RequesterID, domain.NotePaymentExpired,
				"Payment window expired",
				fmt.Sprintf("Reservation %s expired before payment", res.Code),
				map[string]string{"reservation_id": fmt.Sprintf("%d", res.ID), "reservation_code": res.Code})
		}
		logger.Info("Expired lapsed reservations", "count", count, "listed", len(lapsed))
	})
}

// CompleteElapsedReservations closes out vehicle reservations still IN_USE
// after their end time, freeing the vehicle for the next booking.
func (jr *JobRunner) CompleteElapsedReservations() {
	jr.runWithRecovery("CompleteElapsedReservations", func() {
		ctx := context.Background()

		elapsed, err := jr.resRepo.ListElapsedInUse(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list elapsed reservations", "error", err)
			return
		}

		count := 0
		for _, res := range elapsed {
			ok, err := jr.resRepo.Complete(ctx, res.ID)
			if err != nil {
				logger.Error("Failed to complete reservation", "reservation_id", res.ID, "error", err)
				continue
			}
			if !ok {
				continue
			}
			count++
			jr.notifier.Notify(ctx, res.RequesterID, domain.NoteReservationCompleted,
				"Reservation completed",
				fmt.Sprintf("Reservation %s is complete", res.Code),
				map[string]string{"reservation_id": fmt.Sprintf("%d", res.ID), "reservation_code": res.Code})
		}
		logger.Info("Completed elapsed reservations", "count", count, "listed", len(elapsed))
	})
}
