package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/repository"
)

const reservationColumns = `id, code, resource_kind, resource_id, requester_id, owner_id,
	start_time, end_time, seats, state, payment_state, payment_deadline,
	price_quoted_cents, reject_reason, cancelled_by, cancelled_at, cancel_reason,
	refund_cents, created_on, updated_on`

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

// Submit books a reservation atomically: it locks the resource row, runs the
// overlap or seat-capacity check against that locked snapshot, inserts the
// row, and recomputes the resource status, all in one transaction. Of two
// concurrent submissions fighting over the same capacity, the second blocks
// on the row lock and re-checks against the committed winner.
func (r *reservationRepository) Submit(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	switch res.ResourceKind {
	case domain.KindExclusive:
		if err := checkExclusive(ctx, tx, res); err != nil {
			return err
		}
	case domain.KindPooled:
		if err := checkPooled(ctx, tx, res); err != nil {
			return err
		}
	default:
		return fmt.Errorf("submit reservation: unknown resource kind %q", res.ResourceKind)
	}

	query := `INSERT INTO reservations (code, resource_kind, resource_id, requester_id, owner_id,
	              start_time, end_time, seats, state, payment_state, price_quoted_cents, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	err = tx.QueryRowContext(ctx, query,
		res.Code, res.ResourceKind, res.ResourceID, res.RequesterID, res.OwnerID,
		res.StartTime, res.EndTime, res.Seats, res.State, res.PaymentState, res.PriceQuotedCents,
	).Scan(&res.ID, &res.CreatedOn, &res.UpdatedOn)
	if err != nil {
		return err
	}

	if err := recomputeResourceStatus(ctx, tx, res.ResourceKind, res.ResourceID); err != nil {
		return err
	}
	return tx.Commit()
}

// checkExclusive locks the vehicle row and rejects unavailable vehicles,
// self-bookings, and interval overlaps with active reservations. Intervals
// are half-open, so back-to-back bookings sharing a boundary instant do not
// conflict.
func checkExclusive(ctx context.Context, tx *sql.Tx, res *domain.Reservation) error {
	var ownerID int32
	var status domain.VehicleStatus
	err := tx.QueryRowContext(ctx, `SELECT owner_id, status FROM vehicles WHERE id = $1 FOR UPDATE`, res.ResourceID).
		Scan(&ownerID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == domain.VehicleStatusMaintenance || status == domain.VehicleStatusInactive {
		return domain.ErrResourceUnavailable
	}
	if ownerID == res.RequesterID {
		return domain.ErrSelfBookingForbidden
	}
	res.OwnerID = ownerID

	var conflict bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (
	        SELECT 1 FROM reservations
	        WHERE resource_kind = 'EXCLUSIVE' AND resource_id = $1
	          AND state IN ('PENDING', 'AWAITING_PAYMENT', 'CONFIRMED', 'IN_USE')
	          AND start_time < $3 AND $2 < end_time)`,
		res.ResourceID, res.StartTime, res.EndTime,
	).Scan(&conflict)
	if err != nil {
		return err
	}
	if conflict {
		return domain.ErrOverlapConflict
	}
	return nil
}

// checkPooled locks the ride row and rejects closed rides, self-bookings,
// and seat requests that would push occupancy past the fixed total.
func checkPooled(ctx context.Context, tx *sql.Tx, res *domain.Reservation) error {
	var hostID, seatsTotal int32
	var status domain.RideStatus
	err := tx.QueryRowContext(ctx, `SELECT host_id, seats_total, status FROM rides WHERE id = $1 FOR UPDATE`, res.ResourceID).
		Scan(&hostID, &seatsTotal, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == domain.RideStatusCompleted || status == domain.RideStatusCancelled {
		return domain.ErrResourceUnavailable
	}
	if hostID == res.RequesterID {
		return domain.ErrSelfBookingForbidden
	}
	res.OwnerID = hostID

	var occupied int32
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(seats), 0) FROM reservations
	        WHERE resource_kind = 'POOLED' AND resource_id = $1
	          AND state IN ('PENDING', 'AWAITING_PAYMENT', 'CONFIRMED', 'IN_USE')`,
		res.ResourceID,
	).Scan(&occupied)
	if err != nil {
		return err
	}
	if occupied+res.Seats > seatsTotal {
		return domain.ErrCapacityExceeded
	}
	return nil
}

// recomputeResourceStatus rewrites the derived resource status from the
// reservation set inside the caller's transaction. Explicit lifecycle
// statuses (maintenance, inactive, cancelled, completed) are left alone.
func recomputeResourceStatus(ctx context.Context, tx *sql.Tx, kind domain.ResourceKind, resourceID int32) error {
	var query string
	switch kind {
	case domain.KindExclusive:
		query = `UPDATE vehicles SET status = CASE
		        WHEN EXISTS (SELECT 1 FROM reservations
		                     WHERE resource_kind = 'EXCLUSIVE' AND resource_id = vehicles.id
		                       AND state IN ('CONFIRMED', 'IN_USE') AND end_time > NOW()) THEN 'RESERVED'
		        WHEN EXISTS (SELECT 1 FROM reservations
		                     WHERE resource_kind = 'EXCLUSIVE' AND resource_id = vehicles.id
		                       AND state IN ('PENDING', 'AWAITING_PAYMENT') AND end_time > NOW()) THEN 'PENDING'
		        ELSE 'AVAILABLE' END,
		        updated_on = NOW()
		    WHERE id = $1 AND status NOT IN ('MAINTENANCE', 'INACTIVE')`
	case domain.KindPooled:
		query = `UPDATE rides SET status = CASE
		        WHEN seats_total <= (SELECT COALESCE(SUM(seats), 0) FROM reservations
		                             WHERE resource_kind = 'POOLED' AND resource_id = rides.id
		                               AND state IN ('PENDING', 'AWAITING_PAYMENT', 'CONFIRMED', 'IN_USE')) THEN 'FULL'
		        ELSE 'OPEN' END,
		        updated_on = NOW()
		    WHERE id = $1 AND status NOT IN ('CANCELLED', 'COMPLETED')`
	default:
		return fmt.Errorf("recompute status: unknown resource kind %q", kind)
	}
	_, err := tx.ExecContext(ctx, query, resourceID)
	return err
}

// transition runs a guarded state update and the resource status recompute
// in one transaction. The update must guard on the expected current state
// and end with RETURNING resource_kind, resource_id; zero rows means a
// concurrent writer moved the reservation first, reported as (false, nil).
func (r *reservationRepository) transition(ctx context.Context, query string, args ...interface{}) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var kind domain.ResourceKind
	var resourceID int32
	err = tx.QueryRowContext(ctx, query, args...).Scan(&kind, &resourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := recomputeResourceStatus(ctx, tx, kind, resourceID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *reservationRepository) Approve(ctx context.Context, id int32, deadline time.Time) (bool, error) {
	return r.transition(ctx, `UPDATE reservations
	    SET state = 'AWAITING_PAYMENT', payment_deadline = $2, updated_on = NOW()
	    WHERE id = $1 AND state = 'PENDING'
	    RETURNING resource_kind, resource_id`, id, deadline)
}

func (r *reservationRepository) Reject(ctx context.Context, id int32, reason string) (bool, error) {
	return r.transition(ctx, `UPDATE reservations
	    SET state = 'REJECTED', reject_reason = $2, updated_on = NOW()
	    WHERE id = $1 AND state = 'PENDING'
	    RETURNING resource_kind, resource_id`, id, reason)
}

// MarkPaid guards on the deadline as well as the state, so a payment racing
// the expiry sweep can never land on a lapsed reservation.
func (r *reservationRepository) MarkPaid(ctx context.Context, id int32, now time.Time) (bool, error) {
	return r.transition(ctx, `UPDATE reservations
	    SET state = 'CONFIRMED', payment_state = 'PAID', payment_deadline = NULL, updated_on = NOW()
	    WHERE id = $1 AND state = 'AWAITING_PAYMENT' AND payment_deadline > $2
	    RETURNING resource_kind, resource_id`, id, now)
}

func (r *reservationRepository) Expire(ctx context.Context, id int32) (bool, error) {
	return r.transition(ctx, `UPDATE reservations
	    SET state = 'PAYMENT_EXPIRED', payment_state = 'EXPIRED', payment_deadline = NULL, updated_on = NOW()
	    WHERE id = $1 AND state = 'AWAITING_PAYMENT'
	    RETURNING resource_kind, resource_id`, id)
}

func (r *reservationRepository) BeginUse(ctx context.Context, id int32) (bool, error) {
	return r.transition(ctx, `UPDATE reservations
	    SET state = 'IN_USE', updated_on = NOW()
	    WHERE id = $1 AND state = 'CONFIRMED'
	    RETURNING resource_kind, resource_id`, id)
}

func (r *reservationRepository) Complete(ctx context.Context, id int32) (bool, error) {
	return r.transition(ctx, `UPDATE reservations
	    SET state = 'COMPLETED', updated_on = NOW()
	    WHERE id = $1 AND state = 'IN_USE'
	    RETURNING resource_kind, resource_id`, id)
}

// Cancel covers every pre-use state in one guard; the computed refund is
// recorded on the row and a paid reservation flips to REFUNDED.
func (r *reservationRepository) Cancel(ctx context.Context, id int32, cancelledBy int32, reason string, refundCents int32) (bool, error) {
	return r.transition(ctx, `UPDATE reservations
	    SET state = 'CANCELLED',
	        cancelled_by = $2, cancelled_at = NOW(), cancel_reason = $3, refund_cents = $4,
	        payment_state = CASE WHEN payment_state = 'PAID' THEN 'REFUNDED' ELSE payment_state END,
	        payment_deadline = NULL, updated_on = NOW()
	    WHERE id = $1 AND state IN ('PENDING', 'AWAITING_PAYMENT', 'CONFIRMED')
	    RETURNING resource_kind, resource_id`, id, cancelledBy, reason, refundCents)
}

func (r *reservationRepository) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	return scanReservation(row)
}

func (r *reservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE code = $1`, code)
	return scanReservation(row)
}

func (r *reservationRepository) ListByRequester(ctx context.Context, requesterID int32, page, pageSize int32) ([]domain.Reservation, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reservations WHERE requester_id = $1`, requesterID).Scan(&count); err != nil {
		return nil, 0, err
	}
	list, err := r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations
	    WHERE requester_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`,
		requesterID, pageSize, (page-1)*pageSize)
	return list, count, err
}

func (r *reservationRepository) ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Reservation, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reservations WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return nil, 0, err
	}
	list, err := r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations
	    WHERE owner_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`,
		ownerID, pageSize, (page-1)*pageSize)
	return list, count, err
}

func (r *reservationRepository) ListActiveByResource(ctx context.Context, kind domain.ResourceKind, resourceID int32) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations
	    WHERE resource_kind = $1 AND resource_id = $2
	      AND state IN ('PENDING', 'AWAITING_PAYMENT', 'CONFIRMED', 'IN_USE')
	    ORDER BY created_on ASC`, kind, resourceID)
}

func (r *reservationRepository) ListLapsedAwaitingPayment(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations
	    WHERE state = 'AWAITING_PAYMENT' AND payment_deadline <= $1
	    ORDER BY payment_deadline ASC`, now)
}

func (r *reservationRepository) ListElapsedInUse(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, `SELECT `+reservationColumns+` FROM reservations
	    WHERE state = 'IN_USE' AND resource_kind = 'EXCLUSIVE' AND end_time <= $1
	    ORDER BY end_time ASC`, now)
}

func (r *reservationRepository) queryReservations(ctx context.Context, query string, args ...interface{}) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	var startTime, endTime, paymentDeadline, cancelledAt sql.NullTime
	var cancelledBy sql.NullInt32
	var rejectReason, cancelReason sql.NullString

	err := row.Scan(
		&res.ID, &res.Code, &res.ResourceKind, &res.ResourceID, &res.RequesterID, &res.OwnerID,
		&startTime, &endTime, &res.Seats, &res.State, &res.PaymentState, &paymentDeadline,
		&res.PriceQuotedCents, &rejectReason, &cancelledBy, &cancelledAt, &cancelReason,
		&res.RefundCents, &res.CreatedOn, &res.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if startTime.Valid {
		res.StartTime = &startTime.Time
	}
	if endTime.Valid {
		res.EndTime = &endTime.Time
	}
	if paymentDeadline.Valid {
		res.PaymentDeadline = &paymentDeadline.Time
	}
	if cancelledAt.Valid {
		res.CancelledAt = &cancelledAt.Time
	}
	if cancelledBy.Valid {
		res.CancelledBy = &cancelledBy.Int32
	}
	res.RejectReason = rejectReason.String
	res.CancelReason = cancelReason.String
	return res, nil
}
