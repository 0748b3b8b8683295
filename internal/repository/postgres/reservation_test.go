package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelshare-backend/internal/domain"
)

func newMockRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *reservationRepository) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	return db, mock, &reservationRepository{db: db}
}

func pooledReservation(seats int32) *domain.Reservation {
	return &domain.Reservation{
		Code:         "res-code",
		ResourceKind: domain.KindPooled,
		ResourceID:   1,
		RequesterID:  20,
		Seats:        seats,
		State:        domain.StatePending,
		PaymentState: domain.PaymentUnpaid,
	}
}

func TestReservationRepository_SubmitPooled(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		res := pooledReservation(2)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT host_id, seats_total, status FROM rides WHERE id = \\$1 FOR UPDATE").
			WithArgs(res.ResourceID).
			WillReturnRows(sqlmock.NewRows([]string{"host_id", "seats_total", "status"}).AddRow(10, 3, "OPEN"))
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(seats\\), 0\\) FROM reservations").
			WithArgs(res.ResourceID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO reservations").
			WithArgs(res.Code, res.ResourceKind, res.ResourceID, res.RequesterID, int32(10),
				res.StartTime, res.EndTime, res.Seats, res.State, res.PaymentState, res.PriceQuotedCents).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(7, time.Now(), time.Now()))
		mock.ExpectExec("UPDATE rides SET status").
			WithArgs(res.ResourceID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Submit(ctx, res)
		require.NoError(t, err)
		assert.Equal(t, int32(7), res.ID)
		assert.Equal(t, int32(10), res.OwnerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CapacityExceeded", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		res := pooledReservation(2)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT host_id, seats_total, status FROM rides WHERE id = \\$1 FOR UPDATE").
			WithArgs(res.ResourceID).
			WillReturnRows(sqlmock.NewRows([]string{"host_id", "seats_total", "status"}).AddRow(10, 3, "OPEN"))
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(seats\\), 0\\) FROM reservations").
			WithArgs(res.ResourceID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))
		mock.ExpectRollback()

		err := repo.Submit(ctx, res)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SelfBooking", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		res := pooledReservation(1)
		res.RequesterID = 10

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT host_id, seats_total, status FROM rides WHERE id = \\$1 FOR UPDATE").
			WithArgs(res.ResourceID).
			WillReturnRows(sqlmock.NewRows([]string{"host_id", "seats_total", "status"}).AddRow(10, 3, "OPEN"))
		mock.ExpectRollback()

		err := repo.Submit(ctx, res)
		assert.ErrorIs(t, err, domain.ErrSelfBookingForbidden)
	})

	t.Run("RideCancelled", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		res := pooledReservation(1)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT host_id, seats_total, status FROM rides WHERE id = \\$1 FOR UPDATE").
			WithArgs(res.ResourceID).
			WillReturnRows(sqlmock.NewRows([]string{"host_id", "seats_total", "status"}).AddRow(10, 3, "CANCELLED"))
		mock.ExpectRollback()

		err := repo.Submit(ctx, res)
		assert.ErrorIs(t, err, domain.ErrResourceUnavailable)
	})
}

func TestReservationRepository_SubmitExclusive(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	exclusive := func() *domain.Reservation {
		return &domain.Reservation{
			Code:         "res-code",
			ResourceKind: domain.KindExclusive,
			ResourceID:   1,
			RequesterID:  20,
			StartTime:    &start,
			EndTime:      &end,
			State:        domain.StatePending,
			PaymentState: domain.PaymentUnpaid,
		}
	}

	t.Run("OverlapConflict", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		res := exclusive()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, status FROM vehicles WHERE id = \\$1 FOR UPDATE").
			WithArgs(res.ResourceID).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id", "status"}).AddRow(10, "AVAILABLE"))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(res.ResourceID, res.StartTime, res.EndTime).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.Submit(ctx, res)
		assert.ErrorIs(t, err, domain.ErrOverlapConflict)
	})

	t.Run("UnderMaintenance", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		res := exclusive()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, status FROM vehicles WHERE id = \\$1 FOR UPDATE").
			WithArgs(res.ResourceID).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id", "status"}).AddRow(10, "MAINTENANCE"))
		mock.ExpectRollback()

		err := repo.Submit(ctx, res)
		assert.ErrorIs(t, err, domain.ErrResourceUnavailable)
	})
}

func TestReservationRepository_Approve(t *testing.T) {
	ctx := context.Background()
	deadline := time.Now().Add(15 * time.Minute)

	t.Run("Success", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE reservations").
			WithArgs(int32(7), deadline).
			WillReturnRows(sqlmock.NewRows([]string{"resource_kind", "resource_id"}).AddRow("EXCLUSIVE", 1))
		mock.ExpectExec("UPDATE vehicles SET status").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.Approve(ctx, 7, deadline)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LostRace", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE reservations").
			WithArgs(int32(7), deadline).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		ok, err := repo.Approve(ctx, 7, deadline)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestReservationRepository_MarkPaid(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		// confirming clears the deadline along with the state flip
		mock.ExpectBegin()
		mock.ExpectQuery("(?s)UPDATE reservations.*payment_deadline = NULL").
			WithArgs(int32(7), now).
			WillReturnRows(sqlmock.NewRows([]string{"resource_kind", "resource_id"}).AddRow("POOLED", 1))
		mock.ExpectExec("UPDATE rides SET status").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.MarkPaid(ctx, 7, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("DeadlinePassed", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		// the guarded update matches no row once the deadline is behind now
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE reservations").
			WithArgs(int32(7), now).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		ok, err := repo.MarkPaid(ctx, 7, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestReservationRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		mock.ExpectQuery("(?s)SELECT (.+) FROM reservations WHERE id = \\$1").
			WithArgs(int32(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		db, mock, repo := newMockRepo(t)
		defer db.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{
			"id", "code", "resource_kind", "resource_id", "requester_id", "owner_id",
			"start_time", "end_time", "seats", "state", "payment_state", "payment_deadline",
			"price_quoted_cents", "reject_reason", "cancelled_by", "cancelled_at", "cancel_reason",
			"refund_cents", "created_on", "updated_on",
		}).AddRow(7, "res-code", "POOLED", 1, 20, 10,
			nil, nil, 2, "AWAITING_PAYMENT", "UNPAID", now.Add(10*time.Minute),
			1000, nil, nil, nil, nil, 0, now, now)

		mock.ExpectQuery("(?s)SELECT (.+) FROM reservations WHERE id = \\$1").
			WithArgs(int32(7)).
			WillReturnRows(rows)

		res, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int32(7), res.ID)
		assert.Equal(t, domain.StateAwaitingPayment, res.State)
		assert.Nil(t, res.StartTime)
		require.NotNil(t, res.PaymentDeadline)
		assert.Equal(t, int32(2), res.Seats)
	})
}
