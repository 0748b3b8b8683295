package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/repository"
)

type rideRepository struct {
	db *sql.DB
}

func NewRideRepository(db *sql.DB) repository.RideRepository {
	return &rideRepository{db: db}
}

func (r *rideRepository) Create(ctx context.Context, rd *domain.Ride) error {
	query := `INSERT INTO rides (host_id, origin, destination, departure_time, seats_total, price_per_seat_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, rd.HostID, rd.Origin, rd.Destination, rd.DepartureTime, rd.SeatsTotal, rd.PricePerSeatCents, rd.Status, now, now).Scan(&rd.ID)
}

func (r *rideRepository) GetByID(ctx context.Context, id int32) (*domain.Ride, error) {
	rd := &domain.Ride{}
	query := `SELECT id, host_id, origin, destination, departure_time, seats_total, price_per_seat_cents, status, created_on, updated_on
	          FROM rides WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rd.ID, &rd.HostID, &rd.Origin, &rd.Destination, &rd.DepartureTime, &rd.SeatsTotal, &rd.PricePerSeatCents, &rd.Status, &rd.CreatedOn, &rd.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func (r *rideRepository) ListUpcoming(ctx context.Context, from time.Time, page, pageSize int32) ([]domain.Ride, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, host_id, origin, destination, departure_time, seats_total, price_per_seat_cents, status, created_on, updated_on
	          FROM rides WHERE departure_time >= $1 AND status IN ('OPEN', 'FULL')`

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, from).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY departure_time ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, from, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rides []domain.Ride
	for rows.Next() {
		var rd domain.Ride
		if err := rows.Scan(&rd.ID, &rd.HostID, &rd.Origin, &rd.Destination, &rd.DepartureTime, &rd.SeatsTotal, &rd.PricePerSeatCents, &rd.Status, &rd.CreatedOn, &rd.UpdatedOn); err != nil {
			return nil, 0, err
		}
		rides = append(rides, rd)
	}
	return rides, count, rows.Err()
}

func (r *rideRepository) SetStatus(ctx context.Context, id int32, status domain.RideStatus) error {
	query := `UPDATE rides SET status = $1, updated_on = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
