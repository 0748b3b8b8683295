package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/repository"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (owner_id, make, model, plate, price_per_hour_cents, price_per_day_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, v.OwnerID, v.Make, v.Model, v.Plate, v.PricePerHourCents, v.PricePerDayCents, v.Status, now, now).Scan(&v.ID)
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT id, owner_id, make, model, plate, price_per_hour_cents, price_per_day_cents, status, created_on, updated_on
	          FROM vehicles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Plate, &v.PricePerHourCents, &v.PricePerDayCents, &v.Status, &v.CreatedOn, &v.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) List(ctx context.Context, status string, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, owner_id, make, model, plate, price_per_hour_cents, price_per_day_cents, status, created_on, updated_on
	          FROM vehicles`

	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	if status != "" {
		query += ` ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	} else {
		query += ` ORDER BY created_on DESC LIMIT $1 OFFSET $2`
	}
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Plate, &v.PricePerHourCents, &v.PricePerDayCents, &v.Status, &v.CreatedOn, &v.UpdatedOn); err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, count, rows.Err()
}

func (r *vehicleRepository) SetStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	query := `UPDATE vehicles SET status = $1, updated_on = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
