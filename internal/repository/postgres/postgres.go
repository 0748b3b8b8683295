package postgres

import (
	"database/sql"

	"wheelshare-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.VehicleRepository
	repository.RideRepository
	repository.ReservationRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		VehicleRepository:      NewVehicleRepository(db),
		RideRepository:         NewRideRepository(db),
		ReservationRepository:  NewReservationRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
