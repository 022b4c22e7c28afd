package postgres

import (
	"database/sql"

	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BillRepository
	repository.FeeScheduleRepository
	repository.OccupancyRepository
	repository.VehicleRepository
	repository.BookingRepository
	repository.ResidentRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BillRepository:         NewBillRepository(db),
		FeeScheduleRepository:  NewFeeScheduleRepository(db),
		OccupancyRepository:    NewOccupancyRepository(db),
		VehicleRepository:      NewVehicleRepository(db),
		BookingRepository:      NewBookingRepository(db),
		ResidentRepository:     NewResidentRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
