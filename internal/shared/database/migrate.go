package database

import (
	"seatline/internal/bookings"
	"seatline/internal/events"
	"seatline/internal/seatmaps"
	"seatline/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&seatmaps.SeatMap{},
		&bookings.Booking{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
