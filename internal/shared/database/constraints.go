package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the partial indexes the booking engine relies on
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// A gateway order belongs to exactly one booking
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_order_id
			ON bookings (order_id) WHERE order_id IS NOT NULL;`,

		// Reaper scan of stale pending bookings
		`CREATE INDEX IF NOT EXISTS idx_bookings_pending_created_at
			ON bookings (created_at) WHERE status = 'pending';`,

		// Admin reconciliation queue
		`CREATE INDEX IF NOT EXISTS idx_bookings_needs_reconciliation
			ON bookings (updated_at) WHERE needs_reconciliation;`,

		// A provider payment settles at most one booking
		`DROP INDEX IF EXISTS idx_bookings_payment_id;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_provider_payment_id
			ON bookings (payment_provider, payment_id) WHERE payment_id IS NOT NULL;`,

		// Paid bookings whose seat commit has not landed yet
		`CREATE INDEX IF NOT EXISTS idx_bookings_paid_uncommitted
			ON bookings (paid_at) WHERE status = 'paid' AND NOT seats_committed;`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
