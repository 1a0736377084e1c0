package storage

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []struct {
	table string
	ddl   string
}{
	{
		table: "grounds",
		ddl: `
    CREATE TABLE IF NOT EXISTS grounds (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        name VARCHAR(120) NOT NULL,
        location VARCHAR(120) NOT NULL,
        address VARCHAR(255) NOT NULL DEFAULT '',
        price_per_hour BIGINT NOT NULL,
        amenities JSON NOT NULL,
        rating DOUBLE NOT NULL DEFAULT 0,
        total_reviews INT NOT NULL DEFAULT 0,
        is_available BOOLEAN NOT NULL DEFAULT TRUE,
        created_at DATETIME(6) NOT NULL,
        UNIQUE KEY uq_ground_name (name),
        INDEX idx_available_rating (is_available, rating, created_at),
        CONSTRAINT chk_ground_price CHECK (price_per_hour >= 0),
        CONSTRAINT chk_ground_rating CHECK (rating BETWEEN 0 AND 5)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
    `,
	},
	{
		table: "bookings",
		ddl: `
    CREATE TABLE IF NOT EXISTS bookings (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        ground_id BIGINT NOT NULL,
        user_id VARCHAR(64) NOT NULL,
        team_name VARCHAR(120) NOT NULL,
        contact_number VARCHAR(32) NOT NULL,
        booking_date DATE NOT NULL,
        start_minute SMALLINT NOT NULL,
        duration_hours SMALLINT NOT NULL,
        end_minute SMALLINT NOT NULL,
        total_cost BIGINT NOT NULL,
        status ENUM('confirmed', 'cancelled') NOT NULL,
        payment_method ENUM('online', 'at_venue') NOT NULL,
        payment_status ENUM('paid', 'pending') NOT NULL,
        special_requests TEXT NULL,
        created_at DATETIME(6) NOT NULL,
        updated_at DATETIME(6) NOT NULL,
        INDEX idx_ground_date_status (ground_id, booking_date, status),
        INDEX idx_user_date (user_id, booking_date, start_minute),
        CONSTRAINT fk_booking_ground FOREIGN KEY (ground_id) REFERENCES grounds(id),
        CONSTRAINT chk_booking_duration CHECK (duration_hours > 0),
        CONSTRAINT chk_booking_window CHECK (start_minute >= 0 AND end_minute <= 1440)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
    `,
	},
}

// Migrate creates the tables the service needs. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, t := range schema {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.table, err)
		}
	}
	return nil
}

func Tables() []string {
	out := make([]string, 0, len(schema))
	for _, t := range schema {
		out = append(out, t.table)
	}
	return out
}
