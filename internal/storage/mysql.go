package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"cricket-booking/internal/config"
	"cricket-booking/internal/logger"
	"cricket-booking/internal/models"
	"cricket-booking/internal/slot"
)

const groundColumns = `id, name, location, address, price_per_hour, amenities, rating, total_reviews, is_available, created_at`

const bookingColumns = `id, ground_id, user_id, team_name, contact_number, booking_date, start_minute, duration_hours,
        total_cost, status, payment_method, payment_status, special_requests, created_at, updated_at`

type MySQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenMySQL opens and pings the pool without touching the schema.
func OpenMySQL(cfg config.DatabaseConfig, log *logger.Logger) (*sql.DB, error) {
	log.LogDatabase("CONNECT", "mysql", fmt.Sprintf("Connecting to MySQL at %s:%s", cfg.Host, cfg.Port))

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Error("DATABASE", "Failed to open MySQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Error("DATABASE", "Failed to ping MySQL: "+err.Error())
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func NewMySQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*MySQLStore, error) {
	db, err := OpenMySQL(cfg, log)
	if err != nil {
		return nil, err
	}

	log.LogDatabase("MIGRATE", "mysql", "Creating tables if not exists")
	if err := Migrate(context.Background(), db); err != nil {
		log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "mysql", "MySQL connection established and tables initialized")
	return NewMySQLStoreFromDB(db, log), nil
}

func NewMySQLStoreFromDB(db *sql.DB, log *logger.Logger) *MySQLStore {
	return &MySQLStore{db: db, log: log}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGround(row rowScanner) (*models.Ground, error) {
	g := &models.Ground{}
	err := row.Scan(&g.ID, &g.Name, &g.Location, &g.Address, &g.PricePerHour, &g.Amenities,
		&g.Rating, &g.TotalReviews, &g.IsAvailable, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var special sql.NullString
	err := row.Scan(&b.ID, &b.GroundID, &b.UserID, &b.TeamName, &b.ContactNumber, &b.Date, &b.StartTime,
		&b.Duration, &b.TotalCost, &b.Status, &b.PaymentMethod, &b.PaymentStatus, &special, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if special.Valid {
		s := special.String
		b.SpecialRequests = &s
	}
	return b, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryBookings(ctx context.Context, q querier, query string, args ...any) ([]*models.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return bookings, nil
}

func (s *MySQLStore) ListAvailableGrounds(ctx context.Context) ([]*models.Ground, error) {
	s.log.LogDatabase("SELECT", "mysql", "Listing available grounds")

	query := `
    SELECT ` + groundColumns + `
    FROM grounds
    WHERE is_available = TRUE
    ORDER BY rating DESC, created_at DESC, id DESC
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to list grounds: %s", err.Error()))
		return nil, fmt.Errorf("failed to list grounds: %w", err)
	}
	defer rows.Close()

	grounds := []*models.Ground{}
	for rows.Next() {
		g, err := scanGround(rows)
		if err != nil {
			s.log.Error("DATABASE", fmt.Sprintf("Failed to scan ground row: %s", err.Error()))
			return nil, fmt.Errorf("failed to scan ground: %w", err)
		}
		grounds = append(grounds, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "mysql", fmt.Sprintf("Listed %d available grounds", len(grounds)))
	return grounds, nil
}

func (s *MySQLStore) getGroundWhere(ctx context.Context, where string, arg any) (*models.Ground, error) {
	query := `SELECT ` + groundColumns + ` FROM grounds WHERE ` + where
	g, err := scanGround(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ground: %w", err)
	}
	return g, nil
}

func (s *MySQLStore) GetGround(ctx context.Context, id int64) (*models.Ground, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Fetching ground %d", id))
	return s.getGroundWhere(ctx, "id = ?", id)
}

func (s *MySQLStore) GetGroundByName(ctx context.Context, name string) (*models.Ground, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Fetching ground %q", name))
	return s.getGroundWhere(ctx, "name = ?", name)
}

func (s *MySQLStore) SaveGround(ctx context.Context, g *models.Ground) error {
	s.log.LogDatabase("INSERT", "mysql", fmt.Sprintf("Saving ground %q", g.Name))

	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	query := `
    INSERT INTO grounds (
        name, location, address, price_per_hour, amenities, rating, total_reviews, is_available, created_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	res, err := s.db.ExecContext(ctx, query, g.Name, g.Location, g.Address, g.PricePerHour, g.Amenities,
		g.Rating, g.TotalReviews, g.IsAvailable, g.CreatedAt)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save ground %q: %s", g.Name, err.Error()))
		return fmt.Errorf("failed to save ground: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read ground id: %w", err)
	}
	g.ID = id

	s.log.LogDatabase("SUCCESS", "mysql", fmt.Sprintf("Ground %d saved successfully", g.ID))
	return nil
}

func (s *MySQLStore) updateGround(ctx context.Context, id int64, set string, args ...any) error {
	res, err := s.db.ExecContext(ctx, `UPDATE grounds SET `+set+` WHERE id = ?`, append(args, id)...)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to update ground %d: %s", id, err.Error()))
		return fmt.Errorf("failed to update ground: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update ground: %w", err)
	}
	if n == 0 {
		// MySQL reports 0 affected rows for a no-op update as well, so confirm the row exists.
		if _, err := s.GetGround(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *MySQLStore) SetGroundAvailability(ctx context.Context, id int64, available bool) error {
	s.log.LogDatabase("UPDATE", "mysql", fmt.Sprintf("Setting ground %d availability to %t", id, available))
	return s.updateGround(ctx, id, "is_available = ?", available)
}

func (s *MySQLStore) UpdateGroundRating(ctx context.Context, id int64, rating float64, totalReviews int) error {
	s.log.LogDatabase("UPDATE", "mysql", fmt.Sprintf("Setting ground %d rating to %.1f (%d reviews)", id, rating, totalReviews))
	return s.updateGround(ctx, id, "rating = ?, total_reviews = ?", rating, totalReviews)
}

func (s *MySQLStore) ActiveBookingsOn(ctx context.Context, groundID int64, date slot.Date) ([]*models.Booking, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Active bookings for ground %d on %s", groundID, date))

	query := `
    SELECT ` + bookingColumns + `
    FROM bookings
    WHERE ground_id = ? AND booking_date = ? AND status = ?
    ORDER BY start_minute ASC
    `
	return queryBookings(ctx, s.db, query, groundID, date, models.StatusConfirmed)
}

// CreateBooking serialises writers per ground by locking the ground row, then re-validates the slot
// against the confirmed bookings of that date before inserting.
func (s *MySQLStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.log.LogDatabase("INSERT", "mysql", fmt.Sprintf("Booking ground %d on %s at %s for %dh", b.GroundID, b.Date, b.StartTime, b.Duration))

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var available bool
	err = tx.QueryRowContext(ctx, `SELECT is_available FROM grounds WHERE id = ? FOR UPDATE`, b.GroundID).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock ground: %w", err)
	}
	if !available {
		return ErrGroundUnavailable
	}

	existing, err := queryBookings(ctx, tx, `
    SELECT `+bookingColumns+`
    FROM bookings
    WHERE ground_id = ? AND booking_date = ? AND status = ?
    `, b.GroundID, b.Date, models.StatusConfirmed)
	if err != nil {
		return err
	}
	if slot.Conflicts(b.Slot(), slotsOf(existing)) {
		s.log.LogDatabase("CONFLICT", "mysql", fmt.Sprintf("Ground %d on %s at %s is taken", b.GroundID, b.Date, b.StartTime))
		return ErrSlotTaken
	}

	var special any
	if b.SpecialRequests != nil {
		special = *b.SpecialRequests
	}
	res, err := tx.ExecContext(ctx, `
    INSERT INTO bookings (
        ground_id, user_id, team_name, contact_number, booking_date, start_minute, duration_hours, end_minute,
        total_cost, status, payment_method, payment_status, special_requests, created_at, updated_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		b.GroundID, b.UserID, b.TeamName, b.ContactNumber, b.Date, b.StartTime, b.Duration, b.EndTime(),
		b.TotalCost, b.Status, string(b.PaymentMethod), string(b.PaymentStatus), special, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to insert booking: %s", err.Error()))
		return fmt.Errorf("failed to save booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read booking id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	b.ID = id

	s.log.LogDatabase("SUCCESS", "mysql", fmt.Sprintf("Booking %d saved successfully", b.ID))
	return nil
}

func (s *MySQLStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Fetching booking %d", id))

	b, err := scanBooking(s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.LogDatabase("NOT_FOUND", "mysql", fmt.Sprintf("Booking %d not found", id))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (s *MySQLStore) CancelBooking(ctx context.Context, id int64, userID string, at time.Time) (*models.Booking, bool, error) {
	s.log.LogDatabase("UPDATE", "mysql", fmt.Sprintf("Cancelling booking %d", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND user_id = ? FOR UPDATE`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("failed to get booking: %w", err)
	}
	if b.Status == models.StatusCancelled {
		return b, false, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		models.StatusCancelled, at, id); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to cancel booking %d: %s", id, err.Error()))
		return nil, false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	b.Status = models.StatusCancelled
	b.UpdatedAt = at

	s.log.LogDatabase("SUCCESS", "mysql", fmt.Sprintf("Booking %d cancelled", id))
	return b, true, nil
}

func (s *MySQLStore) ListBookingsForUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Listing bookings for user %s", userID))

	query := `
    SELECT ` + bookingColumns + `
    FROM bookings
    WHERE user_id = ?
    ORDER BY booking_date DESC, start_minute DESC, id DESC
    `
	return queryBookings(ctx, s.db, query, userID)
}

func (s *MySQLStore) ListBookingsForGround(ctx context.Context, groundID int64, r *slot.DateRange) ([]*models.Booking, error) {
	s.log.LogDatabase("SELECT", "mysql", fmt.Sprintf("Listing bookings for ground %d", groundID))

	where := []string{"ground_id = ?"}
	args := []any{groundID}
	if r != nil && !r.From.IsZero() {
		where = append(where, "booking_date >= ?")
		args = append(args, r.From)
	}
	if r != nil && !r.To.IsZero() {
		where = append(where, "booking_date <= ?")
		args = append(args, r.To)
	}
	query := `
    SELECT ` + bookingColumns + `
    FROM bookings
    WHERE ` + strings.Join(where, " AND ") + `
    ORDER BY booking_date ASC, start_minute ASC, id ASC
    `
	return queryBookings(ctx, s.db, query, args...)
}

func (s *MySQLStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MySQLStore) Close() error {
	s.log.LogDatabase("CLOSE", "mysql", "Closing MySQL connection")
	return s.db.Close()
}
