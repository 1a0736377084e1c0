package storage

import (
	"context"
	"errors"
	"time"

	"cricket-booking/internal/models"
	"cricket-booking/internal/slot"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrSlotTaken         = errors.New("slot already booked")
	ErrGroundUnavailable = errors.New("ground is not accepting bookings")
)

type Store interface {
	ListAvailableGrounds(ctx context.Context) ([]*models.Ground, error)
	GetGround(ctx context.Context, id int64) (*models.Ground, error)
	GetGroundByName(ctx context.Context, name string) (*models.Ground, error)
	SaveGround(ctx context.Context, g *models.Ground) error
	SetGroundAvailability(ctx context.Context, id int64, available bool) error
	UpdateGroundRating(ctx context.Context, id int64, rating float64, totalReviews int) error

	// ActiveBookingsOn returns the confirmed bookings of a ground on one date.
	ActiveBookingsOn(ctx context.Context, groundID int64, date slot.Date) ([]*models.Booking, error)
	// CreateBooking re-checks availability and overlap and inserts in one atomic unit.
	// It fails with ErrNotFound, ErrGroundUnavailable or ErrSlotTaken.
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	// CancelBooking reports changed=false when the booking was already cancelled.
	// A booking owned by someone else is ErrNotFound.
	CancelBooking(ctx context.Context, id int64, userID string, at time.Time) (b *models.Booking, changed bool, err error)
	ListBookingsForUser(ctx context.Context, userID string) ([]*models.Booking, error)
	ListBookingsForGround(ctx context.Context, groundID int64, r *slot.DateRange) ([]*models.Booking, error)

	HealthCheck(ctx context.Context) error
	Close() error
}

func slotsOf(bookings []*models.Booking) []slot.Slot {
	out := make([]slot.Slot, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.Slot())
	}
	return out
}
