package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"cricket-booking/internal/slot"
)

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case StatusConfirmed, StatusCancelled:
		return BookingStatus(s), nil
	default:
		return "", fmt.Errorf("unknown booking status %q", s)
	}
}

func (s BookingStatus) Active() bool { return s == StatusConfirmed }

func (s *BookingStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into BookingStatus", src)
	}
	parsed, err := ParseBookingStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BookingStatus) Value() (driver.Value, error) { return string(s), nil }

type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentAtVenue PaymentMethod = "at_venue"
)

// ParsePaymentMethod treats an empty value as payment at the venue.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case "":
		return PaymentAtVenue, nil
	case PaymentOnline, PaymentAtVenue:
		return PaymentMethod(s), nil
	default:
		return "", fmt.Errorf("payment_method must be %q or %q", PaymentOnline, PaymentAtVenue)
	}
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

type Booking struct {
	ID              int64         `json:"id"`
	GroundID        int64         `json:"ground_id"`
	UserID          string        `json:"user_id"`
	TeamName        string        `json:"team_name"`
	ContactNumber   string        `json:"contact_number"`
	Date            slot.Date     `json:"date"`
	StartTime       slot.Clock    `json:"start_time"`
	Duration        int           `json:"duration"`
	TotalCost       int64         `json:"total_cost"`
	Status          BookingStatus `json:"status"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	SpecialRequests *string       `json:"special_requests,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (b *Booking) Slot() slot.Slot {
	return slot.Slot{Date: b.Date, Start: b.StartTime, Duration: b.Duration}
}

// EndTime is derived and only exposed on the wire.
func (b *Booking) EndTime() slot.Clock {
	return b.Slot().End()
}

func (b Booking) MarshalJSON() ([]byte, error) {
	type plain Booking
	return json.Marshal(struct {
		plain
		EndTime slot.Clock `json:"end_time"`
	}{plain: plain(b), EndTime: b.EndTime()})
}

// CreateBookingRequest is the body of POST /api/bookings. Cost fields sent by clients are not part of it.
type CreateBookingRequest struct {
	GroundID        int64   `json:"ground_id"`
	TeamName        string  `json:"team_name"`
	ContactNumber   string  `json:"contact_number"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	Duration        int     `json:"duration"`
	PaymentMethod   string  `json:"payment_method"`
	SpecialRequests *string `json:"special_requests"`
}

// ScheduleEntry is a calendar row: a booking joined with its ground, without the booker's contact details.
type ScheduleEntry struct {
	BookingID      int64         `json:"booking_id"`
	GroundID       int64         `json:"ground_id"`
	GroundName     string        `json:"ground_name"`
	GroundLocation string        `json:"ground_location"`
	TeamName       string        `json:"team_name"`
	Date           slot.Date     `json:"date"`
	StartTime      slot.Clock    `json:"start_time"`
	EndTime        slot.Clock    `json:"end_time"`
	Duration       int           `json:"duration"`
	Status         BookingStatus `json:"status"`
}

type BookingEvent struct {
	Type      string    `json:"type"`
	BookingID int64     `json:"booking_id"`
	Booking   *Booking  `json:"booking"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)
