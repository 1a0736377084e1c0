package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cricket-booking/internal/logger"
	"cricket-booking/internal/models"
	"cricket-booking/internal/slot"
	"cricket-booking/internal/storage"
)

const (
	maxTeamNameLength        = 120
	maxSpecialRequestsLength = 500
)

// SlotLocker serialises create requests for one ground and date across replicas.
type SlotLocker interface {
	Acquire(ctx context.Context, groundID int64, date slot.Date) (release func(), err error)
}

type EventPublisher interface {
	PublishBookingEvent(event *models.BookingEvent) error
}

type CreateBookingInput struct {
	GroundID        int64
	UserID          string
	TeamName        string
	ContactNumber   string
	Date            string
	StartTime       string
	Duration        int
	PaymentMethod   string
	SpecialRequests *string
}

type BookingService struct {
	store     storage.Store
	publisher EventPublisher
	log       *logger.Logger
	lock      SlotLocker
	feeBps    int64
	now       func() time.Time
}

type BookingOption func(*BookingService)

func WithSlotLock(lock SlotLocker) BookingOption {
	return func(s *BookingService) { s.lock = lock }
}

func WithPlatformFee(basisPoints int64) BookingOption {
	return func(s *BookingService) { s.feeBps = basisPoints }
}

func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

func NewBookingService(store storage.Store, publisher EventPublisher, log *logger.Logger, opts ...BookingOption) *BookingService {
	s := &BookingService{
		store:     store,
		publisher: publisher,
		log:       log,
		feeBps:    DefaultPlatformFeeBasisPoints,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasConflict reports whether the slot overlaps a confirmed booking on the same ground and date.
func (s *BookingService) HasConflict(ctx context.Context, groundID int64, date slot.Date, start slot.Clock, duration int) (bool, error) {
	candidate := slot.Slot{Date: date, Start: start, Duration: duration}
	if err := candidate.Validate(); err != nil {
		return false, validationError("%s", err.Error())
	}
	active, err := s.store.ActiveBookingsOn(ctx, groundID, date)
	if err != nil {
		return false, storageError(err, "failed to check slot")
	}
	existing := make([]slot.Slot, 0, len(active))
	for _, b := range active {
		existing = append(existing, b.Slot())
	}
	return slot.Conflicts(candidate, existing), nil
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	b, err := s.buildBooking(in)
	if err != nil {
		return nil, err
	}

	ground, err := s.store.GetGround(ctx, b.GroundID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("ground %d not found", b.GroundID)
		}
		return nil, storageError(err, "failed to load ground")
	}
	if !ground.IsAvailable {
		return nil, validationError("ground %d is not accepting bookings", ground.ID)
	}

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, b.GroundID, b.Date)
		if err != nil {
			s.log.Warn("BOOKING", fmt.Sprintf("Slot lock for ground %d on %s not acquired: %v", b.GroundID, b.Date, err))
			return nil, newError(KindStorage, err, "booking service busy, please retry")
		}
		defer release()
	}

	taken, err := s.HasConflict(ctx, b.GroundID, b.Date, b.StartTime, b.Duration)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflictError(b)
	}

	now := s.now().UTC()
	b.TotalCost = TotalCost(ground.PricePerHour, b.Duration, s.feeBps)
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.store.CreateBooking(ctx, b); err != nil {
		switch {
		case errors.Is(err, storage.ErrSlotTaken):
			return nil, conflictError(b)
		case errors.Is(err, storage.ErrNotFound):
			return nil, notFoundError("ground %d not found", b.GroundID)
		case errors.Is(err, storage.ErrGroundUnavailable):
			return nil, validationError("ground %d is not accepting bookings", b.GroundID)
		default:
			s.log.Error("BOOKING", "Failed to save booking: "+err.Error())
			return nil, storageError(err, "failed to save booking")
		}
	}

	s.log.LogBooking("CREATE", b.ID, fmt.Sprintf("ground %d on %s %s-%s for %s (%d)", b.GroundID, b.Date, b.StartTime, b.EndTime(), b.UserID, b.TotalCost))
	s.publish(models.EventBookingCreated, b)
	return b, nil
}

func (s *BookingService) buildBooking(in CreateBookingInput) (*models.Booking, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, newError(KindAuth, nil, "user identity is required")
	}
	if in.GroundID <= 0 {
		return nil, validationError("ground_id must be a positive integer")
	}
	team := strings.TrimSpace(in.TeamName)
	if team == "" {
		return nil, validationError("team_name is required")
	}
	if utf8.RuneCountInString(team) > maxTeamNameLength {
		return nil, validationError("team_name must be at most %d characters", maxTeamNameLength)
	}
	contact := strings.TrimSpace(in.ContactNumber)
	if !validContactNumber(contact) {
		return nil, validationError("contact_number must be 7 to 20 digits, optionally with +, spaces or dashes")
	}

	date, err := slot.ParseDate(in.Date)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}
	start, err := slot.ParseClock(in.StartTime)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}
	candidate := slot.Slot{Date: date, Start: start, Duration: in.Duration}
	if err := candidate.Validate(); err != nil {
		return nil, validationError("%s", err.Error())
	}

	method, err := models.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}

	var special *string
	if in.SpecialRequests != nil {
		if trimmed := strings.TrimSpace(*in.SpecialRequests); trimmed != "" {
			if utf8.RuneCountInString(trimmed) > maxSpecialRequestsLength {
				return nil, validationError("special_requests must be at most %d characters", maxSpecialRequestsLength)
			}
			special = &trimmed
		}
	}

	return &models.Booking{
		GroundID:        in.GroundID,
		UserID:          in.UserID,
		TeamName:        team,
		ContactNumber:   contact,
		Date:            date,
		StartTime:       start,
		Duration:        in.Duration,
		Status:          models.StatusConfirmed,
		PaymentMethod:   method,
		PaymentStatus:   models.PaymentPending,
		SpecialRequests: special,
	}, nil
}

func validContactNumber(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 20
}

func conflictError(b *models.Booking) *Error {
	return newError(KindConflict, storage.ErrSlotTaken, "ground %d is already booked between %s and %s on %s",
		b.GroundID, b.StartTime, b.EndTime(), b.Date)
}

// CancelBooking cancels a booking owned by userID. Cancelling twice succeeds without changes.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, userID string) error {
	if userID == "" {
		return newError(KindAuth, nil, "user identity is required")
	}
	b, changed, err := s.store.CancelBooking(ctx, bookingID, userID, s.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundError("booking %d not found", bookingID)
		}
		s.log.Error("BOOKING", fmt.Sprintf("Failed to cancel booking %d: %v", bookingID, err))
		return storageError(err, "failed to cancel booking")
	}
	if !changed {
		s.log.LogBooking("CANCEL", bookingID, "already cancelled")
		return nil
	}

	s.log.LogBooking("CANCEL", bookingID, "cancelled by "+userID)
	s.publish(models.EventBookingCancelled, b)
	return nil
}

// GetBooking hides bookings of other users behind the same not-found error as missing ones.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64, userID string) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("booking %d not found", bookingID)
		}
		return nil, storageError(err, "failed to load booking")
	}
	if b.UserID != userID {
		return nil, notFoundError("booking %d not found", bookingID)
	}
	return b, nil
}

func (s *BookingService) ListBookingsForUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	if userID == "" {
		return nil, newError(KindAuth, nil, "user identity is required")
	}
	bookings, err := s.store.ListBookingsForUser(ctx, userID)
	if err != nil {
		return nil, storageError(err, "failed to list bookings")
	}
	return bookings, nil
}

func (s *BookingService) ListBookingsForGround(ctx context.Context, groundID int64, r *slot.DateRange) ([]*models.Booking, error) {
	if _, err := s.store.GetGround(ctx, groundID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("ground %d not found", groundID)
		}
		return nil, storageError(err, "failed to load ground")
	}
	bookings, err := s.store.ListBookingsForGround(ctx, groundID, r)
	if err != nil {
		return nil, storageError(err, "failed to list bookings")
	}
	return bookings, nil
}

// publish runs after the booking is committed, so failures are only logged.
func (s *BookingService) publish(eventType string, b *models.Booking) {
	if s.publisher == nil {
		return
	}
	event := &models.BookingEvent{
		Type:      eventType,
		BookingID: b.ID,
		Booking:   b,
		Timestamp: s.now().UTC(),
	}
	if err := s.publisher.PublishBookingEvent(event); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish %s for booking %d: %v", eventType, b.ID, err))
	}
}
