package services

import (
	"context"
	"errors"

	"cricket-booking/internal/models"
	"cricket-booking/internal/slot"
	"cricket-booking/internal/storage"
)

type ScheduleService struct {
	store storage.Store
}

func NewScheduleService(store storage.Store) *ScheduleService {
	return &ScheduleService{store: store}
}

// GroundSchedule is the public calendar of one ground, oldest first.
func (s *ScheduleService) GroundSchedule(ctx context.Context, groundID int64, r *slot.DateRange, includeCancelled bool) ([]*models.ScheduleEntry, error) {
	g, err := s.store.GetGround(ctx, groundID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("ground %d not found", groundID)
		}
		return nil, storageError(err, "failed to load ground")
	}
	bookings, err := s.store.ListBookingsForGround(ctx, groundID, r)
	if err != nil {
		return nil, storageError(err, "failed to load schedule")
	}

	entries := make([]*models.ScheduleEntry, 0, len(bookings))
	for _, b := range bookings {
		if !includeCancelled && !b.Status.Active() {
			continue
		}
		entries = append(entries, entryFor(b, g))
	}
	return entries, nil
}

// UserSchedule lists the caller's confirmed bookings, oldest first.
func (s *ScheduleService) UserSchedule(ctx context.Context, userID string) ([]*models.ScheduleEntry, error) {
	if userID == "" {
		return nil, newError(KindAuth, nil, "user identity is required")
	}
	bookings, err := s.store.ListBookingsForUser(ctx, userID)
	if err != nil {
		return nil, storageError(err, "failed to load schedule")
	}

	grounds := make(map[int64]*models.Ground)
	entries := make([]*models.ScheduleEntry, 0, len(bookings))
	// Stored newest first; walk backwards for ascending order.
	for i := len(bookings) - 1; i >= 0; i-- {
		b := bookings[i]
		if !b.Status.Active() {
			continue
		}
		g, ok := grounds[b.GroundID]
		if !ok {
			g, err = s.store.GetGround(ctx, b.GroundID)
			if err != nil {
				return nil, storageError(err, "failed to load ground")
			}
			grounds[b.GroundID] = g
		}
		entries = append(entries, entryFor(b, g))
	}
	return entries, nil
}

func entryFor(b *models.Booking, g *models.Ground) *models.ScheduleEntry {
	return &models.ScheduleEntry{
		BookingID:      b.ID,
		GroundID:       b.GroundID,
		GroundName:     g.Name,
		GroundLocation: g.Location,
		TeamName:       b.TeamName,
		Date:           b.Date,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime(),
		Duration:       b.Duration,
		Status:         b.Status,
	}
}
