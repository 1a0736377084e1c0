package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"cricket-booking/internal/models"
	"cricket-booking/internal/slot"
)

// InMemoryStore keeps everything in process. Writes hold the mutex for the whole check-and-insert,
// which gives the same guarantee as the ground row lock in MySQLStore.
type InMemoryStore struct {
	grounds       map[int64]*models.Ground
	bookings      map[int64]*models.Booking
	nextGroundID  int64
	nextBookingID int64
	mutex         sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		grounds:  make(map[int64]*models.Ground),
		bookings: make(map[int64]*models.Booking),
	}
}

func copyGround(g *models.Ground) *models.Ground {
	c := *g
	c.Amenities = append(models.Amenities{}, g.Amenities...)
	return &c
}

func copyBooking(b *models.Booking) *models.Booking {
	c := *b
	if b.SpecialRequests != nil {
		s := *b.SpecialRequests
		c.SpecialRequests = &s
	}
	return &c
}

func (s *InMemoryStore) ListAvailableGrounds(ctx context.Context) ([]*models.Ground, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	grounds := []*models.Ground{}
	for _, g := range s.grounds {
		if g.IsAvailable {
			grounds = append(grounds, copyGround(g))
		}
	}
	sort.Slice(grounds, func(i, j int) bool {
		a, b := grounds[i], grounds[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return grounds, nil
}

func (s *InMemoryStore) GetGround(ctx context.Context, id int64) (*models.Ground, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	g, exists := s.grounds[id]
	if !exists {
		return nil, ErrNotFound
	}
	return copyGround(g), nil
}

func (s *InMemoryStore) GetGroundByName(ctx context.Context, name string) (*models.Ground, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, g := range s.grounds {
		if g.Name == name {
			return copyGround(g), nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) SaveGround(ctx context.Context, g *models.Ground) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextGroundID++
	g.ID = s.nextGroundID
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	s.grounds[g.ID] = copyGround(g)
	return nil
}

func (s *InMemoryStore) SetGroundAvailability(ctx context.Context, id int64, available bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	g, exists := s.grounds[id]
	if !exists {
		return ErrNotFound
	}
	g.IsAvailable = available
	return nil
}

func (s *InMemoryStore) UpdateGroundRating(ctx context.Context, id int64, rating float64, totalReviews int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	g, exists := s.grounds[id]
	if !exists {
		return ErrNotFound
	}
	g.Rating = rating
	g.TotalReviews = totalReviews
	return nil
}

func (s *InMemoryStore) activeOn(groundID int64, date slot.Date) []*models.Booking {
	var out []*models.Booking
	for _, b := range s.bookings {
		if b.GroundID == groundID && b.Date.Equal(date) && b.Status.Active() {
			out = append(out, b)
		}
	}
	return out
}

func (s *InMemoryStore) ActiveBookingsOn(ctx context.Context, groundID int64, date slot.Date) ([]*models.Booking, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	active := s.activeOn(groundID, date)
	out := make([]*models.Booking, 0, len(active))
	for _, b := range active {
		out = append(out, copyBooking(b))
	}
	sortAscending(out)
	return out, nil
}

func (s *InMemoryStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	g, exists := s.grounds[b.GroundID]
	if !exists {
		return ErrNotFound
	}
	if !g.IsAvailable {
		return ErrGroundUnavailable
	}
	if slot.Conflicts(b.Slot(), slotsOf(s.activeOn(b.GroundID, b.Date))) {
		return ErrSlotTaken
	}

	s.nextBookingID++
	b.ID = s.nextBookingID
	s.bookings[b.ID] = copyBooking(b)
	return nil
}

func (s *InMemoryStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	b, exists := s.bookings[id]
	if !exists {
		return nil, ErrNotFound
	}
	return copyBooking(b), nil
}

func (s *InMemoryStore) CancelBooking(ctx context.Context, id int64, userID string, at time.Time) (*models.Booking, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, exists := s.bookings[id]
	if !exists || b.UserID != userID {
		return nil, false, ErrNotFound
	}
	if b.Status == models.StatusCancelled {
		return copyBooking(b), false, nil
	}
	b.Status = models.StatusCancelled
	b.UpdatedAt = at
	return copyBooking(b), true, nil
}

func (s *InMemoryStore) ListBookingsForUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := []*models.Booking{}
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, copyBooking(b))
		}
	}
	sortAscending(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *InMemoryStore) ListBookingsForGround(ctx context.Context, groundID int64, r *slot.DateRange) ([]*models.Booking, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := []*models.Booking{}
	for _, b := range s.bookings {
		if b.GroundID == groundID && r.Contains(b.Date) {
			out = append(out, copyBooking(b))
		}
	}
	sortAscending(out)
	return out, nil
}

func (s *InMemoryStore) HealthCheck(ctx context.Context) error { return ctx.Err() }

func (s *InMemoryStore) Close() error { return nil }

// sortAscending orders by date, start time, then id.
func sortAscending(bookings []*models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}
