package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cricket-booking/internal/models"
	"cricket-booking/internal/storage"
)

func TestTotalCost(t *testing.T) {
	tests := []struct {
		price int64
		hours int
		bps   int64
		want  int64
	}{
		{price: 2000, hours: 2, bps: 500, want: 4200},
		{price: 1500, hours: 1, bps: 500, want: 1575},
		{price: 10, hours: 1, bps: 500, want: 11},    // 0.5 rounds up
		{price: 9, hours: 1, bps: 500, want: 9},      // 0.45 rounds down
		{price: 999, hours: 3, bps: 500, want: 3147}, // 2997 + 149.85
		{price: 0, hours: 4, bps: 500, want: 0},
		{price: 2000, hours: 2, bps: 0, want: 4000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalCost(tt.price, tt.hours, tt.bps), "price=%d hours=%d bps=%d", tt.price, tt.hours, tt.bps)
	}
}

func TestErrorKinds(t *testing.T) {
	err := notFoundError("booking %d not found", 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "booking 7 not found", err.Error())
	assert.Equal(t, KindNotFound, KindOf(err))

	wrapped := storageError(errors.New("dial tcp: refused"), "failed to list grounds")
	assert.Equal(t, "failed to list grounds: dial tcp: refused", wrapped.Error())
	assert.Equal(t, KindStorage, KindOf(errors.New("plain")))
	assert.Equal(t, "ConflictError", ErrConflict.Error())
}

func newGroundService(t *testing.T) (*GroundService, *storage.InMemoryStore) {
	t.Helper()
	store := storage.NewInMemoryStore()
	return NewGroundService(store, quietLogger()), store
}

func TestGroundService_ListAndGet(t *testing.T) {
	svc, store := newGroundService(t)
	ctx := context.Background()

	old := &models.Ground{Name: "Old", Rating: 4.2, IsAvailable: true, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	fresh := &models.Ground{Name: "Fresh", Rating: 4.2, IsAvailable: true, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	top := &models.Ground{Name: "Top", Rating: 4.9, IsAvailable: true}
	closed := &models.Ground{Name: "Closed", Rating: 5, IsAvailable: false}
	for _, g := range []*models.Ground{old, fresh, top, closed} {
		require.NoError(t, store.SaveGround(ctx, g))
	}

	grounds, err := svc.ListAvailableGrounds(ctx)
	require.NoError(t, err)
	require.Len(t, grounds, 3)
	assert.Equal(t, []string{"Top", "Fresh", "Old"}, []string{grounds[0].Name, grounds[1].Name, grounds[2].Name})

	got, err := svc.GetGround(ctx, closed.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	_, err = svc.GetGround(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGroundService_EnsureGroundIsIdempotent(t *testing.T) {
	svc, _ := newGroundService(t)
	ctx := context.Background()

	first := &models.Ground{Name: " Eden Gardens ", Location: "Kolkata", PricePerHour: 5000, IsAvailable: true}
	created, err := svc.EnsureGround(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Eden Gardens", first.Name)

	again := &models.Ground{Name: "Eden Gardens", PricePerHour: 1}
	created, err = svc.EnsureGround(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(5000), again.PricePerHour)

	_, err = svc.EnsureGround(ctx, &models.Ground{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.EnsureGround(ctx, &models.Ground{Name: "Cheap", PricePerHour: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGroundService_ApplyGroundUpdate(t *testing.T) {
	svc, store := newGroundService(t)
	ctx := context.Background()
	g := &models.Ground{Name: "Wankhede", Rating: 4, TotalReviews: 10, IsAvailable: true}
	require.NoError(t, store.SaveGround(ctx, g))

	closed := false
	require.NoError(t, svc.ApplyGroundUpdate(ctx, &models.GroundUpdateEvent{
		Type: models.EventGroundAvailability, GroundID: g.ID, IsAvailable: &closed,
	}))

	rating := 4.4
	require.NoError(t, svc.ApplyGroundUpdate(ctx, &models.GroundUpdateEvent{
		Type: models.EventGroundRating, GroundID: g.ID, Rating: &rating,
	}))

	got, err := svc.GetGround(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
	assert.Equal(t, 4.4, got.Rating)
	assert.Equal(t, 10, got.TotalReviews)

	tooHigh := 5.5
	err = svc.ApplyGroundUpdate(ctx, &models.GroundUpdateEvent{Type: models.EventGroundRating, GroundID: g.ID, Rating: &tooHigh})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.ApplyGroundUpdate(ctx, &models.GroundUpdateEvent{Type: models.EventGroundAvailability, GroundID: g.ID})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.ApplyGroundUpdate(ctx, &models.GroundUpdateEvent{Type: "ground.renamed", GroundID: g.ID})
	assert.ErrorIs(t, err, ErrValidation)

	open := true
	err = svc.ApplyGroundUpdate(ctx, &models.GroundUpdateEvent{Type: models.EventGroundAvailability, GroundID: 404, IsAvailable: &open})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGroundService_UpdateGroundRatingValidation(t *testing.T) {
	svc, store := newGroundService(t)
	ctx := context.Background()
	g := &models.Ground{Name: "Chepauk", IsAvailable: true}
	require.NoError(t, store.SaveGround(ctx, g))

	assert.ErrorIs(t, svc.UpdateGroundRating(ctx, g.ID, -0.1, 1), ErrValidation)
	assert.ErrorIs(t, svc.UpdateGroundRating(ctx, g.ID, 3, -1), ErrValidation)
	assert.NoError(t, svc.UpdateGroundRating(ctx, g.ID, 5, 100))
	assert.ErrorIs(t, svc.UpdateGroundRating(ctx, 404, 3, 1), ErrNotFound)
}
