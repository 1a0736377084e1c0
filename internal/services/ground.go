package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cricket-booking/internal/logger"
	"cricket-booking/internal/models"
	"cricket-booking/internal/storage"
)

type GroundService struct {
	store storage.Store
	log   *logger.Logger
}

func NewGroundService(store storage.Store, log *logger.Logger) *GroundService {
	return &GroundService{store: store, log: log}
}

// ListAvailableGrounds returns bookable grounds, best rated first.
func (s *GroundService) ListAvailableGrounds(ctx context.Context) ([]*models.Ground, error) {
	grounds, err := s.store.ListAvailableGrounds(ctx)
	if err != nil {
		s.log.Error("GROUND", "Failed to list grounds: "+err.Error())
		return nil, storageError(err, "failed to list grounds")
	}
	return grounds, nil
}

func (s *GroundService) GetGround(ctx context.Context, id int64) (*models.Ground, error) {
	g, err := s.store.GetGround(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("ground %d not found", id)
		}
		return nil, storageError(err, "failed to load ground")
	}
	return g, nil
}

// EnsureGround saves g unless a ground with the same name already exists.
func (s *GroundService) EnsureGround(ctx context.Context, g *models.Ground) (bool, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return false, validationError("ground name is required")
	}
	if g.PricePerHour < 0 {
		return false, validationError("price_per_hour must not be negative")
	}
	if err := validateRating(g.Rating, g.TotalReviews); err != nil {
		return false, err
	}

	existing, err := s.store.GetGroundByName(ctx, g.Name)
	switch {
	case err == nil:
		*g = *existing
		return false, nil
	case !errors.Is(err, storage.ErrNotFound):
		return false, storageError(err, "failed to look up ground")
	}

	if err := s.store.SaveGround(ctx, g); err != nil {
		return false, storageError(err, "failed to save ground")
	}
	s.log.Info("GROUND", fmt.Sprintf("Registered ground %d %q", g.ID, g.Name))
	return true, nil
}

func (s *GroundService) SetGroundAvailability(ctx context.Context, id int64, available bool) error {
	if err := s.store.SetGroundAvailability(ctx, id, available); err != nil {
		return s.mapUpdateErr(id, err)
	}
	s.log.Info("GROUND", fmt.Sprintf("Ground %d availability set to %t", id, available))
	return nil
}

func (s *GroundService) UpdateGroundRating(ctx context.Context, id int64, rating float64, totalReviews int) error {
	if err := validateRating(rating, totalReviews); err != nil {
		return err
	}
	if err := s.store.UpdateGroundRating(ctx, id, rating, totalReviews); err != nil {
		return s.mapUpdateErr(id, err)
	}
	s.log.Info("GROUND", fmt.Sprintf("Ground %d rating set to %.1f over %d reviews", id, rating, totalReviews))
	return nil
}

// ApplyGroundUpdate handles one event from the ground-updates topic.
func (s *GroundService) ApplyGroundUpdate(ctx context.Context, event *models.GroundUpdateEvent) error {
	switch event.Type {
	case models.EventGroundAvailability:
		if event.IsAvailable == nil {
			return validationError("%s event for ground %d has no is_available", event.Type, event.GroundID)
		}
		return s.SetGroundAvailability(ctx, event.GroundID, *event.IsAvailable)
	case models.EventGroundRating:
		if event.Rating == nil {
			return validationError("%s event for ground %d has no rating", event.Type, event.GroundID)
		}
		reviews := 0
		if event.TotalReviews != nil {
			reviews = *event.TotalReviews
		} else {
			g, err := s.GetGround(ctx, event.GroundID)
			if err != nil {
				return err
			}
			reviews = g.TotalReviews
		}
		return s.UpdateGroundRating(ctx, event.GroundID, *event.Rating, reviews)
	default:
		return validationError("unknown ground event type %q", event.Type)
	}
}

func (s *GroundService) mapUpdateErr(id int64, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return notFoundError("ground %d not found", id)
	}
	s.log.Error("GROUND", fmt.Sprintf("Failed to update ground %d: %v", id, err))
	return storageError(err, "failed to update ground")
}

func validateRating(rating float64, totalReviews int) error {
	if rating < 0 || rating > 5 {
		return validationError("rating must be between 0 and 5")
	}
	if totalReviews < 0 {
		return validationError("total_reviews must not be negative")
	}
	return nil
}
