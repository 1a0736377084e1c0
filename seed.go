package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cricket-booking/internal/logger"
	"cricket-booking/internal/models"
	"cricket-booking/internal/services"
)

type demoGround struct {
	name      string
	location  string
	address   string
	price     int64
	rating    float64
	reviews   int
	amenities []models.Amenity
}

var demoGrounds = []demoGround{
	{
		name:     "Green Park Cricket Ground",
		location: "Kanpur",
		address:  "Civil Lines, Kanpur",
		price:    2000,
		rating:   4.6,
		reviews:  128,
		amenities: []models.Amenity{
			models.AmenityFloodlights, models.AmenityParking, models.AmenityChangingRooms, models.AmenityScoreboard,
		},
	},
	{
		name:      "Riverside Turf",
		location:  "Pune",
		address:   "Koregaon Park, Pune",
		price:     1500,
		rating:    4.2,
		reviews:   57,
		amenities: []models.Amenity{models.AmenityPracticeNets, models.AmenityDrinkingWater, models.AmenityParking},
	},
	{
		name:      "Old Town Oval",
		location:  "Mysuru",
		address:   "Chamarajapuram, Mysuru",
		price:     1200,
		rating:    3.9,
		reviews:   31,
		amenities: []models.Amenity{models.AmenityPavilion, models.AmenityRefreshments},
	},
}

// seedGrounds registers the demo grounds. Grounds that already exist by name are left alone.
func seedGrounds(ctx context.Context, grounds *services.GroundService, log *logger.Logger) (int, error) {
	created := 0
	for _, d := range demoGrounds {
		amenities, err := models.NewAmenities(d.amenities...)
		if err != nil {
			return created, err
		}
		g := &models.Ground{
			Name:         d.name,
			Location:     d.location,
			Address:      d.address,
			PricePerHour: d.price,
			Amenities:    amenities,
			Rating:       d.rating,
			TotalReviews: d.reviews,
			IsAvailable:  true,
		}
		ok, err := grounds.EnsureGround(ctx, g)
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", d.name, err)
		}
		if ok {
			created++
		}
	}
	log.LogProcess("SEED", fmt.Sprintf("%d of %d demo grounds created", created, len(demoGrounds)))
	return created, nil
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo grounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Close()

			store, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := seedGrounds(cmd.Context(), services.NewGroundService(store, log), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d grounds\n", created)
			return nil
		},
	}
}
