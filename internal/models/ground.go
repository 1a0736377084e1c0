package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type Amenity string

const (
	AmenityFloodlights   Amenity = "floodlights"
	AmenityParking       Amenity = "parking"
	AmenityChangingRooms Amenity = "changing_rooms"
	AmenityPracticeNets  Amenity = "practice_nets"
	AmenityScoreboard    Amenity = "scoreboard"
	AmenityPavilion      Amenity = "pavilion"
	AmenityRefreshments  Amenity = "refreshments"
	AmenityDrinkingWater Amenity = "drinking_water"
)

var knownAmenities = map[Amenity]struct{}{
	AmenityFloodlights:   {},
	AmenityParking:       {},
	AmenityChangingRooms: {},
	AmenityPracticeNets:  {},
	AmenityScoreboard:    {},
	AmenityPavilion:      {},
	AmenityRefreshments:  {},
	AmenityDrinkingWater: {},
}

func ParseAmenity(s string) (Amenity, error) {
	a := Amenity(s)
	if _, ok := knownAmenities[a]; !ok {
		return "", fmt.Errorf("unknown amenity %q", s)
	}
	return a, nil
}

// Amenities is a set of tags kept sorted and free of duplicates. It is stored as a JSON array.
type Amenities []Amenity

func NewAmenities(tags ...Amenity) (Amenities, error) {
	seen := make(map[Amenity]struct{}, len(tags))
	out := make(Amenities, 0, len(tags))
	for _, t := range tags {
		if _, err := ParseAmenity(string(t)); err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (a Amenities) Has(tag Amenity) bool {
	for _, t := range a {
		if t == tag {
			return true
		}
	}
	return false
}

// MarshalJSON writes an empty set as [] rather than null.
func (a Amenities) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Amenity(a))
}

func (a *Amenities) UnmarshalJSON(b []byte) error {
	var raw []Amenity
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	set, err := NewAmenities(raw...)
	if err != nil {
		return err
	}
	*a = set
	return nil
}

func (a Amenities) Value() (driver.Value, error) {
	if a == nil {
		a = Amenities{}
	}
	b, err := json.Marshal([]Amenity(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Amenities) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*a = Amenities{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amenities", src)
	}
	return a.UnmarshalJSON(b)
}

type Ground struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Address      string    `json:"address"`
	PricePerHour int64     `json:"price_per_hour"`
	Amenities    Amenities `json:"amenities"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
}

// GroundUpdateEvent is consumed from the ground-updates topic.
type GroundUpdateEvent struct {
	Type         string   `json:"type"`
	GroundID     int64    `json:"ground_id"`
	IsAvailable  *bool    `json:"is_available,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	TotalReviews *int     `json:"total_reviews,omitempty"`
}

const (
	EventGroundAvailability = "ground.availability"
	EventGroundRating       = "ground.rating"
)
