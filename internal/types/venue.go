package types

import (
	"time"

	"github.com/google/uuid"
)

// VenueStatus is the lifecycle state of a venue. New venues start as
// pending and are promoted to active by an external moderation flow.
type VenueStatus string

const (
	VenueStatusPending  VenueStatus = "pending"
	VenueStatusActive   VenueStatus = "active"
	VenueStatusClosed   VenueStatus = "closed"
	VenueStatusArchived VenueStatus = "archived"
)

// Valid reports whether s is one of the known venue states.
func (s VenueStatus) Valid() bool {
	switch s {
	case VenueStatusPending, VenueStatusActive, VenueStatusClosed, VenueStatusArchived:
		return true
	}
	return false
}

type Venue struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Address       string      `json:"address"`
	Latitude      float64     `json:"latitude"`
	Longitude     float64     `json:"longitude"`
	Status        VenueStatus `json:"status"`
	OverallRating float64     `json:"overall_rating"` // derived, 1 decimal place
	TotalReviews  int         `json:"total_reviews"`  // derived
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	DeletedAt     *time.Time  `json:"deleted_at,omitempty"`
}

// VenueAmenities is the one-to-one amenity record for a venue.
// Scale conventions: wifi_quality 1-5 (5 best), noise_level 1-5 (1 quietest),
// price_range 1-4.
type VenueAmenities struct {
	VenueID           uuid.UUID `json:"venue_id"`
	WifiQuality       int       `json:"wifi_quality"`
	NoiseLevel        int       `json:"noise_level"`
	PriceRange        int       `json:"price_range"`
	HasPowerOutlets   bool      `json:"has_power_outlets"`
	HasFood           bool      `json:"has_food"`
	HasCoffee         bool      `json:"has_coffee"`
	HasOutdoorSeating bool      `json:"has_outdoor_seating"`
	HasParking        bool      `json:"has_parking"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateVenueParams struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpsertAmenitiesParams uses pointers for the boolean flags so a partial
// update leaves unset flags untouched.
type UpsertAmenitiesParams struct {
	WifiQuality       int   `json:"wifi_quality"`
	NoiseLevel        int   `json:"noise_level"`
	PriceRange        int   `json:"price_range"`
	HasPowerOutlets   *bool `json:"has_power_outlets,omitempty"`
	HasFood           *bool `json:"has_food,omitempty"`
	HasCoffee         *bool `json:"has_coffee,omitempty"`
	HasOutdoorSeating *bool `json:"has_outdoor_seating,omitempty"`
	HasParking        *bool `json:"has_parking,omitempty"`
}

// VenueSearchResult is one row of a radius search, ordered by distance.
type VenueSearchResult struct {
	VenueID       uuid.UUID `json:"venue_id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	DistanceKm    float64   `json:"distance_km"`
	OverallRating float64   `json:"overall_rating"`
	TotalReviews  int       `json:"total_reviews"`
}

// VenueRecommendation is one row of a personalized recommendation,
// ordered by compatibility score.
type VenueRecommendation struct {
	VenueID            uuid.UUID `json:"venue_id"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	DistanceKm         float64   `json:"distance_km"`
	OverallRating      float64   `json:"overall_rating"`
	CompatibilityScore float64   `json:"compatibility_score"`
}

// VenueWithAmenities is the snapshot the scorer consumes: a search hit plus
// its amenity record, nil when the venue has none.
type VenueWithAmenities struct {
	VenueSearchResult
	Amenities *VenueAmenities `json:"amenities,omitempty"`
}
