package types

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	VenueID       uuid.UUID  `json:"venue_id"`
	OverallRating int        `json:"overall_rating"` // 1-5, required
	WifiRating    *int       `json:"wifi_rating,omitempty"`
	NoiseRating   *int       `json:"noise_rating,omitempty"`
	Comment       string     `json:"comment,omitempty"`
	HelpfulVotes  int        `json:"helpful_votes"` // derived
	TotalVotes    int        `json:"total_votes"`   // derived
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

type ReviewVote struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ReviewID  uuid.UUID `json:"review_id"`
	IsHelpful bool      `json:"is_helpful"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateReviewParams struct {
	VenueID       uuid.UUID `json:"venue_id"`
	OverallRating int       `json:"overall_rating"`
	WifiRating    *int      `json:"wifi_rating,omitempty"`
	NoiseRating   *int      `json:"noise_rating,omitempty"`
	Comment       string    `json:"comment,omitempty"`
}

// UpdateReviewParams carries the mutable review fields. Pointers allow
// partial updates; a nil field is left untouched.
type UpdateReviewParams struct {
	OverallRating *int    `json:"overall_rating,omitempty"`
	WifiRating    *int    `json:"wifi_rating,omitempty"`
	NoiseRating   *int    `json:"noise_rating,omitempty"`
	Comment       *string `json:"comment,omitempty"`
}
