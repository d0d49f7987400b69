package types

import (
	"time"

	"github.com/google/uuid"
)

// PreferredSeating is the kind of workspace a user looks for.
type PreferredSeating string

const (
	SeatingQuiet   PreferredSeating = "quiet"
	SeatingSocial  PreferredSeating = "social"
	SeatingOutdoor PreferredSeating = "outdoor"
	SeatingAny     PreferredSeating = "any"
)

func (p PreferredSeating) Valid() bool {
	switch p {
	case SeatingQuiet, SeatingSocial, SeatingOutdoor, SeatingAny:
		return true
	}
	return false
}

// User is the identity plus work-preference profile consumed by the
// recommendation path. NoiseTolerance and WifiImportance are optional;
// when either is unset, recommendations fall back to plain ratings.
type User struct {
	ID               uuid.UUID        `json:"id"`
	Username         string           `json:"username"`
	Email            string           `json:"email"`
	NoiseTolerance   *int             `json:"noise_tolerance,omitempty"` // 1-5, 1 = needs quiet
	WifiImportance   *int             `json:"wifi_importance,omitempty"` // 1-5
	PreferredSeating PreferredSeating `json:"preferred_seating"`
	TotalReviews     int              `json:"total_reviews"` // derived
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// HasWorkPreferences reports whether the user set both preference fields
// the compatibility scorer personalizes on.
func (u *User) HasWorkPreferences() bool {
	return u.NoiseTolerance != nil && u.WifiImportance != nil
}

// UpdateWorkPreferencesParams defines the fields allowed for preference
// updates. Pointers allow partial updates.
type UpdateWorkPreferencesParams struct {
	NoiseTolerance   *int              `json:"noise_tolerance,omitempty"`
	WifiImportance   *int              `json:"wifi_importance,omitempty"`
	PreferredSeating *PreferredSeating `json:"preferred_seating,omitempty"`
}
