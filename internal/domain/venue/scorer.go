package venue

import (
	"math"
	"sort"

	"github.com/FACorreiaa/workspot-api/internal/types"
)

// ScoringWeights holds the compatibility formula coefficients. The defaults
// are inherited business rules; override them through configuration, not by
// editing this file.
type ScoringWeights struct {
	Rating float64
	Wifi   float64
	Noise  float64
	Offset float64
}

// DefaultScoringWeights returns the production coefficients: rating
// dominates, wifi match is importance-weighted, noise mismatch penalizes,
// and a flat offset normalizes the range.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Rating: 0.4,
		Wifi:   0.2,
		Noise:  0.1,
		Offset: 2.5,
	}
}

// neutralAmenityLevel substitutes for venues without an amenities record so
// they are scored rather than excluded.
const neutralAmenityLevel = 3.0

// CompatibilityScore maps a user's work preferences and a venue snapshot to
// a ranking score, rounded to one decimal. Users without both preference
// fields get the venue's overall rating unchanged. Pure and stateless.
func CompatibilityScore(user *types.User, v types.VenueWithAmenities, w ScoringWeights) float64 {
	if !user.HasWorkPreferences() {
		return v.OverallRating
	}

	wifiQuality := neutralAmenityLevel
	noiseLevel := neutralAmenityLevel
	if v.Amenities != nil {
		wifiQuality = float64(v.Amenities.WifiQuality)
		noiseLevel = float64(v.Amenities.NoiseLevel)
	}

	score := v.OverallRating*w.Rating +
		wifiQuality*float64(*user.WifiImportance)*w.Wifi -
		math.Abs(noiseLevel-float64(*user.NoiseTolerance))*w.Noise +
		w.Offset

	return round1(score)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// rankRecommendations orders by compatibility score descending, breaking
// ties by overall rating descending. Stable so equal venues keep their
// distance order from the radius query.
func rankRecommendations(recs []types.VenueRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].CompatibilityScore != recs[j].CompatibilityScore {
			return recs[i].CompatibilityScore > recs[j].CompatibilityScore
		}
		return recs[i].OverallRating > recs[j].OverallRating
	})
}
