package venue

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/workspot-api/internal/domain/user"
	"github.com/FACorreiaa/workspot-api/internal/types"
	"github.com/FACorreiaa/workspot-api/pkg/observability"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the query façade for venue discovery: the only surface callers
// go through. It validates inputs before any store access and composes the
// radius engine with the compatibility scorer.
type Service interface {
	SearchVenues(ctx context.Context, lat, lng, radiusKm float64, status types.VenueStatus) ([]types.VenueSearchResult, error)
	RecommendVenues(ctx context.Context, userID uuid.UUID, lat, lng, radiusKm float64) ([]types.VenueRecommendation, error)

	CreateVenue(ctx context.Context, params types.CreateVenueParams) (*types.Venue, error)
	GetVenue(ctx context.Context, venueID uuid.UUID) (*types.Venue, error)
	SetVenueStatus(ctx context.Context, venueID uuid.UUID, status types.VenueStatus) error
	DeleteVenue(ctx context.Context, venueID uuid.UUID) error
	UpsertAmenities(ctx context.Context, venueID uuid.UUID, params types.UpsertAmenitiesParams) (*types.VenueAmenities, error)
	GetAmenities(ctx context.Context, venueID uuid.UUID) (*types.VenueAmenities, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	venueRepo Repository
	userRepo  user.Repository
	weights   ScoringWeights
	userCache *cache.Cache
}

func NewService(venueRepo Repository, userRepo user.Repository, weights ScoringWeights, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		venueRepo: venueRepo,
		userRepo:  userRepo,
		weights:   weights,
		// Preference profiles change rarely; a short TTL keeps the recommend
		// path from re-reading users on every request.
		userCache: cache.New(1*time.Minute, 5*time.Minute),
	}
}

func validateCoordinates(lat, lng float64) error {
	// NaN compares false against every bound, so it has to be rejected
	// explicitly.
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.6f out of range [-90, 90]: %w", lat, types.ErrBadRequest)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %.6f out of range [-180, 180]: %w", lng, types.ErrBadRequest)
	}
	return nil
}

func validateRadius(radiusKm float64) error {
	// Zero is legal and matches only venues at zero distance.
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return fmt.Errorf("radius %.3f km must not be negative: %w", radiusKm, types.ErrBadRequest)
	}
	return nil
}

func (s *ServiceImpl) SearchVenues(ctx context.Context, lat, lng, radiusKm float64, status types.VenueStatus) ([]types.VenueSearchResult, error) {
	ctx, span := otel.Tracer("VenueService").Start(ctx, "SearchVenues", trace.WithAttributes(
		attribute.Float64("search.lat", lat),
		attribute.Float64("search.lng", lng),
		attribute.Float64("search.radius_km", radiusKm),
	))
	defer span.End()

	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if err := validateRadius(radiusKm); err != nil {
		return nil, err
	}
	if status == "" {
		status = types.VenueStatusActive
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown venue status %q: %w", status, types.ErrBadRequest)
	}

	results, err := s.venueRepo.FindWithinRadius(ctx, lat, lng, radiusKm, status)
	if err != nil {
		s.logger.ErrorContext(ctx, "Radius search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Radius search failed")
		return nil, err
	}

	observability.VenueSearchesTotal.Inc()
	span.SetAttributes(attribute.Int("search.result_count", len(results)))
	span.SetStatus(codes.Ok, "Search completed")
	return results, nil
}

func (s *ServiceImpl) RecommendVenues(ctx context.Context, userID uuid.UUID, lat, lng, radiusKm float64) ([]types.VenueRecommendation, error) {
	ctx, span := otel.Tracer("VenueService").Start(ctx, "RecommendVenues", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Float64("search.radius_km", radiusKm),
	))
	defer span.End()

	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if err := validateRadius(radiusKm); err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required: %w", types.ErrBadRequest)
	}

	l := s.logger.With(slog.String("method", "RecommendVenues"), slog.String("userID", userID.String()))

	var (
		u      *types.User
		venues []types.VenueWithAmenities
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		u, err = s.getUserCached(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		venues, err = s.venueRepo.FindWithinRadiusWithAmenities(gctx, lat, lng, radiusKm, types.VenueStatusActive)
		return err
	})
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to load recommendation inputs", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Recommendation inputs failed")
		return nil, err
	}

	recs := make([]types.VenueRecommendation, 0, len(venues))
	for _, v := range venues {
		recs = append(recs, types.VenueRecommendation{
			VenueID:            v.VenueID,
			Name:               v.Name,
			Address:            v.Address,
			DistanceKm:         v.DistanceKm,
			OverallRating:      v.OverallRating,
			CompatibilityScore: CompatibilityScore(u, v, s.weights),
		})
	}
	rankRecommendations(recs)

	observability.VenueRecommendationsTotal.Inc()
	span.SetAttributes(attribute.Int("recommend.result_count", len(recs)))
	span.SetStatus(codes.Ok, "Recommendations computed")
	return recs, nil
}

func (s *ServiceImpl) getUserCached(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	key := userID.String()
	if cached, ok := s.userCache.Get(key); ok {
		return cached.(*types.User), nil
	}
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(key, u, cache.DefaultExpiration)
	return u, nil
}

func (s *ServiceImpl) CreateVenue(ctx context.Context, params types.CreateVenueParams) (*types.Venue, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("venue name is required: %w", types.ErrBadRequest)
	}
	if err := validateCoordinates(params.Latitude, params.Longitude); err != nil {
		return nil, err
	}

	v, err := s.venueRepo.CreateVenue(ctx, params)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create venue", slog.Any("error", err))
		return nil, err
	}
	return v, nil
}

func (s *ServiceImpl) GetVenue(ctx context.Context, venueID uuid.UUID) (*types.Venue, error) {
	return s.venueRepo.GetVenue(ctx, venueID)
}

func (s *ServiceImpl) SetVenueStatus(ctx context.Context, venueID uuid.UUID, status types.VenueStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown venue status %q: %w", status, types.ErrBadRequest)
	}
	return s.venueRepo.UpdateVenueStatus(ctx, venueID, status)
}

func (s *ServiceImpl) DeleteVenue(ctx context.Context, venueID uuid.UUID) error {
	if venueID == uuid.Nil {
		return fmt.Errorf("venue id is required: %w", types.ErrBadRequest)
	}
	if err := s.venueRepo.SoftDeleteVenue(ctx, venueID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete venue", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *ServiceImpl) GetAmenities(ctx context.Context, venueID uuid.UUID) (*types.VenueAmenities, error) {
	if venueID == uuid.Nil {
		return nil, fmt.Errorf("venue id is required: %w", types.ErrBadRequest)
	}
	return s.venueRepo.GetAmenities(ctx, venueID)
}

func (s *ServiceImpl) UpsertAmenities(ctx context.Context, venueID uuid.UUID, params types.UpsertAmenitiesParams) (*types.VenueAmenities, error) {
	if params.WifiQuality < 1 || params.WifiQuality > 5 {
		return nil, fmt.Errorf("wifi_quality must be between 1 and 5: %w", types.ErrBadRequest)
	}
	if params.NoiseLevel < 1 || params.NoiseLevel > 5 {
		return nil, fmt.Errorf("noise_level must be between 1 and 5: %w", types.ErrBadRequest)
	}
	if params.PriceRange < 1 || params.PriceRange > 4 {
		return nil, fmt.Errorf("price_range must be between 1 and 4: %w", types.ErrBadRequest)
	}
	return s.venueRepo.UpsertAmenities(ctx, venueID, params)
}
