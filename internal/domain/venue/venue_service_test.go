package venue

import (
	"context"
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/workspot-api/internal/types"
)

// --- Mocks ---

type MockVenueRepo struct {
	mock.Mock
}

func (m *MockVenueRepo) CreateVenue(ctx context.Context, params types.CreateVenueParams) (*types.Venue, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Venue), args.Error(1)
}

func (m *MockVenueRepo) GetVenue(ctx context.Context, venueID uuid.UUID) (*types.Venue, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Venue), args.Error(1)
}

func (m *MockVenueRepo) UpdateVenueStatus(ctx context.Context, venueID uuid.UUID, status types.VenueStatus) error {
	args := m.Called(ctx, venueID, status)
	return args.Error(0)
}

func (m *MockVenueRepo) SoftDeleteVenue(ctx context.Context, venueID uuid.UUID) error {
	args := m.Called(ctx, venueID)
	return args.Error(0)
}

func (m *MockVenueRepo) UpsertAmenities(ctx context.Context, venueID uuid.UUID, params types.UpsertAmenitiesParams) (*types.VenueAmenities, error) {
	args := m.Called(ctx, venueID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.VenueAmenities), args.Error(1)
}

func (m *MockVenueRepo) GetAmenities(ctx context.Context, venueID uuid.UUID) (*types.VenueAmenities, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.VenueAmenities), args.Error(1)
}

func (m *MockVenueRepo) FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64, status types.VenueStatus) ([]types.VenueSearchResult, error) {
	args := m.Called(ctx, lat, lng, radiusKm, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.VenueSearchResult), args.Error(1)
}

func (m *MockVenueRepo) FindWithinRadiusWithAmenities(ctx context.Context, lat, lng, radiusKm float64, status types.VenueStatus) ([]types.VenueWithAmenities, error) {
	args := m.Called(ctx, lat, lng, radiusKm, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.VenueWithAmenities), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CreateUser(ctx context.Context, username, email string) (*types.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepo) UpdateWorkPreferences(ctx context.Context, userID uuid.UUID, params types.UpdateWorkPreferencesParams) error {
	args := m.Called(ctx, userID, params)
	return args.Error(0)
}

func newTestService(venueRepo *MockVenueRepo, userRepo *MockUserRepo) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(venueRepo, userRepo, DefaultScoringWeights(), logger)
}

// --- SearchVenues ---

func TestSearchVenues_RejectsInvalidCoordinates(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	cases := []struct {
		name     string
		lat, lng float64
	}{
		{"latitude too low", -90.1, 0},
		{"latitude too high", 90.1, 0},
		{"longitude too low", 0, -180.1},
		{"longitude too high", 0, 180.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SearchVenues(context.Background(), tc.lat, tc.lng, 5, types.VenueStatusActive)
			assert.ErrorIs(t, err, types.ErrBadRequest)
		})
	}

	venueRepo.AssertNotCalled(t, "FindWithinRadius", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchVenues_RejectsNaNInputs(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))
	nan := math.NaN()

	cases := []struct {
		name             string
		lat, lng, radius float64
	}{
		{"NaN latitude", nan, 0, 5},
		{"NaN longitude", 0, nan, 5},
		{"NaN radius", 37.7749, -122.4194, nan},
		{"all NaN", nan, nan, nan},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SearchVenues(context.Background(), tc.lat, tc.lng, tc.radius, types.VenueStatusActive)
			assert.ErrorIs(t, err, types.ErrBadRequest)
		})
	}

	venueRepo.AssertNotCalled(t, "FindWithinRadius", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommendVenues_RejectsNaNInputs(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	userRepo := new(MockUserRepo)
	svc := newTestService(venueRepo, userRepo)
	nan := math.NaN()

	_, err := svc.RecommendVenues(context.Background(), uuid.New(), nan, nan, nan)
	assert.ErrorIs(t, err, types.ErrBadRequest)

	userRepo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	venueRepo.AssertNotCalled(t, "FindWithinRadiusWithAmenities", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchVenues_RejectsNegativeRadius(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	_, err := svc.SearchVenues(context.Background(), 37.7749, -122.4194, -1, types.VenueStatusActive)
	assert.ErrorIs(t, err, types.ErrBadRequest)
	venueRepo.AssertNotCalled(t, "FindWithinRadius", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchVenues_RejectsUnknownStatus(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	_, err := svc.SearchVenues(context.Background(), 37.7749, -122.4194, 5, types.VenueStatus("bogus"))
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestSearchVenues_DefaultsToActiveStatus(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	venueRepo.On("FindWithinRadius", mock.Anything, 37.7749, -122.4194, 5.0, types.VenueStatusActive).
		Return([]types.VenueSearchResult{}, nil).Once()

	_, err := svc.SearchVenues(context.Background(), 37.7749, -122.4194, 5, "")
	require.NoError(t, err)
	venueRepo.AssertExpectations(t)
}

func TestSearchVenues_ZeroRadiusIsAllowed(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	venueRepo.On("FindWithinRadius", mock.Anything, 37.7749, -122.4194, 0.0, types.VenueStatusActive).
		Return([]types.VenueSearchResult{}, nil).Once()

	results, err := svc.SearchVenues(context.Background(), 37.7749, -122.4194, 0, types.VenueStatusActive)
	require.NoError(t, err)
	assert.Empty(t, results)
	venueRepo.AssertExpectations(t)
}

// --- RecommendVenues ---

func TestRecommendVenues_UnknownUser(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	userRepo := new(MockUserRepo)
	svc := newTestService(venueRepo, userRepo)

	userID := uuid.New()
	userRepo.On("GetUserByID", mock.Anything, userID).Return(nil, types.ErrNotFound).Once()
	// The venue fetch runs concurrently with the user lookup; it may or may
	// not complete before the group fails.
	venueRepo.On("FindWithinRadiusWithAmenities", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.VenueWithAmenities{}, nil).Maybe()

	_, err := svc.RecommendVenues(context.Background(), userID, 37.7749, -122.4194, 5)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRecommendVenues_NilUserID(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	_, err := svc.RecommendVenues(context.Background(), uuid.Nil, 37.7749, -122.4194, 5)
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestRecommendVenues_RanksPersonalizedScores(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	userRepo := new(MockUserRepo)
	svc := newTestService(venueRepo, userRepo)

	userID := uuid.New()
	userRepo.On("GetUserByID", mock.Anything, userID).Return(&types.User{
		ID:             userID,
		NoiseTolerance: intPtr(2),
		WifiImportance: intPtr(5),
	}, nil).Once()

	venueA := types.VenueWithAmenities{
		VenueSearchResult: types.VenueSearchResult{VenueID: uuid.New(), Name: "quiet cafe", DistanceKm: 1.0, OverallRating: 4.0},
		Amenities:         &types.VenueAmenities{WifiQuality: 5, NoiseLevel: 1, PriceRange: 2},
	}
	venueB := types.VenueWithAmenities{
		VenueSearchResult: types.VenueSearchResult{VenueID: uuid.New(), Name: "loud bar", DistanceKm: 1.0, OverallRating: 4.0},
		Amenities:         &types.VenueAmenities{WifiQuality: 2, NoiseLevel: 5, PriceRange: 2},
	}
	// Repo returns distance order; ranking must reorder by score.
	venueRepo.On("FindWithinRadiusWithAmenities", mock.Anything, 37.7749, -122.4194, 5.0, types.VenueStatusActive).
		Return([]types.VenueWithAmenities{venueB, venueA}, nil).Once()

	recs, err := svc.RecommendVenues(context.Background(), userID, 37.7749, -122.4194, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "quiet cafe", recs[0].Name)
	assert.Equal(t, 9.0, recs[0].CompatibilityScore)
	assert.Equal(t, "loud bar", recs[1].Name)
	assert.Equal(t, 5.8, recs[1].CompatibilityScore)
}

func TestRecommendVenues_NoPreferencesUsesRating(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	userRepo := new(MockUserRepo)
	svc := newTestService(venueRepo, userRepo)

	userID := uuid.New()
	userRepo.On("GetUserByID", mock.Anything, userID).Return(&types.User{ID: userID}, nil).Once()

	venues := []types.VenueWithAmenities{
		{VenueSearchResult: types.VenueSearchResult{VenueID: uuid.New(), Name: "ok", OverallRating: 3.0}},
		{VenueSearchResult: types.VenueSearchResult{VenueID: uuid.New(), Name: "great", OverallRating: 4.5}},
	}
	venueRepo.On("FindWithinRadiusWithAmenities", mock.Anything, 37.7749, -122.4194, 5.0, types.VenueStatusActive).
		Return(venues, nil).Once()

	recs, err := svc.RecommendVenues(context.Background(), userID, 37.7749, -122.4194, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "great", recs[0].Name)
	assert.Equal(t, 4.5, recs[0].CompatibilityScore)
	assert.Equal(t, 3.0, recs[1].CompatibilityScore)
}

func TestRecommendVenues_CachesUserLookup(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	userRepo := new(MockUserRepo)
	svc := newTestService(venueRepo, userRepo)

	userID := uuid.New()
	userRepo.On("GetUserByID", mock.Anything, userID).Return(&types.User{ID: userID}, nil).Once()
	venueRepo.On("FindWithinRadiusWithAmenities", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.VenueWithAmenities{}, nil).Twice()

	_, err := svc.RecommendVenues(context.Background(), userID, 37.7749, -122.4194, 5)
	require.NoError(t, err)
	_, err = svc.RecommendVenues(context.Background(), userID, 37.7749, -122.4194, 5)
	require.NoError(t, err)

	userRepo.AssertExpectations(t)
	venueRepo.AssertExpectations(t)
}

// --- Venue management ---

func TestCreateVenue_Validation(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	_, err := svc.CreateVenue(context.Background(), types.CreateVenueParams{Latitude: 10, Longitude: 10})
	assert.ErrorIs(t, err, types.ErrBadRequest)

	_, err = svc.CreateVenue(context.Background(), types.CreateVenueParams{Name: "spot", Latitude: 91, Longitude: 10})
	assert.ErrorIs(t, err, types.ErrBadRequest)

	venueRepo.AssertNotCalled(t, "CreateVenue", mock.Anything, mock.Anything)
}

func TestUpsertAmenities_Validation(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))
	venueID := uuid.New()

	cases := []types.UpsertAmenitiesParams{
		{WifiQuality: 0, NoiseLevel: 3, PriceRange: 2},
		{WifiQuality: 6, NoiseLevel: 3, PriceRange: 2},
		{WifiQuality: 3, NoiseLevel: 0, PriceRange: 2},
		{WifiQuality: 3, NoiseLevel: 3, PriceRange: 5},
	}
	for _, params := range cases {
		_, err := svc.UpsertAmenities(context.Background(), venueID, params)
		assert.ErrorIs(t, err, types.ErrBadRequest)
	}

	venueRepo.AssertNotCalled(t, "UpsertAmenities", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetVenueStatus_RejectsUnknownStatus(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	err := svc.SetVenueStatus(context.Background(), uuid.New(), types.VenueStatus("nope"))
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestDeleteVenue(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	err := svc.DeleteVenue(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, types.ErrBadRequest)
	venueRepo.AssertNotCalled(t, "SoftDeleteVenue", mock.Anything, mock.Anything)

	venueID := uuid.New()
	venueRepo.On("SoftDeleteVenue", mock.Anything, venueID).Return(nil).Once()
	require.NoError(t, svc.DeleteVenue(context.Background(), venueID))

	missing := uuid.New()
	venueRepo.On("SoftDeleteVenue", mock.Anything, missing).Return(types.ErrNotFound).Once()
	assert.ErrorIs(t, svc.DeleteVenue(context.Background(), missing), types.ErrNotFound)

	venueRepo.AssertExpectations(t)
}

func TestGetAmenities(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := newTestService(venueRepo, new(MockUserRepo))

	_, err := svc.GetAmenities(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, types.ErrBadRequest)
	venueRepo.AssertNotCalled(t, "GetAmenities", mock.Anything, mock.Anything)

	venueID := uuid.New()
	venueRepo.On("GetAmenities", mock.Anything, venueID).
		Return(&types.VenueAmenities{VenueID: venueID, WifiQuality: 4, NoiseLevel: 2, PriceRange: 2}, nil).Once()

	a, err := svc.GetAmenities(context.Background(), venueID)
	require.NoError(t, err)
	assert.Equal(t, 4, a.WifiQuality)
	venueRepo.AssertExpectations(t)
}
