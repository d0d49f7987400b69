//go:build integration

package venue

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/workspot-api/internal/types"
)

var testVenueDB *pgxpool.Pool

func TestMain(m *testing.M) {
	if err := godotenv.Load("../../../.env.test"); err != nil {
		log.Println("Warning: .env.test file not found for venue integration tests.")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		log.Fatal("TEST_DATABASE_URL environment variable is not set for venue integration tests")
	}

	var err error
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatalf("Unable to parse TEST_DATABASE_URL: %v\n", err)
	}
	config.MaxConns = 5

	testVenueDB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("Unable to create connection pool for venue tests: %v\n", err)
	}
	defer testVenueDB.Close()

	if err := testVenueDB.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping test database for venue tests: %v\n", err)
	}

	exitCode := m.Run()
	os.Exit(exitCode)
}

func newIntegrationVenueRepo() *RepositoryImpl {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRepository(testVenueDB, logger)
}

func clearVenueTables(t *testing.T) {
	t.Helper()
	_, err := testVenueDB.Exec(context.Background(), "DELETE FROM venue_amenities")
	require.NoError(t, err, "Failed to clear venue_amenities table")
	_, err = testVenueDB.Exec(context.Background(), "DELETE FROM venues")
	require.NoError(t, err, "Failed to clear venues table")
}

func seedVenue(t *testing.T, name string, lat, lng float64, status types.VenueStatus) uuid.UUID {
	t.Helper()
	venueID := uuid.New()
	_, err := testVenueDB.Exec(context.Background(),
		`INSERT INTO venues (id, name, location, status)
         VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5)`,
		venueID, name, lng, lat, string(status))
	require.NoError(t, err)
	return venueID
}

func TestFindWithinRadius_Integration(t *testing.T) {
	ctx := context.Background()
	clearVenueTables(t)
	repo := newIntegrationVenueRepo()

	// Downtown San Francisco. The second venue sits ~1.85km due south of
	// the first, so radius 1 excludes it and radius 5 includes it.
	origin := struct{ lat, lng float64 }{37.7749, -122.4194}
	nearID := seedVenue(t, "Near Cafe", 37.7749, -122.4194, types.VenueStatusActive)
	farID := seedVenue(t, "Far Cafe", 37.7582, -122.4194, types.VenueStatusActive)

	t.Run("Radius covers both venues nearest first", func(t *testing.T) {
		results, err := repo.FindWithinRadius(ctx, origin.lat, origin.lng, 5, types.VenueStatusActive)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, nearID, results[0].VenueID)
		assert.Equal(t, farID, results[1].VenueID)
		assert.InDelta(t, 0.0, results[0].DistanceKm, 0.01)
		assert.InDelta(t, 1.85, results[1].DistanceKm, 0.05)
	})

	t.Run("Smaller radius excludes the far venue", func(t *testing.T) {
		results, err := repo.FindWithinRadius(ctx, origin.lat, origin.lng, 1, types.VenueStatusActive)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, nearID, results[0].VenueID)
	})

	t.Run("Growing the radius never drops a match", func(t *testing.T) {
		small, err := repo.FindWithinRadius(ctx, origin.lat, origin.lng, 1, types.VenueStatusActive)
		require.NoError(t, err)
		large, err := repo.FindWithinRadius(ctx, origin.lat, origin.lng, 5, types.VenueStatusActive)
		require.NoError(t, err)

		largeIDs := make(map[uuid.UUID]bool, len(large))
		for _, v := range large {
			largeIDs[v.VenueID] = true
		}
		for _, v := range small {
			assert.True(t, largeIDs[v.VenueID], "venue %s in small radius missing from larger one", v.VenueID)
		}
	})

	t.Run("Distances are non-decreasing", func(t *testing.T) {
		for i := 0; i < 8; i++ {
			seedVenue(t, fmt.Sprintf("Spot %d", i), 37.7749+float64(i)*0.004, -122.4194, types.VenueStatusActive)
		}
		results, err := repo.FindWithinRadius(ctx, origin.lat, origin.lng, 10, types.VenueStatusActive)
		require.NoError(t, err)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i].DistanceKm, results[i-1].DistanceKm)
		}
	})

	t.Run("Zero radius matches only zero-distance venues", func(t *testing.T) {
		results, err := repo.FindWithinRadius(ctx, origin.lat, origin.lng, 0, types.VenueStatusActive)
		require.NoError(t, err)
		for _, v := range results {
			assert.Equal(t, 0.0, v.DistanceKm)
		}
	})
}

func TestFindWithinRadius_FiltersStatusAndDeleted_Integration(t *testing.T) {
	ctx := context.Background()
	clearVenueTables(t)
	repo := newIntegrationVenueRepo()

	activeID := seedVenue(t, "Open Cafe", 37.7749, -122.4194, types.VenueStatusActive)
	seedVenue(t, "Pending Cafe", 37.7750, -122.4194, types.VenueStatusPending)
	closedID := seedVenue(t, "Closed Cafe", 37.7751, -122.4194, types.VenueStatusClosed)

	deletedID := seedVenue(t, "Gone Cafe", 37.7752, -122.4194, types.VenueStatusActive)
	_, err := testVenueDB.Exec(ctx, "UPDATE venues SET deleted_at = now() WHERE id = $1", deletedID)
	require.NoError(t, err)

	results, err := repo.FindWithinRadius(ctx, 37.7749, -122.4194, 5, types.VenueStatusActive)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, activeID, results[0].VenueID)

	closed, err := repo.FindWithinRadius(ctx, 37.7749, -122.4194, 5, types.VenueStatusClosed)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, closedID, closed[0].VenueID)
}

func TestFindWithinRadiusWithAmenities_Integration(t *testing.T) {
	ctx := context.Background()
	clearVenueTables(t)
	repo := newIntegrationVenueRepo()

	withID := seedVenue(t, "Wired Cafe", 37.7749, -122.4194, types.VenueStatusActive)
	withoutID := seedVenue(t, "Bare Cafe", 37.7750, -122.4194, types.VenueStatusActive)

	hasPower := true
	_, err := repo.UpsertAmenities(ctx, withID, types.UpsertAmenitiesParams{
		WifiQuality:     5,
		NoiseLevel:      1,
		PriceRange:      2,
		HasPowerOutlets: &hasPower,
	})
	require.NoError(t, err)

	results, err := repo.FindWithinRadiusWithAmenities(ctx, 37.7749, -122.4194, 5, types.VenueStatusActive)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byID := make(map[uuid.UUID]types.VenueWithAmenities, len(results))
	for _, v := range results {
		byID[v.VenueID] = v
	}

	require.NotNil(t, byID[withID].Amenities)
	assert.Equal(t, 5, byID[withID].Amenities.WifiQuality)
	assert.Equal(t, 1, byID[withID].Amenities.NoiseLevel)
	assert.True(t, byID[withID].Amenities.HasPowerOutlets)

	assert.Nil(t, byID[withoutID].Amenities)
}
