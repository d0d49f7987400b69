//go:build integration

package user

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

var testUserDB *pgxpool.Pool

func TestMain(m *testing.M) {
	if err := godotenv.Load("../../../.env.test"); err != nil {
		log.Println("Warning: .env.test file not found for user integration tests.")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		log.Fatal("TEST_DATABASE_URL environment variable is not set for user integration tests")
	}

	var err error
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatalf("Unable to parse TEST_DATABASE_URL: %v\n", err)
	}
	config.MaxConns = 5

	testUserDB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("Unable to create connection pool for user tests: %v\n", err)
	}
	defer testUserDB.Close()

	if err := testUserDB.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping test database for user tests: %v\n", err)
	}

	exitCode := m.Run()
	os.Exit(exitCode)
}

func newIntegrationUserRepo() *RepositoryImpl {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRepository(testUserDB, logger)
}

func uniqueHandle() string {
	return uuid.New().String()[:8]
}

func TestUserLifecycle_Integration(t *testing.T) {
	ctx := context.Background()
	repo := newIntegrationUserRepo()

	handle := uniqueHandle()
	created, err := repo.CreateUser(ctx, "user-"+handle, fmt.Sprintf("%s@test.com", handle))
	require.NoError(t, err)
	assert.Nil(t, created.NoiseTolerance)
	assert.Nil(t, created.WifiImportance)
	assert.Equal(t, types.SeatingAny, created.PreferredSeating)
	assert.False(t, created.HasWorkPreferences())

	t.Run("Duplicate username is a conflict", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, "user-"+handle, fmt.Sprintf("other-%s@test.com", handle))
		assert.ErrorIs(t, err, types.ErrConflict)
	})

	t.Run("Fetch round-trips the record", func(t *testing.T) {
		got, err := repo.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Username, got.Username)
	})

	t.Run("Unknown user is not found", func(t *testing.T) {
		_, err := repo.GetUserByID(ctx, uuid.New())
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestUpdateWorkPreferences_Integration(t *testing.T) {
	ctx := context.Background()
	repo := newIntegrationUserRepo()

	handle := uniqueHandle()
	created, err := repo.CreateUser(ctx, "user-"+handle, fmt.Sprintf("%s@test.com", handle))
	require.NoError(t, err)

	noise := 2
	wifi := 5
	seating := types.SeatingQuiet
	err = repo.UpdateWorkPreferences(ctx, created.ID, types.UpdateWorkPreferencesParams{
		NoiseTolerance:   &noise,
		WifiImportance:   &wifi,
		PreferredSeating: &seating,
	})
	require.NoError(t, err)

	got, err := repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NoiseTolerance)
	require.NotNil(t, got.WifiImportance)
	assert.Equal(t, 2, *got.NoiseTolerance)
	assert.Equal(t, 5, *got.WifiImportance)
	assert.Equal(t, types.SeatingQuiet, got.PreferredSeating)
	assert.True(t, got.HasWorkPreferences())

	t.Run("Partial update leaves other fields untouched", func(t *testing.T) {
		newNoise := 4
		err := repo.UpdateWorkPreferences(ctx, created.ID, types.UpdateWorkPreferencesParams{
			NoiseTolerance: &newNoise,
		})
		require.NoError(t, err)

		got, err := repo.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, *got.NoiseTolerance)
		assert.Equal(t, 5, *got.WifiImportance)
		assert.Equal(t, types.SeatingQuiet, got.PreferredSeating)
	})

	t.Run("Empty update is a no-op", func(t *testing.T) {
		err := repo.UpdateWorkPreferences(ctx, created.ID, types.UpdateWorkPreferencesParams{})
		require.NoError(t, err)
	})

	t.Run("Unknown user is not found", func(t *testing.T) {
		newNoise := 3
		err := repo.UpdateWorkPreferences(ctx, uuid.New(), types.UpdateWorkPreferencesParams{
			NoiseTolerance: &newNoise,
		})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
