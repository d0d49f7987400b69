package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/workspot-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the contract for user identity and work-preference
// persistence. Authentication lives outside this service; the core trusts
// the principal it is handed.
type Repository interface {
	CreateUser(ctx context.Context, username, email string) (*types.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateWorkPreferences(ctx context.Context, userID uuid.UUID, params types.UpdateWorkPreferencesParams) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) CreateUser(ctx context.Context, username, email string) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `
        INSERT INTO users (username, email)
        VALUES ($1, $2)
        RETURNING id, username, email, noise_tolerance, wifi_importance, preferred_seating,
                  total_reviews, created_at, updated_at`

	var u types.User
	err := r.pgpool.QueryRow(ctx, query, username, email).Scan(
		&u.ID, &u.Username, &u.Email, &u.NoiseTolerance, &u.WifiImportance, &u.PreferredSeating,
		&u.TotalReviews, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("username or email already taken: %w", types.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	r.logger.InfoContext(ctx, "User created", slog.String("userID", u.ID.String()))
	return &u, nil
}

func (r *RepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	query := `
        SELECT id, username, email, noise_tolerance, wifi_importance, preferred_seating,
               total_reviews, created_at, updated_at
        FROM users
        WHERE id = $1`

	var u types.User
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Username, &u.Email, &u.NoiseTolerance, &u.WifiImportance, &u.PreferredSeating,
		&u.TotalReviews, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &u, nil
}

func (r *RepositoryImpl) UpdateWorkPreferences(ctx context.Context, userID uuid.UUID, params types.UpdateWorkPreferencesParams) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateWorkPreferences", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateWorkPreferences"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Updating work preferences")

	updateBuilder := squirrel.Update("users").
		PlaceholderFormat(squirrel.Dollar).
		Where(squirrel.Eq{"id": userID})

	var hasUpdates bool
	if params.NoiseTolerance != nil {
		updateBuilder = updateBuilder.Set("noise_tolerance", *params.NoiseTolerance)
		hasUpdates = true
	}
	if params.WifiImportance != nil {
		updateBuilder = updateBuilder.Set("wifi_importance", *params.WifiImportance)
		hasUpdates = true
	}
	if params.PreferredSeating != nil {
		updateBuilder = updateBuilder.Set("preferred_seating", string(*params.PreferredSeating))
		hasUpdates = true
	}
	if !hasUpdates {
		return nil
	}
	updateBuilder = updateBuilder.Set("updated_at", time.Now())

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update work preferences", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB update failed")
		return fmt.Errorf("failed to update work preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "Preferences updated")
	return nil
}
