package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

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

// Repository defines the contract for venue persistence and radius queries.
type Repository interface {
	CreateVenue(ctx context.Context, params types.CreateVenueParams) (*types.Venue, error)
	GetVenue(ctx context.Context, venueID uuid.UUID) (*types.Venue, error)
	UpdateVenueStatus(ctx context.Context, venueID uuid.UUID, status types.VenueStatus) error
	SoftDeleteVenue(ctx context.Context, venueID uuid.UUID) error

	UpsertAmenities(ctx context.Context, venueID uuid.UUID, params types.UpsertAmenitiesParams) (*types.VenueAmenities, error)
	GetAmenities(ctx context.Context, venueID uuid.UUID) (*types.VenueAmenities, error)

	// FindWithinRadius returns venues of the given status within radiusKm of
	// the center, ordered by ascending geodesic distance, ties by venue id.
	FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64, status types.VenueStatus) ([]types.VenueSearchResult, error)
	// FindWithinRadiusWithAmenities is the recommendation variant: same rows
	// plus each venue's amenity record, nil when none exists.
	FindWithinRadiusWithAmenities(ctx context.Context, lat, lng, radiusKm float64, status types.VenueStatus) ([]types.VenueWithAmenities, error)
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

func (r *RepositoryImpl) CreateVenue(ctx context.Context, params types.CreateVenueParams) (*types.Venue, error) {
	ctx, span := otel.Tracer("VenueRepo").Start(ctx, "CreateVenue", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "venues"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateVenue"), slog.String("name", params.Name))

	query := `
        INSERT INTO venues (name, address, location, status)
        VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5)
        RETURNING id, name, address, ST_Y(location::geometry), ST_X(location::geometry),
                  status, overall_rating, total_reviews, created_at, updated_at`

	var v types.Venue
	err := r.pgpool.QueryRow(ctx, query,
		params.Name, params.Address, params.Longitude, params.Latitude, types.VenueStatusPending,
	).Scan(
		&v.ID, &v.Name, &v.Address, &v.Latitude, &v.Longitude,
		&v.Status, &v.OverallRating, &v.TotalReviews, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert venue", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("venue already exists: %w", types.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert venue: %w", err)
	}

	l.InfoContext(ctx, "Venue created", slog.String("venueID", v.ID.String()))
	span.SetStatus(codes.Ok, "Venue created")
	return &v, nil
}

func (r *RepositoryImpl) GetVenue(ctx context.Context, venueID uuid.UUID) (*types.Venue, error) {
	ctx, span := otel.Tracer("VenueRepo").Start(ctx, "GetVenue", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "venues"),
		attribute.String("db.venue.id", venueID.String()),
	))
	defer span.End()

	query := `
        SELECT id, name, address, ST_Y(location::geometry), ST_X(location::geometry),
               status, overall_rating, total_reviews, created_at, updated_at, deleted_at
        FROM venues
        WHERE id = $1 AND deleted_at IS NULL`

	var v types.Venue
	err := r.pgpool.QueryRow(ctx, query, venueID).Scan(
		&v.ID, &v.Name, &v.Address, &v.Latitude, &v.Longitude,
		&v.Status, &v.OverallRating, &v.TotalReviews, &v.CreatedAt, &v.UpdatedAt, &v.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("venue %s: %w", venueID, types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("failed to fetch venue: %w", err)
	}

	return &v, nil
}

func (r *RepositoryImpl) UpdateVenueStatus(ctx context.Context, venueID uuid.UUID, status types.VenueStatus) error {
	ctx, span := otel.Tracer("VenueRepo").Start(ctx, "UpdateVenueStatus", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.venue.id", venueID.String()),
		attribute.String("venue.status", string(status)),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE venues SET status = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL`,
		status, venueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB update failed")
		return fmt.Errorf("failed to update venue status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("venue %s: %w", venueID, types.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "Venue status updated",
		slog.String("venueID", venueID.String()), slog.String("status", string(status)))
	return nil
}

func (r *RepositoryImpl) SoftDeleteVenue(ctx context.Context, venueID uuid.UUID) error {
	ctx, span := otel.Tracer("VenueRepo").Start(ctx, "SoftDeleteVenue", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.venue.id", venueID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE venues SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		venueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB update failed")
		return fmt.Errorf("failed to soft-delete venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("venue %s: %w", venueID, types.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) UpsertAmenities(ctx context.Context, venueID uuid.UUID, params types.UpsertAmenitiesParams) (*types.VenueAmenities, error) {
	ctx, span := otel.Tracer("VenueRepo").Start(ctx, "UpsertAmenities", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "venue_amenities"),
		attribute.String("db.venue.id", venueID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpsertAmenities"), slog.String("venueID", venueID.String()))

	// One amenity record per venue; the PK makes a second insert an update.
	query := `
        INSERT INTO venue_amenities (
            venue_id, wifi_quality, noise_level, price_range,
            has_power_outlets, has_food, has_coffee, has_outdoor_seating, has_parking
        ) VALUES ($1, $2, $3, $4, COALESCE($5, false), COALESCE($6, false), COALESCE($7, false), COALESCE($8, false), COALESCE($9, false))
        ON CONFLICT (venue_id) DO UPDATE SET
            wifi_quality = EXCLUDED.wifi_quality,
            noise_level = EXCLUDED.noise_level,
            price_range = EXCLUDED.price_range,
            has_power_outlets = COALESCE($5, venue_amenities.has_power_outlets),
            has_food = COALESCE($6, venue_amenities.has_food),
            has_coffee = COALESCE($7, venue_amenities.has_coffee),
            has_outdoor_seating = COALESCE($8, venue_amenities.has_outdoor_seating),
            has_parking = COALESCE($9, venue_amenities.has_parking),
            updated_at = now()
        RETURNING venue_id, wifi_quality, noise_level, price_range,
                  has_power_outlets, has_food, has_coffee, has_outdoor_seating, has_parking, updated_at`

	var a types.VenueAmenities
	err := r.pgpool.QueryRow(ctx, query,
		venueID, params.WifiQuality, params.NoiseLevel, params.PriceRange,
		params.HasPowerOutlets, params.HasFood, params.HasCoffee, params.HasOutdoorSeating, params.HasParking,
	).Scan(
		&a.VenueID, &a.WifiQuality, &a.NoiseLevel, &a.PriceRange,
		&a.HasPowerOutlets, &a.HasFood, &a.HasCoffee, &a.HasOutdoorSeating, &a.HasParking, &a.UpdatedAt,
	)
	if err != nil {
		l.ErrorContext(ctx, "Failed to upsert amenities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB upsert failed")
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign key violation
			return nil, fmt.Errorf("venue %s: %w", venueID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to upsert venue amenities: %w", err)
	}

	span.SetStatus(codes.Ok, "Amenities upserted")
	return &a, nil
}

func (r *RepositoryImpl) GetAmenities(ctx context.Context, venueID uuid.UUID) (*types.VenueAmenities, error) {
	query := `
        SELECT venue_id, wifi_quality, noise_level, price_range,
               has_power_outlets, has_food, has_coffee, has_outdoor_seating, has_parking, updated_at
        FROM venue_amenities
        WHERE venue_id = $1`

	var a types.VenueAmenities
	err := r.pgpool.QueryRow(ctx, query, venueID).Scan(
		&a.VenueID, &a.WifiQuality, &a.NoiseLevel, &a.PriceRange,
		&a.HasPowerOutlets, &a.HasFood, &a.HasCoffee, &a.HasOutdoorSeating, &a.HasParking, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("amenities for venue %s: %w", venueID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch venue amenities: %w", err)
	}
	return &a, nil
}

func (r *RepositoryImpl) FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64, status types.VenueStatus) ([]types.VenueSearchResult, error) {
	ctx, span := otel.Tracer("VenueRepo").Start(ctx, "FindWithinRadius", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "venues"),
		attribute.Float64("search.radius_km", radiusKm),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "FindWithinRadius"))
	l.DebugContext(ctx, "Radius search",
		slog.Float64("lat", lat), slog.Float64("lng", lng), slog.Float64("radiusKm", radiusKm))

	// ST_DWithin on geography rides the GIST index as the bounding pre-filter;
	// ST_Distance on the same geography cast keeps filter and ranking on one
	// geodesic distance definition.
	query := `
        SELECT v.id, v.name, v.address, v.overall_rating, v.total_reviews,
               ST_Distance(v.location::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) / 1000.0 AS distance_km
        FROM venues v
        WHERE v.status = $3
          AND v.deleted_at IS NULL
          AND ST_DWithin(v.location::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $4 * 1000)
        ORDER BY distance_km ASC, v.id ASC`

	rows, err := r.pgpool.Query(ctx, query, lng, lat, status, radiusKm)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query venues within radius", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("failed to query venues within radius: %w", err)
	}
	defer rows.Close()

	var results []types.VenueSearchResult
	for rows.Next() {
		var res types.VenueSearchResult
		if err := rows.Scan(&res.VenueID, &res.Name, &res.Address, &res.OverallRating, &res.TotalReviews, &res.DistanceKm); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating venue rows: %w", err)
	}

	span.SetAttributes(attribute.Int("search.result_count", len(results)))
	span.SetStatus(codes.Ok, "Radius search completed")
	return results, nil
}

func (r *RepositoryImpl) FindWithinRadiusWithAmenities(ctx context.Context, lat, lng, radiusKm float64, status types.VenueStatus) ([]types.VenueWithAmenities, error) {
	ctx, span := otel.Tracer("VenueRepo").Start(ctx, "FindWithinRadiusWithAmenities", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "venues"),
		attribute.Float64("search.radius_km", radiusKm),
	))
	defer span.End()

	query := `
        SELECT v.id, v.name, v.address, v.overall_rating, v.total_reviews,
               ST_Distance(v.location::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) / 1000.0 AS distance_km,
               a.wifi_quality, a.noise_level, a.price_range,
               a.has_power_outlets, a.has_food, a.has_coffee, a.has_outdoor_seating, a.has_parking
        FROM venues v
        LEFT JOIN venue_amenities a ON a.venue_id = v.id
        WHERE v.status = $3
          AND v.deleted_at IS NULL
          AND ST_DWithin(v.location::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $4 * 1000)
        ORDER BY distance_km ASC, v.id ASC`

	rows, err := r.pgpool.Query(ctx, query, lng, lat, status, radiusKm)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query venues with amenities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("failed to query venues with amenities: %w", err)
	}
	defer rows.Close()

	var results []types.VenueWithAmenities
	for rows.Next() {
		var (
			res         types.VenueWithAmenities
			wifiQuality sql.NullInt32
			noiseLevel  sql.NullInt32
			priceRange  sql.NullInt32
			power       sql.NullBool
			food        sql.NullBool
			coffee      sql.NullBool
			outdoor     sql.NullBool
			parking     sql.NullBool
		)
		err := rows.Scan(
			&res.VenueID, &res.Name, &res.Address, &res.OverallRating, &res.TotalReviews, &res.DistanceKm,
			&wifiQuality, &noiseLevel, &priceRange, &power, &food, &coffee, &outdoor, &parking,
		)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		if wifiQuality.Valid {
			res.Amenities = &types.VenueAmenities{
				VenueID:           res.VenueID,
				WifiQuality:       int(wifiQuality.Int32),
				NoiseLevel:        int(noiseLevel.Int32),
				PriceRange:        int(priceRange.Int32),
				HasPowerOutlets:   power.Bool,
				HasFood:           food.Bool,
				HasCoffee:         coffee.Bool,
				HasOutdoorSeating: outdoor.Bool,
				HasParking:        parking.Bool,
			}
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating venue rows: %w", err)
	}

	span.SetAttributes(attribute.Int("search.result_count", len(results)))
	span.SetStatus(codes.Ok, "Radius search completed")
	return results, nil
}
