package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/workspot-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// PGXPool is the pool subset the repository needs. *pgxpool.Pool satisfies
// it in production; pgxmock satisfies it in tests.
type PGXPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository defines the contract for review and vote persistence. Every
// mutation runs together with its dependent aggregate recomputation in a
// single transaction; a committed source row with a stale aggregate is
// never a reachable end state.
type Repository interface {
	CreateReview(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, params types.UpdateReviewParams) (*types.Review, error)
	SoftDeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error
	GetReview(ctx context.Context, reviewID uuid.UUID) (*types.Review, error)
	ListVenueReviews(ctx context.Context, venueID uuid.UUID, limit, offset int) ([]types.Review, error)

	CastVote(ctx context.Context, userID, reviewID uuid.UUID, isHelpful bool) (*types.ReviewVote, error)
	UpdateVote(ctx context.Context, userID, reviewID uuid.UUID, isHelpful bool) (*types.ReviewVote, error)
	RemoveVote(ctx context.Context, userID, reviewID uuid.UUID) error
}

type RepositoryImpl struct {
	logger     *slog.Logger
	db         PGXPool
	aggregator *Aggregator
}

func NewRepository(db PGXPool, aggregator *Aggregator, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger:     logger,
		db:         db,
		aggregator: aggregator,
	}
}

// inTx runs fn inside a repeatable-read transaction, retrying once when the
// store reports a write-write conflict (serialization failure or deadlock).
// Repeatable read matters here: the aggregate recomputes count rows in other
// tables, and under read committed a concurrent committed vote could be
// invisible to the counting subselect while its row update still proceeds,
// committing a stale tally. At repeatable read that interleave surfaces as
// SQLSTATE 40001 and the retry recounts. Reads never go through here and
// never retry.
func (r *RepositoryImpl) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	err := r.runTx(ctx, fn)
	if err == nil || !isRetryableTxError(err) {
		return err
	}
	r.logger.WarnContext(ctx, "Retrying transaction after write-write conflict", slog.Any("error", err))
	return r.runTx(ctx, fn)
}

func (r *RepositoryImpl) runTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.ErrorContext(ctx, "Failed to rollback transaction", slog.Any("error", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

func (r *RepositoryImpl) CreateReview(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error) {
	ctx, span := otel.Tracer("ReviewRepo").Start(ctx, "CreateReview", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "reviews"),
		attribute.String("db.venue.id", params.VenueID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateReview"),
		slog.String("userID", userID.String()), slog.String("venueID", params.VenueID.String()))

	var rev types.Review
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
            INSERT INTO reviews (user_id, venue_id, overall_rating, wifi_rating, noise_rating, comment)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, user_id, venue_id, overall_rating, wifi_rating, noise_rating, comment,
                      helpful_votes, total_votes, created_at, updated_at`

		err := tx.QueryRow(ctx, query,
			userID, params.VenueID, params.OverallRating, params.WifiRating, params.NoiseRating, params.Comment,
		).Scan(
			&rev.ID, &rev.UserID, &rev.VenueID, &rev.OverallRating, &rev.WifiRating, &rev.NoiseRating,
			&rev.Comment, &rev.HelpfulVotes, &rev.TotalVotes, &rev.CreatedAt, &rev.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case "23505":
					return fmt.Errorf("user already reviewed this venue: %w", types.ErrConflict)
				case "23503":
					return fmt.Errorf("venue or user does not exist: %w", types.ErrNotFound)
				}
			}
			return fmt.Errorf("failed to insert review: %w", err)
		}

		if err := r.aggregator.RecomputeVenueAggregates(ctx, tx, params.VenueID); err != nil {
			return err
		}
		return r.aggregator.RecomputeUserReviewCount(ctx, tx, userID)
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to create review", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Review create failed")
		return nil, err
	}

	l.InfoContext(ctx, "Review created", slog.String("reviewID", rev.ID.String()))
	span.SetStatus(codes.Ok, "Review created")
	return &rev, nil
}

func (r *RepositoryImpl) UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, params types.UpdateReviewParams) (*types.Review, error) {
	ctx, span := otel.Tracer("ReviewRepo").Start(ctx, "UpdateReview", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.review.id", reviewID.String()),
	))
	defer span.End()

	var rev types.Review
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
            UPDATE reviews SET
                overall_rating = COALESCE($3, overall_rating),
                wifi_rating = COALESCE($4, wifi_rating),
                noise_rating = COALESCE($5, noise_rating),
                comment = COALESCE($6, comment),
                updated_at = now()
            WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
            RETURNING id, user_id, venue_id, overall_rating, wifi_rating, noise_rating, comment,
                      helpful_votes, total_votes, created_at, updated_at`

		err := tx.QueryRow(ctx, query,
			reviewID, userID, params.OverallRating, params.WifiRating, params.NoiseRating, params.Comment,
		).Scan(
			&rev.ID, &rev.UserID, &rev.VenueID, &rev.OverallRating, &rev.WifiRating, &rev.NoiseRating,
			&rev.Comment, &rev.HelpfulVotes, &rev.TotalVotes, &rev.CreatedAt, &rev.UpdatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("review %s: %w", reviewID, types.ErrNotFound)
			}
			return fmt.Errorf("failed to update review: %w", err)
		}

		return r.aggregator.RecomputeVenueAggregates(ctx, tx, rev.VenueID)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update review", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Review update failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Review updated")
	return &rev, nil
}

func (r *RepositoryImpl) SoftDeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error {
	ctx, span := otel.Tracer("ReviewRepo").Start(ctx, "SoftDeleteReview", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.review.id", reviewID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SoftDeleteReview"), slog.String("reviewID", reviewID.String()))

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var venueID uuid.UUID
		err := tx.QueryRow(ctx,
			`UPDATE reviews SET deleted_at = now(), updated_at = now()
             WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
             RETURNING venue_id`,
			reviewID, userID,
		).Scan(&venueID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("review %s: %w", reviewID, types.ErrNotFound)
			}
			return fmt.Errorf("failed to soft-delete review: %w", err)
		}

		if err := r.aggregator.RecomputeVenueAggregates(ctx, tx, venueID); err != nil {
			return err
		}
		return r.aggregator.RecomputeUserReviewCount(ctx, tx, userID)
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to soft-delete review", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Review soft-delete failed")
		return err
	}

	l.InfoContext(ctx, "Review soft-deleted")
	span.SetStatus(codes.Ok, "Review soft-deleted")
	return nil
}

func (r *RepositoryImpl) GetReview(ctx context.Context, reviewID uuid.UUID) (*types.Review, error) {
	query := `
        SELECT id, user_id, venue_id, overall_rating, wifi_rating, noise_rating, comment,
               helpful_votes, total_votes, created_at, updated_at
        FROM reviews
        WHERE id = $1 AND deleted_at IS NULL`

	var rev types.Review
	err := r.db.QueryRow(ctx, query, reviewID).Scan(
		&rev.ID, &rev.UserID, &rev.VenueID, &rev.OverallRating, &rev.WifiRating, &rev.NoiseRating,
		&rev.Comment, &rev.HelpfulVotes, &rev.TotalVotes, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", reviewID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return &rev, nil
}

func (r *RepositoryImpl) ListVenueReviews(ctx context.Context, venueID uuid.UUID, limit, offset int) ([]types.Review, error) {
	ctx, span := otel.Tracer("ReviewRepo").Start(ctx, "ListVenueReviews", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "reviews"),
		attribute.String("db.venue.id", venueID.String()),
	))
	defer span.End()

	query := `
        SELECT id, user_id, venue_id, overall_rating, wifi_rating, noise_rating, comment,
               helpful_votes, total_votes, created_at, updated_at
        FROM reviews
        WHERE venue_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, venueID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("failed to query venue reviews: %w", err)
	}
	defer rows.Close()

	var reviews []types.Review
	for rows.Next() {
		var rev types.Review
		err := rows.Scan(
			&rev.ID, &rev.UserID, &rev.VenueID, &rev.OverallRating, &rev.WifiRating, &rev.NoiseRating,
			&rev.Comment, &rev.HelpfulVotes, &rev.TotalVotes, &rev.CreatedAt, &rev.UpdatedAt,
		)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Reviews listed")
	return reviews, nil
}

func (r *RepositoryImpl) CastVote(ctx context.Context, userID, reviewID uuid.UUID, isHelpful bool) (*types.ReviewVote, error) {
	ctx, span := otel.Tracer("ReviewRepo").Start(ctx, "CastVote", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "review_votes"),
		attribute.String("db.review.id", reviewID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CastVote"),
		slog.String("userID", userID.String()), slog.String("reviewID", reviewID.String()))

	var vote types.ReviewVote
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
            INSERT INTO review_votes (user_id, review_id, is_helpful)
            VALUES ($1, $2, $3)
            RETURNING id, user_id, review_id, is_helpful, created_at, updated_at`

		err := tx.QueryRow(ctx, query, userID, reviewID, isHelpful).Scan(
			&vote.ID, &vote.UserID, &vote.ReviewID, &vote.IsHelpful, &vote.CreatedAt, &vote.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case "23505":
					return fmt.Errorf("user already voted on this review: %w", types.ErrConflict)
				case "23503":
					return fmt.Errorf("review or user does not exist: %w", types.ErrNotFound)
				}
			}
			return fmt.Errorf("failed to insert vote: %w", err)
		}

		return r.aggregator.RecomputeReviewVotes(ctx, tx, reviewID)
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to cast vote", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Vote failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Vote cast")
	return &vote, nil
}

func (r *RepositoryImpl) UpdateVote(ctx context.Context, userID, reviewID uuid.UUID, isHelpful bool) (*types.ReviewVote, error) {
	ctx, span := otel.Tracer("ReviewRepo").Start(ctx, "UpdateVote", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "review_votes"),
		attribute.String("db.review.id", reviewID.String()),
	))
	defer span.End()

	var vote types.ReviewVote
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
            UPDATE review_votes SET is_helpful = $3, updated_at = now()
            WHERE user_id = $1 AND review_id = $2
            RETURNING id, user_id, review_id, is_helpful, created_at, updated_at`

		err := tx.QueryRow(ctx, query, userID, reviewID, isHelpful).Scan(
			&vote.ID, &vote.UserID, &vote.ReviewID, &vote.IsHelpful, &vote.CreatedAt, &vote.UpdatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("vote by user %s on review %s: %w", userID, reviewID, types.ErrNotFound)
			}
			return fmt.Errorf("failed to update vote: %w", err)
		}

		return r.aggregator.RecomputeReviewVotes(ctx, tx, reviewID)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update vote", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Vote update failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Vote updated")
	return &vote, nil
}

func (r *RepositoryImpl) RemoveVote(ctx context.Context, userID, reviewID uuid.UUID) error {
	ctx, span := otel.Tracer("ReviewRepo").Start(ctx, "RemoveVote", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "review_votes"),
		attribute.String("db.review.id", reviewID.String()),
	))
	defer span.End()

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM review_votes WHERE user_id = $1 AND review_id = $2`,
			userID, reviewID)
		if err != nil {
			return fmt.Errorf("failed to delete vote: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("vote by user %s on review %s: %w", userID, reviewID, types.ErrNotFound)
		}

		return r.aggregator.RecomputeReviewVotes(ctx, tx, reviewID)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to remove vote", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Vote removal failed")
		return err
	}

	span.SetStatus(codes.Ok, "Vote removed")
	return nil
}
