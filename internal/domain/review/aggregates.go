package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Aggregator is the write-path hook that keeps denormalized counters in
// step with their source rows: venue rating/review count, review vote
// tallies, and user review count.
//
// Every method recomputes the aggregate scoped to a single key and
// overwrites the stored value. Recomputation, not increment/decrement: a
// missed event can never leave the counter drifted. Methods must run inside
// the same transaction as the mutation that triggered them; a failure here
// aborts that mutation.
type Aggregator struct {
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// RecomputeVenueAggregates rewrites overall_rating (1dp mean of non-deleted
// reviews, 0 when none) and total_reviews for one venue.
func (a *Aggregator) RecomputeVenueAggregates(ctx context.Context, tx pgx.Tx, venueID uuid.UUID) error {
	query := `
        UPDATE venues SET
            overall_rating = COALESCE((
                SELECT ROUND(AVG(overall_rating)::numeric, 1)
                FROM reviews
                WHERE venue_id = $1 AND deleted_at IS NULL
            ), 0),
            total_reviews = (
                SELECT COUNT(*)
                FROM reviews
                WHERE venue_id = $1 AND deleted_at IS NULL
            ),
            updated_at = now()
        WHERE id = $1`

	if _, err := tx.Exec(ctx, query, venueID); err != nil {
		a.logger.ErrorContext(ctx, "Failed to recompute venue aggregates",
			slog.String("venueID", venueID.String()), slog.Any("error", err))
		return fmt.Errorf("failed to recompute venue aggregates: %w", err)
	}
	return nil
}

// RecomputeReviewVotes rewrites total_votes and helpful_votes for one review.
func (a *Aggregator) RecomputeReviewVotes(ctx context.Context, tx pgx.Tx, reviewID uuid.UUID) error {
	query := `
        UPDATE reviews SET
            total_votes = (
                SELECT COUNT(*) FROM review_votes WHERE review_id = $1
            ),
            helpful_votes = (
                SELECT COUNT(*) FROM review_votes WHERE review_id = $1 AND is_helpful
            ),
            updated_at = now()
        WHERE id = $1`

	if _, err := tx.Exec(ctx, query, reviewID); err != nil {
		a.logger.ErrorContext(ctx, "Failed to recompute review vote tallies",
			slog.String("reviewID", reviewID.String()), slog.Any("error", err))
		return fmt.Errorf("failed to recompute review vote tallies: %w", err)
	}
	return nil
}

// RecomputeUserReviewCount rewrites total_reviews for one user.
func (a *Aggregator) RecomputeUserReviewCount(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	query := `
        UPDATE users SET
            total_reviews = (
                SELECT COUNT(*)
                FROM reviews
                WHERE user_id = $1 AND deleted_at IS NULL
            ),
            updated_at = now()
        WHERE id = $1`

	if _, err := tx.Exec(ctx, query, userID); err != nil {
		a.logger.ErrorContext(ctx, "Failed to recompute user review count",
			slog.String("userID", userID.String()), slog.Any("error", err))
		return fmt.Errorf("failed to recompute user review count: %w", err)
	}
	return nil
}
