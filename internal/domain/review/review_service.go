package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/workspot-api/internal/types"
	"github.com/FACorreiaa/workspot-api/pkg/observability"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the mutation entry point for reviews and votes. Inputs are
// validated before any store access; each mutation commits together with
// its aggregate recomputation or not at all.
type Service interface {
	CreateReview(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, params types.UpdateReviewParams) (*types.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error
	GetReview(ctx context.Context, reviewID uuid.UUID) (*types.Review, error)
	ListVenueReviews(ctx context.Context, venueID uuid.UUID, limit, offset int) ([]types.Review, error)

	CastVote(ctx context.Context, userID, reviewID uuid.UUID, isHelpful bool) (*types.ReviewVote, error)
	UpdateVote(ctx context.Context, userID, reviewID uuid.UUID, isHelpful bool) (*types.ReviewVote, error)
	RemoveVote(ctx context.Context, userID, reviewID uuid.UUID) error
}

type ServiceImpl struct {
	logger     *slog.Logger
	reviewRepo Repository
}

func NewService(reviewRepo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		reviewRepo: reviewRepo,
	}
}

func validateRating(name string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%s must be between 1 and 5, got %d: %w", name, rating, types.ErrBadRequest)
	}
	return nil
}

func (s *ServiceImpl) CreateReview(ctx context.Context, userID uuid.UUID, params types.CreateReviewParams) (*types.Review, error) {
	ctx, span := otel.Tracer("ReviewService").Start(ctx, "CreateReview", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("venue.id", params.VenueID.String()),
	))
	defer span.End()

	if userID == uuid.Nil || params.VenueID == uuid.Nil {
		return nil, fmt.Errorf("user id and venue id are required: %w", types.ErrBadRequest)
	}
	if err := validateRating("overall_rating", params.OverallRating); err != nil {
		return nil, err
	}
	if params.WifiRating != nil {
		if err := validateRating("wifi_rating", *params.WifiRating); err != nil {
			return nil, err
		}
	}
	if params.NoiseRating != nil {
		if err := validateRating("noise_rating", *params.NoiseRating); err != nil {
			return nil, err
		}
	}

	rev, err := s.reviewRepo.CreateReview(ctx, userID, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Review create failed")
		return nil, err
	}

	observability.ReviewMutationsTotal.WithLabelValues("create").Inc()
	span.SetStatus(codes.Ok, "Review created")
	return rev, nil
}

func (s *ServiceImpl) UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, params types.UpdateReviewParams) (*types.Review, error) {
	if userID == uuid.Nil || reviewID == uuid.Nil {
		return nil, fmt.Errorf("user id and review id are required: %w", types.ErrBadRequest)
	}
	if params.OverallRating != nil {
		if err := validateRating("overall_rating", *params.OverallRating); err != nil {
			return nil, err
		}
	}
	if params.WifiRating != nil {
		if err := validateRating("wifi_rating", *params.WifiRating); err != nil {
			return nil, err
		}
	}
	if params.NoiseRating != nil {
		if err := validateRating("noise_rating", *params.NoiseRating); err != nil {
			return nil, err
		}
	}

	rev, err := s.reviewRepo.UpdateReview(ctx, userID, reviewID, params)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update review", slog.Any("error", err))
		return nil, err
	}

	observability.ReviewMutationsTotal.WithLabelValues("update").Inc()
	return rev, nil
}

func (s *ServiceImpl) DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error {
	if userID == uuid.Nil || reviewID == uuid.Nil {
		return fmt.Errorf("user id and review id are required: %w", types.ErrBadRequest)
	}

	if err := s.reviewRepo.SoftDeleteReview(ctx, userID, reviewID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete review", slog.Any("error", err))
		return err
	}

	observability.ReviewMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

func (s *ServiceImpl) GetReview(ctx context.Context, reviewID uuid.UUID) (*types.Review, error) {
	if reviewID == uuid.Nil {
		return nil, fmt.Errorf("review id is required: %w", types.ErrBadRequest)
	}
	return s.reviewRepo.GetReview(ctx, reviewID)
}

func (s *ServiceImpl) ListVenueReviews(ctx context.Context, venueID uuid.UUID, limit, offset int) ([]types.Review, error) {
	if venueID == uuid.Nil {
		return nil, fmt.Errorf("venue id is required: %w", types.ErrBadRequest)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.reviewRepo.ListVenueReviews(ctx, venueID, limit, offset)
}

func (s *ServiceImpl) CastVote(ctx context.Context, userID, reviewID uuid.UUID, isHelpful bool) (*types.ReviewVote, error) {
	if userID == uuid.Nil || reviewID == uuid.Nil {
		return nil, fmt.Errorf("user id and review id are required: %w", types.ErrBadRequest)
	}

	vote, err := s.reviewRepo.CastVote(ctx, userID, reviewID, isHelpful)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to cast vote", slog.Any("error", err))
		return nil, err
	}

	observability.VoteMutationsTotal.WithLabelValues("create").Inc()
	return vote, nil
}

func (s *ServiceImpl) UpdateVote(ctx context.Context, userID, reviewID uuid.UUID, isHelpful bool) (*types.ReviewVote, error) {
	if userID == uuid.Nil || reviewID == uuid.Nil {
		return nil, fmt.Errorf("user id and review id are required: %w", types.ErrBadRequest)
	}

	vote, err := s.reviewRepo.UpdateVote(ctx, userID, reviewID, isHelpful)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update vote", slog.Any("error", err))
		return nil, err
	}

	observability.VoteMutationsTotal.WithLabelValues("update").Inc()
	return vote, nil
}

func (s *ServiceImpl) RemoveVote(ctx context.Context, userID, reviewID uuid.UUID) error {
	if userID == uuid.Nil || reviewID == uuid.Nil {
		return fmt.Errorf("user id and review id are required: %w", types.ErrBadRequest)
	}

	if err := s.reviewRepo.RemoveVote(ctx, userID, reviewID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove vote", slog.Any("error", err))
		return err
	}

	observability.VoteMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}
