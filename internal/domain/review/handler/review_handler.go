package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/FACorreiaa/workspot-api/internal/domain/review"
	"github.com/FACorreiaa/workspot-api/internal/types"
	"github.com/FACorreiaa/workspot-api/pkg/middleware"
)

// ReviewHandler exposes the review and vote mutation entry points. The
// authenticated principal comes from the external auth layer via middleware.
type ReviewHandler struct {
	service  review.Service
	validate *validator.Validate
}

func NewReviewHandler(svc review.Service) *ReviewHandler {
	return &ReviewHandler{
		service:  svc,
		validate: validator.New(),
	}
}

type createReviewRequest struct {
	OverallRating int    `json:"overall_rating" validate:"required,min=1,max=5"`
	WifiRating    *int   `json:"wifi_rating,omitempty" validate:"omitempty,min=1,max=5"`
	NoiseRating   *int   `json:"noise_rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment       string `json:"comment"`
}

type updateReviewRequest struct {
	OverallRating *int    `json:"overall_rating,omitempty" validate:"omitempty,min=1,max=5"`
	WifiRating    *int    `json:"wifi_rating,omitempty" validate:"omitempty,min=1,max=5"`
	NoiseRating   *int    `json:"noise_rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment       *string `json:"comment,omitempty"`
}

type voteRequest struct {
	IsHelpful *bool `json:"is_helpful" validate:"required"`
}

// CreateReview handles POST /venues/{venueID}/reviews.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, types.ErrUnauthenticated)
		return
	}
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	rev, err := h.service.CreateReview(r.Context(), userID, types.CreateReviewParams{
		VenueID:       venueID,
		OverallRating: req.OverallRating,
		WifiRating:    req.WifiRating,
		NoiseRating:   req.NoiseRating,
		Comment:       req.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

// UpdateReview handles PATCH /reviews/{reviewID}.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, types.ErrUnauthenticated)
		return
	}
	reviewID, err := uuid.Parse(chi.URLParam(r, "reviewID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	var req updateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	rev, err := h.service.UpdateReview(r.Context(), userID, reviewID, types.UpdateReviewParams{
		OverallRating: req.OverallRating,
		WifiRating:    req.WifiRating,
		NoiseRating:   req.NoiseRating,
		Comment:       req.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

// DeleteReview handles DELETE /reviews/{reviewID} (soft delete).
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, types.ErrUnauthenticated)
		return
	}
	reviewID, err := uuid.Parse(chi.URLParam(r, "reviewID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	if err := h.service.DeleteReview(r.Context(), userID, reviewID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetReview handles GET /reviews/{reviewID}.
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := uuid.Parse(chi.URLParam(r, "reviewID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	rev, err := h.service.GetReview(r.Context(), reviewID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

// ListVenueReviews handles GET /venues/{venueID}/reviews?limit=&offset=
func (h *ReviewHandler) ListVenueReviews(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	reviews, err := h.service.ListVenueReviews(r.Context(), venueID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if reviews == nil {
		reviews = []types.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

// CastVote handles POST /reviews/{reviewID}/votes.
func (h *ReviewHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, reviewID, req, ok := h.parseVote(w, r)
	if !ok {
		return
	}

	vote, err := h.service.CastVote(r.Context(), userID, reviewID, *req.IsHelpful)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

// UpdateVote handles PUT /reviews/{reviewID}/votes.
func (h *ReviewHandler) UpdateVote(w http.ResponseWriter, r *http.Request) {
	userID, reviewID, req, ok := h.parseVote(w, r)
	if !ok {
		return
	}

	vote, err := h.service.UpdateVote(r.Context(), userID, reviewID, *req.IsHelpful)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vote)
}

// RemoveVote handles DELETE /reviews/{reviewID}/votes.
func (h *ReviewHandler) RemoveVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, types.ErrUnauthenticated)
		return
	}
	reviewID, err := uuid.Parse(chi.URLParam(r, "reviewID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	if err := h.service.RemoveVote(r.Context(), userID, reviewID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) parseVote(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, voteRequest, bool) {
	var req voteRequest
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, types.ErrUnauthenticated)
		return uuid.Nil, uuid.Nil, req, false
	}
	reviewID, err := uuid.Parse(chi.URLParam(r, "reviewID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return uuid.Nil, uuid.Nil, req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.ErrBadRequest)
		return uuid.Nil, uuid.Nil, req, false
	}
	if err := h.validate.Struct(req); err != nil || req.IsHelpful == nil {
		writeError(w, types.ErrBadRequest)
		return uuid.Nil, uuid.Nil, req, false
	}
	return userID, reviewID, req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, types.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, types.ErrForbidden):
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
