package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/workspot-api/internal/domain/user"
	"github.com/FACorreiaa/workspot-api/internal/types"
	"github.com/FACorreiaa/workspot-api/pkg/middleware"
)

type UserHandler struct {
	repo     user.Repository
	validate *validator.Validate
}

func NewUserHandler(repo user.Repository) *UserHandler {
	return &UserHandler{
		repo:     repo,
		validate: validator.New(),
	}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

type updatePreferencesRequest struct {
	NoiseTolerance   *int    `json:"noise_tolerance,omitempty" validate:"omitempty,min=1,max=5"`
	WifiImportance   *int    `json:"wifi_importance,omitempty" validate:"omitempty,min=1,max=5"`
	PreferredSeating *string `json:"preferred_seating,omitempty" validate:"omitempty,oneof=quiet social outdoor any"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	u, err := h.repo.CreateUser(r.Context(), req.Username, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// GetMe handles GET /users/me for the authenticated principal.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, types.ErrUnauthenticated)
		return
	}

	u, err := h.repo.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdatePreferences handles PUT /users/me/preferences.
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, types.ErrUnauthenticated)
		return
	}
	var req updatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	params := types.UpdateWorkPreferencesParams{
		NoiseTolerance: req.NoiseTolerance,
		WifiImportance: req.WifiImportance,
	}
	if req.PreferredSeating != nil {
		seating := types.PreferredSeating(*req.PreferredSeating)
		params.PreferredSeating = &seating
	}

	if err := h.repo.UpdateWorkPreferences(r.Context(), userID, params); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
