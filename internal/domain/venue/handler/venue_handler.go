package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/FACorreiaa/workspot-api/internal/domain/venue"
	"github.com/FACorreiaa/workspot-api/internal/types"
	"github.com/FACorreiaa/workspot-api/pkg/middleware"
)

// VenueHandler exposes the venue query façade over JSON/HTTP. The wire
// layer is deliberately thin: all validation and composition happens in the
// service.
type VenueHandler struct {
	service  venue.Service
	validate *validator.Validate
}

func NewVenueHandler(svc venue.Service) *VenueHandler {
	return &VenueHandler{
		service:  svc,
		validate: validator.New(),
	}
}

type createVenueRequest struct {
	Name      string  `json:"name" validate:"required"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active closed archived"`
}

type upsertAmenitiesRequest struct {
	WifiQuality       int   `json:"wifi_quality" validate:"min=1,max=5"`
	NoiseLevel        int   `json:"noise_level" validate:"min=1,max=5"`
	PriceRange        int   `json:"price_range" validate:"min=1,max=4"`
	HasPowerOutlets   *bool `json:"has_power_outlets,omitempty"`
	HasFood           *bool `json:"has_food,omitempty"`
	HasCoffee         *bool `json:"has_coffee,omitempty"`
	HasOutdoorSeating *bool `json:"has_outdoor_seating,omitempty"`
	HasParking        *bool `json:"has_parking,omitempty"`
}

// SearchVenues handles GET /venues/search?lat=&lng=&radius_km=&status=
func (h *VenueHandler) SearchVenues(w http.ResponseWriter, r *http.Request) {
	lat, lng, radiusKm, err := parseGeoQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	status := types.VenueStatus(r.URL.Query().Get("status"))

	results, err := h.service.SearchVenues(r.Context(), lat, lng, radiusKm, status)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []types.VenueSearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// RecommendVenues handles GET /venues/recommendations?lat=&lng=&radius_km=
// for the authenticated principal.
func (h *VenueHandler) RecommendVenues(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, types.ErrUnauthenticated)
		return
	}
	lat, lng, radiusKm, err := parseGeoQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	recs, err := h.service.RecommendVenues(r.Context(), userID, lat, lng, radiusKm)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []types.VenueRecommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *VenueHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req createVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	v, err := h.service.CreateVenue(r.Context(), types.CreateVenueParams{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *VenueHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	v, err := h.service.GetVenue(r.Context(), venueID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *VenueHandler) UpdateVenueStatus(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	if err := h.service.SetVenueStatus(r.Context(), venueID, types.VenueStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VenueHandler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	if err := h.service.DeleteVenue(r.Context(), venueID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VenueHandler) GetAmenities(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	a, err := h.service.GetAmenities(r.Context(), venueID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *VenueHandler) UpsertAmenities(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	var req upsertAmenitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, types.ErrBadRequest)
		return
	}

	a, err := h.service.UpsertAmenities(r.Context(), venueID, types.UpsertAmenitiesParams{
		WifiQuality:       req.WifiQuality,
		NoiseLevel:        req.NoiseLevel,
		PriceRange:        req.PriceRange,
		HasPowerOutlets:   req.HasPowerOutlets,
		HasFood:           req.HasFood,
		HasCoffee:         req.HasCoffee,
		HasOutdoorSeating: req.HasOutdoorSeating,
		HasParking:        req.HasParking,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func parseGeoQuery(r *http.Request) (lat, lng, radiusKm float64, err error) {
	q := r.URL.Query()
	lat, err = strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return 0, 0, 0, types.ErrBadRequest
	}
	lng, err = strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return 0, 0, 0, types.ErrBadRequest
	}
	radiusKm, err = strconv.ParseFloat(q.Get("radius_km"), 64)
	if err != nil {
		return 0, 0, 0, types.ErrBadRequest
	}
	return lat, lng, radiusKm, nil
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
