package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/workspot-api/pkg/middleware"
)

// SetupRouter configures all routes and returns the HTTP handler.
func SetupRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID("X-Request-ID"))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		r.Use(middleware.RateLimit(limiter))
	}
	// Identity is established by an external auth layer; we only carry it.
	r.Use(middleware.Principal("X-User-ID"))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/venues", func(r chi.Router) {
			r.Get("/search", deps.VenueHandler.SearchVenues)
			r.Get("/recommendations", deps.VenueHandler.RecommendVenues)
			r.Post("/", deps.VenueHandler.CreateVenue)
			r.Route("/{venueID}", func(r chi.Router) {
				r.Get("/", deps.VenueHandler.GetVenue)
				r.Delete("/", deps.VenueHandler.DeleteVenue)
				r.Patch("/status", deps.VenueHandler.UpdateVenueStatus)
				r.Get("/amenities", deps.VenueHandler.GetAmenities)
				r.Put("/amenities", deps.VenueHandler.UpsertAmenities)
				r.Get("/reviews", deps.ReviewHandler.ListVenueReviews)
				r.Post("/reviews", deps.ReviewHandler.CreateReview)
			})
		})

		r.Route("/reviews/{reviewID}", func(r chi.Router) {
			r.Get("/", deps.ReviewHandler.GetReview)
			r.Patch("/", deps.ReviewHandler.UpdateReview)
			r.Delete("/", deps.ReviewHandler.DeleteReview)
			r.Post("/votes", deps.ReviewHandler.CastVote)
			r.Put("/votes", deps.ReviewHandler.UpdateVote)
			r.Delete("/votes", deps.ReviewHandler.RemoveVote)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", deps.UserHandler.CreateUser)
			r.Get("/me", deps.UserHandler.GetMe)
			r.Put("/me/preferences", deps.UserHandler.UpdatePreferences)
		})
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-User-ID"},
		MaxAge:         300,
	})

	return corsHandler.Handler(r)
}
