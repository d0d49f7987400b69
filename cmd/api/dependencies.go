package main

import (
	"fmt"
	"log/slog"
	"time"

	reviewrepo "github.com/FACorreiaa/workspot-api/internal/domain/review"
	reviewhandler "github.com/FACorreiaa/workspot-api/internal/domain/review/handler"
	userrepo "github.com/FACorreiaa/workspot-api/internal/domain/user"
	userhandler "github.com/FACorreiaa/workspot-api/internal/domain/user/handler"
	venuerepo "github.com/FACorreiaa/workspot-api/internal/domain/venue"
	venuehandler "github.com/FACorreiaa/workspot-api/internal/domain/venue/handler"
	"github.com/FACorreiaa/workspot-api/pkg/config"
	"github.com/FACorreiaa/workspot-api/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	VenueRepo  venuerepo.Repository
	ReviewRepo reviewrepo.Repository
	UserRepo   userrepo.Repository

	// Services
	VenueService  venuerepo.Service
	ReviewService reviewrepo.Service

	// Handlers
	VenueHandler  *venuehandler.VenueHandler
	ReviewHandler *reviewhandler.ReviewHandler
	UserHandler   *userhandler.UserHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        int32(d.Config.Database.MaxConns),
		MinConns:        int32(d.Config.Database.MinConns),
		MaxConnLifetime: time.Duration(d.Config.Database.MaxLifetimeSecs) * time.Second,
		MaxConnIdleTime: time.Duration(d.Config.Database.MaxIdleSecs) * time.Second,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initRepositories() {
	aggregator := reviewrepo.NewAggregator(d.Logger)

	d.VenueRepo = venuerepo.NewRepository(d.DB.Pool, d.Logger)
	d.ReviewRepo = reviewrepo.NewRepository(d.DB.Pool, aggregator, d.Logger)
	d.UserRepo = userrepo.NewRepository(d.DB.Pool, d.Logger)

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices() {
	weights := venuerepo.ScoringWeights{
		Rating: d.Config.Scoring.RatingWeight,
		Wifi:   d.Config.Scoring.WifiWeight,
		Noise:  d.Config.Scoring.NoiseWeight,
		Offset: d.Config.Scoring.Offset,
	}

	d.VenueService = venuerepo.NewService(d.VenueRepo, d.UserRepo, weights, d.Logger)
	d.ReviewService = reviewrepo.NewService(d.ReviewRepo, d.Logger)

	d.Logger.Info("services initialized")
}

func (d *Dependencies) initHandlers() {
	d.VenueHandler = venuehandler.NewVenueHandler(d.VenueService)
	d.ReviewHandler = reviewhandler.NewReviewHandler(d.ReviewService)
	d.UserHandler = userhandler.NewUserHandler(d.UserRepo)
	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
