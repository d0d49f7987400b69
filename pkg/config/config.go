package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Scoring  ScoringConfig
}

type ServerConfig struct {
	Port               string
	ReadTimeoutSecs    int
	WriteTimeoutSecs   int
	IdleTimeoutSecs    int
	RateLimitPerSecond int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxConns        int
	MinConns        int
	MaxIdleSecs     int
	MaxLifetimeSecs int
}

// ScoringConfig carries the compatibility formula coefficients. The
// defaults are inherited business rules; they can be overridden per
// deployment but are not re-derived here.
type ScoringConfig struct {
	RatingWeight float64
	WifiWeight   float64
	NoiseWeight  float64
	Offset       float64
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name, d.SSLMode)
}

// Load reads configuration from environment variables, applying defaults
// and validation.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeoutSecs:    getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeoutSecs:   getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeoutSecs:    getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 100),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            getEnv("DB_NAME", "workspot"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 600),
			MaxLifetimeSecs: getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 300),
		},
		Scoring: ScoringConfig{
			RatingWeight: getEnvFloat("SCORING_RATING_WEIGHT", 0.4),
			WifiWeight:   getEnvFloat("SCORING_WIFI_WEIGHT", 0.2),
			NoiseWeight:  getEnvFloat("SCORING_NOISE_WEIGHT", 0.1),
			Offset:       getEnvFloat("SCORING_OFFSET", 2.5),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Database.MaxConns <= 0 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.Database.MinConns < 0 {
		return nil, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.Database.MinConns > cfg.Database.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.Server.RateLimitPerSecond < 0 || cfg.Server.RateLimitBurst < 0 {
		return nil, fmt.Errorf("rate limit settings must be non-negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
