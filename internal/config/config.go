package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Open-Meteo client configuration.
	OpenMeteoBaseURL string        `envconfig:"OPENMETEO_BASE_URL" default:"https://api.open-meteo.com/v1/forecast"`
	OpenMeteoTimeout time.Duration `envconfig:"OPENMETEO_TIMEOUT" default:"10s"`

	// Risk model configuration.
	ForecastDays    int     `envconfig:"FORECAST_DAYS" default:"3"`
	RiskWindowHours int     `envconfig:"RISK_WINDOW_HOURS" default:"24"`
	GridStep        float64 `envconfig:"GRID_STEP" default:"0.05"`
	GridNormalize   bool    `envconfig:"GRID_NORMALIZE" default:"false"`
	NullPolicy      string  `envconfig:"NULL_POLICY" default:"skip"`

	// Scheduled prediction job configuration.
	PredictionsEnabled    bool          `envconfig:"PREDICTIONS_ENABLED" default:"false"`
	PredictionInterval    time.Duration `envconfig:"PREDICTION_INTERVAL" default:"30m"`
	PredictionLocations   string        `envconfig:"PREDICTION_LOCATIONS"`
	PredictionConcurrency int           `envconfig:"PREDICTION_CONCURRENCY" default:"3"`
	KafkaBrokers          []string      `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaPredictionTopic  string        `envconfig:"KAFKA_PREDICTION_TOPIC" default:"flood-risk-predictions"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present
// (local development convenience; absent in containers).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.OpenMeteoBaseURL == "" {
		return fmt.Errorf("OPENMETEO_BASE_URL is required")
	}
	if c.OpenMeteoTimeout <= 0 {
		return fmt.Errorf("OPENMETEO_TIMEOUT must be positive")
	}
	if c.ForecastDays < 1 || c.ForecastDays > 16 {
		return fmt.Errorf("FORECAST_DAYS must be between 1 and 16, got %d", c.ForecastDays)
	}
	if c.RiskWindowHours < 1 {
		return fmt.Errorf("RISK_WINDOW_HOURS must be positive, got %d", c.RiskWindowHours)
	}
	if c.GridStep <= 0 {
		return fmt.Errorf("GRID_STEP must be positive, got %g", c.GridStep)
	}
	if _, err := domain.ParseNullPolicy(c.NullPolicy); err != nil {
		return fmt.Errorf("NULL_POLICY: %w", err)
	}

	if c.PredictionsEnabled {
		if c.PredictionInterval <= 0 {
			return fmt.Errorf("PREDICTION_INTERVAL must be positive")
		}
		if c.PredictionConcurrency < 1 {
			return fmt.Errorf("PREDICTION_CONCURRENCY must be positive, got %d", c.PredictionConcurrency)
		}
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when predictions are enabled")
		}
		if c.KafkaPredictionTopic == "" {
			return fmt.Errorf("KAFKA_PREDICTION_TOPIC is required when predictions are enabled")
		}
		if _, err := c.Locations(); err != nil {
			return err
		}
	}

	return nil
}

// Policy returns the parsed null policy. Call after Load has validated it.
func (c *Config) Policy() domain.NullPolicy {
	policy, err := domain.ParseNullPolicy(c.NullPolicy)
	if err != nil {
		return domain.NullSkip
	}
	return policy
}

// Locations parses PREDICTION_LOCATIONS, a semicolon-separated list of
// "lat,lon" pairs, e.g. "31.5,74.3;24.91,67.08".
func (c *Config) Locations() ([]domain.Coordinate, error) {
	raw := strings.TrimSpace(c.PredictionLocations)
	if raw == "" {
		if c.PredictionsEnabled {
			return nil, fmt.Errorf("PREDICTION_LOCATIONS is required when predictions are enabled")
		}
		return nil, nil
	}

	pairs := strings.Split(raw, ";")
	coords := make([]domain.Coordinate, 0, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		latStr, lonStr, found := strings.Cut(pair, ",")
		if !found {
			return nil, fmt.Errorf("PREDICTION_LOCATIONS entry %q is not a lat,lon pair", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("PREDICTION_LOCATIONS entry %q: invalid latitude: %w", pair, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("PREDICTION_LOCATIONS entry %q: invalid longitude: %w", pair, err)
		}
		coords = append(coords, domain.Coordinate{Lat: lat, Lon: lon})
	}

	if len(coords) == 0 {
		return nil, fmt.Errorf("PREDICTION_LOCATIONS contains no valid entries")
	}
	return coords, nil
}
