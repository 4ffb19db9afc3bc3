// Package service implements the flood risk query operations on top of a
// weather source.
package service

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/flood-risk-service/internal/apperr"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// WeatherSource provides hourly forecast series for coordinates.
type WeatherSource interface {
	FetchOne(ctx context.Context, coord domain.Coordinate) (domain.HourlySeries, error)
	FetchBatch(ctx context.Context, coords []domain.Coordinate) ([]domain.HourlySeries, error)
}

// Options tune the risk computations. Zero values fall back to defaults.
type Options struct {
	WindowHours   int
	HorizonDays   int
	GridStep      float64
	NormalizeGrid bool
	NullPolicy    domain.NullPolicy
}

func (o Options) withDefaults() Options {
	if o.WindowHours <= 0 {
		o.WindowHours = 24
	}
	if o.HorizonDays <= 0 {
		o.HorizonDays = 3
	}
	if o.GridStep <= 0 {
		o.GridStep = domain.DefaultGridStep
	}
	return o
}

// RiskService answers flood risk queries. Coordinate validation happens
// before any upstream call; a query either succeeds completely or fails with
// a coded error.
type RiskService struct {
	source  WeatherSource
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a RiskService backed by the given weather source.
func New(source WeatherSource, opts Options, logger *slog.Logger, metrics *observability.Metrics) *RiskService {
	return &RiskService{
		source:  source,
		opts:    opts.withDefaults(),
		logger:  logger,
		metrics: metrics,
	}
}

// CurrentRisk classifies the flood risk at a single coordinate from the
// trailing 24 hours of the forecast series.
func (s *RiskService) CurrentRisk(ctx context.Context, lat, lon float64) (domain.RiskEvidence, error) {
	coord, err := s.coordinate(lat, lon)
	if err != nil {
		s.observe("current", err)
		return domain.RiskEvidence{}, err
	}

	series, err := s.source.FetchOne(ctx, coord)
	if err != nil {
		s.observe("current", err)
		return domain.RiskEvidence{}, err
	}

	evidence, err := domain.Classify(series, s.opts.WindowHours, s.opts.NullPolicy)
	s.observe("current", err)
	return evidence, err
}

// ForecastRisk computes per-day risk buckets over the configured horizon.
func (s *RiskService) ForecastRisk(ctx context.Context, lat, lon float64) ([]domain.ForecastDay, error) {
	coord, err := s.coordinate(lat, lon)
	if err != nil {
		s.observe("forecast", err)
		return nil, err
	}

	series, err := s.source.FetchOne(ctx, coord)
	if err != nil {
		s.observe("forecast", err)
		return nil, err
	}

	days, err := domain.BuildForecast(series, s.opts.HorizonDays, s.opts.NullPolicy)
	s.observe("forecast", err)
	return days, err
}

// AreaRisk classifies every cell of the 3x3 grid centered on the coordinate.
// Any cell failure fails the whole query; partial grids are never returned.
func (s *RiskService) AreaRisk(ctx context.Context, lat, lon float64) ([]domain.GridCell, error) {
	center, err := s.coordinate(lat, lon)
	if err != nil {
		s.observe("area", err)
		return nil, err
	}

	grid := domain.BuildGrid(center, s.opts.GridStep)
	if s.opts.NormalizeGrid {
		grid = domain.NormalizeGrid(grid)
	}

	series, err := s.source.FetchBatch(ctx, grid)
	if err != nil {
		s.observe("area", err)
		return nil, err
	}

	cells := make([]domain.GridCell, len(grid))
	for i, coord := range grid {
		evidence, err := domain.Classify(series[i], s.opts.WindowHours, s.opts.NullPolicy)
		if err != nil {
			s.observe("area", err)
			return nil, err
		}
		cells[i] = domain.GridCell{
			Lat:          coord.Lat,
			Lon:          coord.Lon,
			RiskLevel:    evidence.Risk,
			Rainfall24h:  evidence.Rainfall24h,
			SoilMoisture: evidence.SoilMoisture,
		}
	}

	s.observe("area", nil)
	return cells, nil
}

// coordinate validates latitude and longitude ranges. The negated comparison
// form rejects NaN as well as out-of-range values.
func (s *RiskService) coordinate(lat, lon float64) (domain.Coordinate, error) {
	if !(lat >= -90 && lat <= 90) {
		return domain.Coordinate{}, apperr.Newf(apperr.CodeInvalidArgument, "latitude %v out of range [-90, 90]", lat)
	}
	if !(lon >= -180 && lon <= 180) {
		return domain.Coordinate{}, apperr.Newf(apperr.CodeInvalidArgument, "longitude %v out of range [-180, 180]", lon)
	}
	return domain.Coordinate{Lat: lat, Lon: lon}, nil
}

func (s *RiskService) observe(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(apperr.CodeOf(err))
		s.logger.Warn("risk query failed", "op", op, "error", err)
	}
	s.metrics.RiskQueries.WithLabelValues(op, outcome).Inc()
}
