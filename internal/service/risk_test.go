package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-service/internal/apperr"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

func ptr(v float64) *float64 { return &v }

func flat(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = ptr(v)
	}
	return out
}

// fakeSource returns canned series and records every fetch.
type fakeSource struct {
	series      domain.HourlySeries
	batchSeries []domain.HourlySeries
	err         error

	oneCalls   int
	batchCalls int
	lastCoords []domain.Coordinate
}

func (f *fakeSource) FetchOne(_ context.Context, coord domain.Coordinate) (domain.HourlySeries, error) {
	f.oneCalls++
	f.lastCoords = []domain.Coordinate{coord}
	return f.series, f.err
}

func (f *fakeSource) FetchBatch(_ context.Context, coords []domain.Coordinate) ([]domain.HourlySeries, error) {
	f.batchCalls++
	f.lastCoords = coords
	if f.err != nil {
		return nil, f.err
	}
	return f.batchSeries, nil
}

func newTestService(source WeatherSource, opts Options) *RiskService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(source, opts, logger, observability.NewMetricsForTesting())
}

func TestCurrentRisk(t *testing.T) {
	t.Run("classifies the fetched series", func(t *testing.T) {
		source := &fakeSource{series: domain.HourlySeries{
			Rain:         flat(24, 2.0),
			SoilMoisture: flat(24, 0.4),
		}}
		svc := newTestService(source, Options{})

		evidence, err := svc.CurrentRisk(context.Background(), 31.5, 74.3)

		require.NoError(t, err)
		assert.Equal(t, domain.RiskMedium, evidence.Risk)
		assert.Equal(t, 48.0, evidence.Rainfall24h)
		assert.Equal(t, 0.4, evidence.SoilMoisture)
		assert.Equal(t, 1, source.oneCalls)
		assert.Equal(t, domain.Coordinate{Lat: 31.5, Lon: 74.3}, source.lastCoords[0])
	})

	t.Run("invalid coordinates rejected before any fetch", func(t *testing.T) {
		tests := []struct {
			name     string
			lat, lon float64
		}{
			{"latitude too large", 91, 0},
			{"latitude too small", -90.01, 0},
			{"longitude too large", 0, 180.5},
			{"longitude too small", 0, -181},
			{"latitude NaN", math.NaN(), 0},
			{"longitude NaN", 0, math.NaN()},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				source := &fakeSource{}
				svc := newTestService(source, Options{})

				_, err := svc.CurrentRisk(context.Background(), tt.lat, tt.lon)

				require.Error(t, err)
				assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
				assert.Equal(t, 0, source.oneCalls)
			})
		}
	})

	t.Run("boundary coordinates are accepted", func(t *testing.T) {
		source := &fakeSource{series: domain.HourlySeries{Rain: flat(24, 0)}}
		svc := newTestService(source, Options{})

		_, err := svc.CurrentRisk(context.Background(), 90, -180)

		require.NoError(t, err)
		assert.Equal(t, 1, source.oneCalls)
	})

	t.Run("source failure propagates", func(t *testing.T) {
		source := &fakeSource{err: apperr.New(apperr.CodeUpstreamUnavailable, "status 503")}
		svc := newTestService(source, Options{})

		_, err := svc.CurrentRisk(context.Background(), 31.5, 74.3)

		require.Error(t, err)
		assert.Equal(t, apperr.CodeUpstreamUnavailable, apperr.CodeOf(err))
	})
}

func TestForecastRisk(t *testing.T) {
	t.Run("buckets the fetched series", func(t *testing.T) {
		source := &fakeSource{series: domain.HourlySeries{
			Time:     hourlyLabels(48),
			Rain:     flat(48, 2.0),
			Humidity: flat(48, 40),
		}}
		svc := newTestService(source, Options{})

		forecast, err := svc.ForecastRisk(context.Background(), 31.5, 74.3)

		require.NoError(t, err)
		require.Len(t, forecast, 2)
		assert.Equal(t, 48.0, forecast[0].Rainfall)
		assert.Equal(t, domain.RiskMedium, forecast[0].Risk)
		assert.Equal(t, 0.40, forecast[0].SoilMoisture)
	})

	t.Run("invalid coordinates rejected before any fetch", func(t *testing.T) {
		source := &fakeSource{}
		svc := newTestService(source, Options{})

		_, err := svc.ForecastRisk(context.Background(), 200, 0)

		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
		assert.Equal(t, 0, source.oneCalls)
	})
}

func TestAreaRisk(t *testing.T) {
	calmDay := domain.HourlySeries{Rain: flat(24, 0)}
	wetDay := domain.HourlySeries{Rain: flat(24, 2.0)}

	t.Run("classifies all nine cells in grid order", func(t *testing.T) {
		batch := []domain.HourlySeries{
			calmDay, calmDay, calmDay,
			calmDay, wetDay, calmDay,
			calmDay, calmDay, calmDay,
		}
		source := &fakeSource{batchSeries: batch}
		svc := newTestService(source, Options{})

		cells, err := svc.AreaRisk(context.Background(), 31.5, 74.3)

		require.NoError(t, err)
		require.Len(t, cells, 9)
		assert.Equal(t, 1, source.batchCalls)
		require.Len(t, source.lastCoords, 9)

		// Center cell carries the wet series; its coordinates are the query
		// point itself.
		assert.Equal(t, 31.5, cells[4].Lat)
		assert.Equal(t, 74.3, cells[4].Lon)
		assert.Equal(t, domain.RiskMedium, cells[4].RiskLevel)
		assert.Equal(t, 48.0, cells[4].Rainfall24h)

		for i, cell := range cells {
			if i == 4 {
				continue
			}
			assert.Equal(t, domain.RiskLow, cell.RiskLevel)
		}
	})

	t.Run("invalid coordinates rejected before any fetch", func(t *testing.T) {
		source := &fakeSource{}
		svc := newTestService(source, Options{})

		_, err := svc.AreaRisk(context.Background(), 0, 999)

		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
		assert.Equal(t, 0, source.batchCalls)
	})

	t.Run("batch failure returns no partial grid", func(t *testing.T) {
		source := &fakeSource{err: apperr.New(apperr.CodeUpstreamUnavailable, "status 502")}
		svc := newTestService(source, Options{})

		cells, err := svc.AreaRisk(context.Background(), 31.5, 74.3)

		require.Error(t, err)
		assert.Nil(t, cells)
	})

	t.Run("one malformed cell fails the whole query", func(t *testing.T) {
		batch := []domain.HourlySeries{
			calmDay, calmDay, calmDay,
			calmDay, {Humidity: flat(24, 50)}, calmDay,
			calmDay, calmDay, calmDay,
		}
		source := &fakeSource{batchSeries: batch}
		svc := newTestService(source, Options{})

		cells, err := svc.AreaRisk(context.Background(), 31.5, 74.3)

		require.Error(t, err)
		assert.Nil(t, cells)
		assert.Equal(t, apperr.CodeMalformedSeries, apperr.CodeOf(err))
	})

	t.Run("normalization applies when enabled", func(t *testing.T) {
		batch := make([]domain.HourlySeries, 9)
		for i := range batch {
			batch[i] = calmDay
		}
		source := &fakeSource{batchSeries: batch}
		svc := newTestService(source, Options{NormalizeGrid: true})

		cells, err := svc.AreaRisk(context.Background(), 89.99, 0)

		require.NoError(t, err)
		for _, cell := range cells {
			assert.LessOrEqual(t, cell.Lat, 90.0)
		}
	})
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, 24, opts.WindowHours)
	assert.Equal(t, 3, opts.HorizonDays)
	assert.Equal(t, domain.DefaultGridStep, opts.GridStep)
}

// hourlyLabels builds ISO-8601 hour labels for n hours starting July 1.
func hourlyLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("2024-07-%02dT%02d:00", 1+i/24, i%24)
	}
	return labels
}
