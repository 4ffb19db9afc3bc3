// Package scheduler runs the periodic prediction job: it classifies a fixed
// set of locations on an interval and publishes the results.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// RiskQuerier classifies flood risk for a coordinate.
type RiskQuerier interface {
	CurrentRisk(ctx context.Context, lat, lon float64) (domain.RiskEvidence, error)
}

// Publisher writes prediction logs to the downstream sink.
type Publisher interface {
	PublishBatch(ctx context.Context, records []domain.PredictionLog) error
}

// JobConfig holds the tunable parameters of the prediction job.
type JobConfig struct {
	Locations   []domain.Coordinate
	Interval    time.Duration
	Concurrency int
	Clock       clockwork.Clock
}

// Job periodically queries risk for each configured location and publishes
// one prediction log per successful location. A failed location is logged
// and skipped; it never aborts the run or suppresses other locations.
type Job struct {
	querier     RiskQuerier
	publisher   Publisher
	locations   []domain.Coordinate
	interval    time.Duration
	concurrency int
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// NewJob creates a prediction Job with the given dependencies.
func NewJob(querier RiskQuerier, publisher Publisher, cfg JobConfig, logger *slog.Logger, metrics *observability.Metrics) *Job {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	return &Job{
		querier:     querier,
		publisher:   publisher,
		locations:   cfg.Locations,
		interval:    cfg.Interval,
		concurrency: cfg.Concurrency,
		clock:       cfg.Clock,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once the job has completed at least one run.
func (j *Job) CheckReadiness(_ context.Context) error {
	if !j.ready.Load() {
		return errors.New("prediction job has not completed a run yet")
	}
	return nil
}

// Run executes the prediction loop until the context is cancelled.
func (j *Job) Run(ctx context.Context) error {
	j.logger.Info("prediction job started",
		"locations", len(j.locations), "interval", j.interval)
	j.metrics.SchedulerRunning.Set(1)
	defer j.metrics.SchedulerRunning.Set(0)

	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("prediction job stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			j.runOnce(ctx)
		}
	}
}

// runOnce classifies every configured location and publishes the successes.
// Locations are queried concurrently up to the configured limit; results
// keep the configured location order.
func (j *Job) runOnce(ctx context.Context) {
	records := make([]domain.PredictionLog, len(j.locations))
	ok := make([]bool, len(j.locations))

	var g errgroup.Group
	g.SetLimit(j.concurrency)

	for i, loc := range j.locations {
		g.Go(func() error {
			evidence, err := j.querier.CurrentRisk(ctx, loc.Lat, loc.Lon)
			if err != nil {
				j.logger.Warn("prediction failed for location, skipping",
					"lat", loc.Lat, "lon", loc.Lon, "error", err)
				j.metrics.PredictionRunErrors.Inc()
				return nil
			}
			records[i] = domain.NewPredictionLog(loc, evidence)
			ok[i] = true
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	published := make([]domain.PredictionLog, 0, len(records))
	for i, record := range records {
		if ok[i] {
			published = append(published, record)
		}
	}

	if len(published) > 0 {
		if err := j.publisher.PublishBatch(ctx, published); err != nil {
			j.logger.Error("publish predictions failed", "error", err, "count", len(published))
			j.metrics.PredictionRunErrors.Inc()
			return
		}
		j.metrics.PredictionsLogged.Add(float64(len(published)))
	}

	j.ready.Store(true)
	j.logger.Info("prediction run complete",
		"published", len(published), "failed", len(j.locations)-len(published))
}
