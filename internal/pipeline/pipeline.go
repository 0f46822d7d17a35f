package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/P4za/alagAlert/internal/domain"
	"github.com/P4za/alagAlert/internal/observability"
	"github.com/P4za/alagAlert/internal/riskmap"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// SnapshotBuilder renders the collections to publish.
type SnapshotBuilder interface {
	BuildSnapshots(ctx context.Context, cities []riskmap.City) ([]domain.Snapshot, error)
}

// BatchLoader writes multiple snapshots to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, snapshots []domain.Snapshot) error
}

// Pipeline periodically builds snapshots and publishes them.
type Pipeline struct {
	builder  SnapshotBuilder
	loader   BatchLoader
	cities   []riskmap.City
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Pipeline that publishes snapshots for cities every interval.
func New(b SnapshotBuilder, l BatchLoader, cities []riskmap.City, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		builder:  b,
		loader:   l,
		cities:   cities,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a snapshot batch has been published, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any snapshots yet")
	}
	return nil
}

// Run executes the build-and-publish loop until the context is cancelled.
// Failed cycles are retried with exponential backoff; successful ones wait
// for the next interval.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval, "cities", len(p.cities))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if err := p.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.metrics.SnapshotErrors.Inc()
			p.logger.Error("snapshot cycle failed", "error", err, "retry_in", backoff)
			if !p.backoffOrStop(ctx, &backoff) {
				return nil
			}
			continue
		}

		backoff = initialBackoff
		if !sleepWithContext(ctx, p.clock, p.interval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// runCycle builds one batch of snapshots and loads it.
func (p *Pipeline) runCycle(ctx context.Context) error {
	start := p.clock.Now()

	snapshots, err := p.builder.BuildSnapshots(ctx, p.cities)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}

	if err := p.loader.LoadBatch(ctx, snapshots); err != nil {
		return err
	}

	p.metrics.SnapshotsPublished.Add(float64(len(snapshots)))
	p.metrics.SnapshotDuration.Observe(p.clock.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("snapshots published", "count", len(snapshots))
	return nil
}

// backoffOrStop sleeps with the current backoff and advances it. Returns false
// if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, p.clock, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// sleepWithContext is retry.SleepWithContext on an injectable clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
