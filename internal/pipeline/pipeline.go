package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/trackota-etl/internal/analysis"
	"github.com/couchcryptid/trackota-etl/internal/observability"
)

// FolderExtractor lists the dataset folders to report on.
type FolderExtractor interface {
	Folders(ctx context.Context) []string
}

// Transformer builds the report of one dataset folder.
type Transformer interface {
	Transform(ctx context.Context, folder string) (analysis.Report, error)
}

// BatchLoader writes multiple reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []analysis.Report) error
}

// Options tunes the publish loop. Zero values fall back to defaults.
type Options struct {
	BatchSize   int
	Concurrency int
	// Interval between scans. Zero runs a single pass.
	Interval time.Duration
	Clock    clockwork.Clock
}

const (
	defaultBatchSize   = 50
	defaultConcurrency = 4

	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline orchestrates the scan-build-publish loop.
type Pipeline struct {
	extractor   FolderExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	opts        Options
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e FolderExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
	}
}

// CheckReadiness returns nil once the pipeline has completed a publish cycle,
// or an error describing why the publisher is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("publisher has not completed a cycle yet")
	}
	return nil
}

// Run publishes reports until the context is cancelled, or once when the
// interval is zero.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("publisher started",
		"batch_size", p.opts.BatchSize,
		"concurrency", p.opts.Concurrency,
		"interval", p.opts.Interval,
	)
	p.metrics.PublisherRunning.Set(1)
	defer p.metrics.PublisherRunning.Set(0)

	if p.opts.Interval <= 0 {
		p.runCycle(ctx)
		return nil
	}

	ticker := p.opts.Clock.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		if !p.runCycle(ctx) {
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			return nil
		}
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// runCycle scans, builds and publishes every folder once. Returns false if
// the pipeline should stop.
func (p *Pipeline) runCycle(ctx context.Context) bool {
	start := p.opts.Clock.Now()

	folders := p.extractor.Folders(ctx)
	p.metrics.DatasetsScanned.Add(float64(len(folders)))
	if ctx.Err() != nil {
		return false
	}

	reports, ok := p.transformAll(ctx, folders)
	if !ok {
		return false
	}

	for _, batch := range lo.Chunk(reports, p.opts.BatchSize) {
		if !p.loadWithRetry(ctx, batch) {
			return false
		}
	}

	p.metrics.PublishCycleDuration.Observe(p.opts.Clock.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("publish cycle complete", "folders", len(folders), "reports", len(reports))
	return true
}

// transformAll builds reports in parallel, keeping folder order. Folders that
// fail are logged and skipped.
func (p *Pipeline) transformAll(ctx context.Context, folders []string) ([]analysis.Report, bool) {
	built := make([]*analysis.Report, len(folders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, folder := range folders {
		g.Go(func() error {
			report, err := p.transformer.Transform(gctx, folder)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("transform failed, skipping folder", "folder", folder, "error", err)
				p.metrics.ReportErrors.Inc()
				return nil
			}
			built[i] = &report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false
	}

	reports := make([]analysis.Report, 0, len(built))
	for _, r := range built {
		if r != nil {
			reports = append(reports, *r)
		}
	}
	return reports, true
}

// loadWithRetry writes one batch, backing off until it succeeds or the
// context ends.
func (p *Pipeline) loadWithRetry(ctx context.Context, batch []analysis.Report) bool {
	backoff := initialBackoff
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.ReportsPublished.Add(float64(len(batch)))
			p.metrics.PublishBatchSize.Observe(float64(len(batch)))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch))
		if !sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
