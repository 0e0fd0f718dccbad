package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/health-surveillance-service/internal/domain"
	"github.com/couchcryptid/health-surveillance-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw report messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Analyzer scores and aggregates a batch of reports.
type Analyzer interface {
	Analyze(ctx context.Context, reports []domain.Report) domain.Analysis
}

// Loader writes an analysis to the destination.
type Loader interface {
	LoadAnalysis(ctx context.Context, analysis domain.Analysis) error
}

// Pipeline orchestrates the extract-analyze-load loop. Every extracted batch
// is analyzed as one independent request.
type Pipeline struct {
	extractor BatchExtractor
	analyzer  Analyzer
	loader    Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, a Analyzer, l Loader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		analyzer:  a,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has published an analysis,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any analysis yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := newRetryBackoff()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, retry) {
			return nil
		}
	}
}

// newRetryBackoff starts at 200ms and doubles up to 5s, retrying forever.
func newRetryBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// processBatch runs one extract-analyze-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, retry backoff.BackOff) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, retry)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	retry.Reset()

	loaded, ok := p.analyzeAndLoad(ctx, rawBatch, retry)
	if !ok {
		return false
	}

	if loaded {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// analyzeAndLoad decodes each message in the batch, analyzes the decoded
// reports together, loads the analysis, and commits offsets. A failed load is
// retried with backoff until it succeeds or ctx is done. Returns whether an
// analysis was loaded and false if the pipeline should stop.
func (p *Pipeline) analyzeAndLoad(ctx context.Context, rawBatch []domain.RawMessage, retry backoff.BackOff) (bool, bool) {
	reports := make([]domain.Report, 0, len(rawBatch))
	decoded := make([]domain.RawMessage, 0, len(rawBatch))

	for _, raw := range rawBatch {
		report, err := domain.ParseReport(raw.Value)
		if err != nil {
			p.logger.Warn("decode failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.DecodeErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		reports = append(reports, report)
		decoded = append(decoded, raw)
	}

	if len(reports) == 0 {
		return false, true
	}

	analysis := p.analyzer.Analyze(ctx, reports)

	// The batch stays in hand until it is published; fetching further
	// messages and committing them would skip past these offsets.
	load := func() error {
		return p.loader.LoadAnalysis(ctx, analysis)
	}
	notify := func(err error, wait time.Duration) {
		p.logger.Error("load analysis failed, retrying",
			"error", err,
			"analysis_id", analysis.ID,
			"reports", len(reports),
			"retry_in", wait,
		)
	}
	if err := backoff.RetryNotify(load, backoff.WithContext(retry, ctx), notify); err != nil {
		p.logger.Warn("load analysis abandoned, offsets left uncommitted",
			"error", err,
			"analysis_id", analysis.ID,
		)
		return false, false
	}

	p.metrics.AnalysesProduced.Inc()
	p.logger.Info("analysis published",
		"analysis_id", analysis.ID,
		"reports", analysis.TotalReports,
		"overall_risk", analysis.OverallRisk,
	)

	for _, raw := range decoded {
		p.commitOffset(ctx, raw)
	}

	return true, true
}

// backoffOrStop checks for context cancellation and sleeps for the next
// backoff interval. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, retry backoff.BackOff) bool {
	if ctx.Err() != nil {
		return false
	}
	return sleepWithContext(ctx, retry.NextBackOff())
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d == backoff.Stop {
		return false
	}
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
