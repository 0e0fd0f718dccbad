package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/health-surveillance-service/internal/domain"
	"github.com/couchcryptid/health-surveillance-service/internal/observability"
)

// ReportAnalyzer implements Analyzer using the domain scoring and aggregation
// functions, recording analysis metrics for every batch.
type ReportAnalyzer struct {
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAnalyzer creates a ReportAnalyzer.
func NewAnalyzer(metrics *observability.Metrics, logger *slog.Logger) *ReportAnalyzer {
	return &ReportAnalyzer{
		metrics: metrics,
		logger:  logger,
	}
}

func (a *ReportAnalyzer) Analyze(ctx context.Context, reports []domain.Report) domain.Analysis {
	start := time.Now()
	analysis := domain.Analyze(reports)
	a.metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())

	a.metrics.AnalysesTotal.Inc()
	for level, n := range analysis.CountByRisk() {
		a.metrics.ReportsAnalyzed.WithLabelValues(string(level)).Add(float64(n))
	}
	a.metrics.OverallRisk.WithLabelValues(string(analysis.OverallRisk)).Inc()
	a.metrics.HighRiskLocations.Add(float64(len(analysis.HighRiskLocations)))

	a.logger.DebugContext(ctx, "reports analyzed",
		"analysis_id", analysis.ID,
		"reports", analysis.TotalReports,
		"overall_risk", analysis.OverallRisk,
		"high_risk_locations", analysis.HighRiskLocations,
	)
	return analysis
}
