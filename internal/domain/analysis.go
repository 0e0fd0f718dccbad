package domain

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is the combined result for one batch of reports, as returned by
// the HTTP API and published to the sink topic.
type Analysis struct {
	ID                string                     `json:"analysis_id"`
	AnalyzedAt        time.Time                  `json:"analyzed_at"`
	TotalReports      int                        `json:"total_reports"`
	OverallRisk       RiskLevel                  `json:"overall_risk"`
	PerReport         []ScoredReport             `json:"per_report"`
	LocationSummary   map[string]LocationSummary `json:"location_summary"`
	HighRiskLocations []string                   `json:"high_risk_locations"`
}

// Analyze scores and aggregates a batch of reports. Each call builds its own
// accumulators, so concurrent calls share no state.
func Analyze(reports []Report) Analysis {
	perReport, summaries := AggregateLocationPatterns(reports)
	return Analysis{
		ID:                uuid.NewString(),
		AnalyzedAt:        clock.Now().UTC(),
		TotalReports:      len(perReport),
		OverallRisk:       OverallRisk(perReport),
		PerReport:         perReport,
		LocationSummary:   summaries,
		HighRiskLocations: HighRiskLocations(summaries),
	}
}

// CountByRisk tallies the analysis' reports per risk tier.
func (a Analysis) CountByRisk() map[RiskLevel]int {
	counts := make(map[RiskLevel]int, 3)
	for _, r := range a.PerReport {
		counts[r.RiskLevel]++
	}
	return counts
}
