package domain

import (
	"sort"
	"strings"
)

// OverallRisk derives the batch verdict from scored reports. High wins when
// at least 33% of reports are High, otherwise Medium when at least 33% are
// Medium, otherwise Low. Both shares use the full report count, so a single
// High report among three already yields High.
func OverallRisk(perReport []ScoredReport) RiskLevel {
	if len(perReport) == 0 {
		return RiskNoData
	}

	counts := make(map[RiskLevel]int, 3)
	for _, r := range perReport {
		counts[r.RiskLevel]++
	}

	total := float64(len(perReport))
	if float64(counts[RiskHigh])/total >= overallShare {
		return RiskHigh
	}
	if float64(counts[RiskMedium])/total >= overallShare {
		return RiskMedium
	}
	return RiskLow
}

// HighRiskLocations returns the sorted locations that had at least two High
// reports or list a severe issue among their top issues.
func HighRiskLocations(summaries map[string]LocationSummary) []string {
	flagged := make([]string, 0)
	for loc, s := range summaries {
		if s.RiskCounts[RiskHigh] >= highRiskReports || hasSevereIssue(s.TopIssues) {
			flagged = append(flagged, loc)
		}
	}
	sort.Strings(flagged)
	return flagged
}

func hasSevereIssue(issues []string) bool {
	for _, issue := range issues {
		for _, severe := range severeIssues {
			if strings.EqualFold(issue, severe) {
				return true
			}
		}
	}
	return false
}
