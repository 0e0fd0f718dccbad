package domain

import (
	"sort"
	"strings"
)

// LocationSummary holds the aggregated trends of all reports sharing a location.
type LocationSummary struct {
	SymptomTrends     map[string]int    `json:"symptom_trends"`
	RiskCounts        map[RiskLevel]int `json:"risk_counts"`
	TopIssues         []string          `json:"top_issues"`
	LikelyDiseasesTop []string          `json:"likely_diseases_top"`
}

// counter counts string occurrences and remembers the order in which keys
// were first seen, so rankings are stable.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// mostCommon returns up to n keys by descending count. Keys with equal counts
// keep first-seen order.
func (c *counter) mostCommon(n int) []string {
	keys := append([]string(nil), c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return nonNil(keys)
}

func (c *counter) snapshot() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// locationTally accumulates one location's counters.
type locationTally struct {
	symptoms *counter
	risks    *counter
	issues   *counter
	diseases *counter
}

func newLocationTally() *locationTally {
	return &locationTally{
		symptoms: newCounter(),
		risks:    newCounter(),
		issues:   newCounter(),
		diseases: newCounter(),
	}
}

func (t *locationTally) summary() LocationSummary {
	risks := make(map[RiskLevel]int, len(t.risks.counts))
	for k, v := range t.risks.counts {
		risks[RiskLevel(k)] = v
	}
	return LocationSummary{
		SymptomTrends:     t.symptoms.snapshot(),
		RiskCounts:        risks,
		TopIssues:         t.issues.mostCommon(topN),
		LikelyDiseasesTop: t.diseases.mostCommon(topN),
	}
}

// AggregateLocationPatterns scores every report and folds the results into
// per-location summaries. Symptom keywords count once per report in which
// they appear. With no reports the summary holds a single empty
// UnknownLocation entry.
func AggregateLocationPatterns(reports []Report) ([]ScoredReport, map[string]LocationSummary) {
	tallies := make(map[string]*locationTally)
	tally := func(loc string) *locationTally {
		t, ok := tallies[loc]
		if !ok {
			t = newLocationTally()
			tallies[loc] = t
		}
		return t
	}

	perReport := make([]ScoredReport, 0, len(reports))
	for _, r := range reports {
		t := tally(r.Place())

		text := r.SymptomText()
		for _, key := range symptomKeys {
			if strings.Contains(text, key) {
				t.symptoms.add(key)
			}
		}

		scored := ScoreReport(r)
		perReport = append(perReport, scored)

		for _, d := range scored.LikelyDiseases {
			t.diseases.add(d)
		}
		t.risks.add(string(scored.RiskLevel))
		for _, issue := range scored.IssuesFound {
			t.issues.add(issue)
		}
	}

	if len(tallies) == 0 {
		tally(UnknownLocation)
	}

	summaries := make(map[string]LocationSummary, len(tallies))
	for loc, t := range tallies {
		summaries[loc] = t.summary()
	}
	return perReport, summaries
}
