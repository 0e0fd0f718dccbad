package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 2, 6, 0, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() {
		SetClock(nil)
	})

	reports := []Report{
		highRiskReport(testVillageA),
		{Location: testVillageA, Symptoms: "fever"},
		{Location: testVillageB, Arsenic: Num(0.05)},
	}

	a := Analyze(reports)

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.Equal(t, fakeClock.Now(), a.AnalyzedAt)
	assert.Equal(t, 3, a.TotalReports)
	assert.Equal(t, RiskHigh, a.OverallRisk)
	assert.Len(t, a.PerReport, 3)
	assert.Len(t, a.LocationSummary, 2)
	assert.Equal(t, []string{testVillageA, testVillageB}, a.HighRiskLocations)
	assert.Equal(t, map[RiskLevel]int{RiskHigh: 1, RiskLow: 1, RiskMedium: 1}, a.CountByRisk())
}

func TestAnalyze_NoReports(t *testing.T) {
	a := Analyze([]Report{})

	assert.Equal(t, 0, a.TotalReports)
	assert.Equal(t, RiskNoData, a.OverallRisk)
	assert.Contains(t, a.LocationSummary, UnknownLocation)

	out, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "No Data", decoded["overall_risk"])
	assert.Equal(t, []any{}, decoded["per_report"])
	assert.Equal(t, []any{}, decoded["high_risk_locations"])
	assert.Equal(t, map[string]any{
		UnknownLocation: map[string]any{
			"symptom_trends":      map[string]any{},
			"risk_counts":         map[string]any{},
			"top_issues":          []any{},
			"likely_diseases_top": []any{},
		},
	}, decoded["location_summary"])
}

func TestAnalyze_JSONRoundTrip(t *testing.T) {
	a := Analyze([]Report{highRiskReport(testVillageA)})

	out, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded Analysis
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, a.ID, decoded.ID)
	assert.Equal(t, a.OverallRisk, decoded.OverallRisk)
	require.Len(t, decoded.PerReport, 1)
	assert.Equal(t, a.PerReport[0].Score, decoded.PerReport[0].Score)
	assert.Equal(t, a.LocationSummary, decoded.LocationSummary)
}
