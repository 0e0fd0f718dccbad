package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreReport_SafeReport(t *testing.T) {
	tests := []struct {
		name   string
		report Report
	}{
		{"empty report", Report{}},
		{"within bounds", Report{
			PH:            Num(7.2),
			Turbidity:     Num(0.8),
			BacteriaCount: Num(0),
			Coliforms:     Num(0),
			HPC:           Num(500),
			Arsenic:       Num(0.01),
			Fluoride:      Num(1.5),
			Nitrate:       Num(45),
			Lead:          Num(0.01),
		}},
		{"pH at range edges", Report{PH: Num(6.5)}},
		{"turbidity exactly ideal", Report{Turbidity: Num(1.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreReport(tt.report)
			assert.Equal(t, 0, got.Score)
			assert.Equal(t, RiskLow, got.RiskLevel)
			assert.Empty(t, got.IssuesFound)
			assert.NotNil(t, got.IssuesFound)
			assert.Empty(t, got.LikelyDiseases)
			assert.NotNil(t, got.LikelyDiseases)
		})
	}
}

func TestScoreReport_DefaultsLocation(t *testing.T) {
	assert.Equal(t, UnknownLocation, ScoreReport(Report{}).Location)
	assert.Equal(t, "Village A", ScoreReport(Report{Location: "Village A"}).Location)
}

func TestScoreReport_Symptoms(t *testing.T) {
	tests := []struct {
		symptoms string
		expected int
	}{
		{"fever", 2},
		{"Diarrhea since monday", 3},
		{"vomit", 2},
		{"vomiting and nausea", 2},
		{"NAUSEA", 2},
		{"jaundice", 2},
		{"abdominal pain", 1},
		{"stomach pain and abdominal pain", 1},
		{"fever, diarrhea, vomiting, jaundice, stomach pain", 10},
		{"headache", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.symptoms, func(t *testing.T) {
			got := ScoreReport(Report{Symptoms: tt.symptoms})
			assert.Equal(t, tt.expected, got.Score)
			assert.Empty(t, got.IssuesFound, "symptoms alone never add issues")
			assert.Empty(t, got.LikelyDiseases, "symptoms alone never add diseases")
		})
	}
}

func TestScoreReport_WaterThresholds(t *testing.T) {
	tests := []struct {
		name     string
		report   Report
		score    int
		issues   []string
		diseases []string
	}{
		{"acidic pH", Report{PH: Num(5.9)}, 2, []string{IssueUnsafePH}, []string{DiseaseMetalLeaching}},
		{"alkaline pH", Report{PH: Num(9)}, 2, []string{IssueUnsafePH}, []string{DiseaseMetalLeaching}},
		{"very high turbidity", Report{Turbidity: Num(40)}, 4, []string{IssueVeryHighTurbidity}, []string{DiseasePathogensLikely}},
		{"high turbidity", Report{Turbidity: Num(12)}, 2, []string{IssueHighTurbidity}, []string{DiseasePathogensSurvive}},
		{"turbidity 30 is only high", Report{Turbidity: Num(30)}, 2, []string{IssueHighTurbidity}, []string{DiseasePathogensSurvive}},
		{"turbidity above ideal", Report{Turbidity: Num(3)}, 0, []string{IssueTurbidityAboveIdeal}, []string{}},
		{"turbidity 5 is above ideal", Report{Turbidity: Num(5)}, 0, []string{IssueTurbidityAboveIdeal}, []string{}},
		{"e. coli", Report{BacteriaCount: Num(1)}, 5, []string{IssueEColi}, []string{DiseaseDiarrhea, DiseaseCholera, DiseaseTyphoid}},
		{"coliforms", Report{Coliforms: Num(4)}, 3, []string{IssueColiforms}, []string{DiseaseGastroenteritis, DiseaseHepatitisA}},
		{"hpc", Report{HPC: Num(501)}, 2, []string{IssueHighHPC}, []string{DiseaseOpportunistic}},
		{"arsenic", Report{Arsenic: Num(0.05)}, 4, []string{IssueArsenic}, []string{DiseaseArsenicosis}},
		{"fluoride", Report{Fluoride: Num(2.1)}, 2, []string{IssueHighFluoride}, []string{DiseaseFluorosis}},
		{"nitrate", Report{Nitrate: Num(50)}, 3, []string{IssueHighNitrate}, []string{DiseaseMethemoglobinemia}},
		{"lead", Report{Lead: Num(0.02)}, 4, []string{IssueLead}, []string{DiseaseNeurotoxicity}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreReport(tt.report)
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.issues, got.IssuesFound)
			assert.Equal(t, tt.diseases, got.LikelyDiseases)
		})
	}
}

func TestScoreReport_TurbidityBranchesAreExclusive(t *testing.T) {
	got := ScoreReport(Report{Turbidity: Num(40)})

	assert.Equal(t, 4, got.Score)
	assert.Equal(t, []string{IssueVeryHighTurbidity}, got.IssuesFound)
	assert.NotContains(t, got.IssuesFound, IssueHighTurbidity)
	assert.NotContains(t, got.IssuesFound, IssueTurbidityAboveIdeal)
}

func TestScoreReport_DiarrheaCoupling(t *testing.T) {
	got := ScoreReport(Report{Symptoms: "severe diarrhea and fever", BacteriaCount: Num(5)})

	assert.Equal(t, 10, got.Score)
	assert.Equal(t, RiskHigh, got.RiskLevel)
	assert.Equal(t, []string{IssueEColi}, got.IssuesFound)
	assert.Equal(t, []string{DiseaseDiarrhea, DiseaseCholera, DiseaseTyphoid, DiseaseGastroenteritis}, got.LikelyDiseases)
}

func TestScoreReport_DiarrheaCouplingOnTurbidity(t *testing.T) {
	got := ScoreReport(Report{Symptoms: "diarrhea", Turbidity: Num(10)})

	assert.Equal(t, 5, got.Score)
	assert.Equal(t, RiskMedium, got.RiskLevel)
	assert.Equal(t, []string{DiseasePathogensSurvive, DiseaseCholera, DiseaseTyphoid, DiseaseGastroenteritis}, got.LikelyDiseases)
}

func TestScoreReport_DiarrheaWithoutContamination(t *testing.T) {
	got := ScoreReport(Report{Symptoms: "diarrhea", Turbidity: Num(3)})
	assert.Empty(t, got.LikelyDiseases)
}

func TestScoreReport_JaundiceCoupling(t *testing.T) {
	t.Run("coliforms already hint hepatitis", func(t *testing.T) {
		got := ScoreReport(Report{Symptoms: "Jaundice", Coliforms: Num(2)})
		assert.Equal(t, 5, got.Score)
		assert.Equal(t, []string{DiseaseGastroenteritis, DiseaseHepatitisA}, got.LikelyDiseases)
	})

	t.Run("e. coli adds hepatitis", func(t *testing.T) {
		got := ScoreReport(Report{Symptoms: "jaundice", BacteriaCount: Num(1)})
		assert.Equal(t, 7, got.Score)
		assert.Equal(t, []string{DiseaseDiarrhea, DiseaseCholera, DiseaseTyphoid, DiseaseHepatitisA}, got.LikelyDiseases)
	})

	t.Run("no fecal contamination", func(t *testing.T) {
		got := ScoreReport(Report{Symptoms: "jaundice", Turbidity: Num(40)})
		assert.NotContains(t, got.LikelyDiseases, DiseaseHepatitisA)
	})
}

func TestScoreReport_DiseasesAreUnique(t *testing.T) {
	got := ScoreReport(Report{
		Symptoms:      "diarrhea, jaundice, fever",
		PH:            Num(5),
		Turbidity:     Num(50),
		BacteriaCount: Num(10),
		Coliforms:     Num(10),
		HPC:           Num(900),
		Arsenic:       Num(1),
		Fluoride:      Num(3),
		Nitrate:       Num(90),
		Lead:          Num(1),
	})

	seen := map[string]bool{}
	for _, d := range got.LikelyDiseases {
		require.False(t, seen[d], "duplicate disease %q", d)
		seen[d] = true
	}
	assert.Len(t, got.IssuesFound, 9)
	assert.Equal(t, 2+3+2+2+4+5+3+2+4+2+3+4, got.Score)
}

func TestScoreReport_ScoreIsMonotonic(t *testing.T) {
	steps := []func(r *Report){
		func(r *Report) { r.Symptoms = "fever" },
		func(r *Report) { r.PH = Num(9.1) },
		func(r *Report) { r.Turbidity = Num(2) },
		func(r *Report) { r.BacteriaCount = Num(3) },
		func(r *Report) { r.Coliforms = Num(3) },
		func(r *Report) { r.HPC = Num(800) },
		func(r *Report) { r.Arsenic = Num(0.2) },
		func(r *Report) { r.Fluoride = Num(1.8) },
		func(r *Report) { r.Nitrate = Num(60) },
		func(r *Report) { r.Lead = Num(0.3) },
	}

	var r Report
	prev := ScoreReport(r).Score
	for i, step := range steps {
		step(&r)
		score := ScoreReport(r).Score
		assert.GreaterOrEqual(t, score, prev, "step %d lowered the score", i)
		prev = score
	}
}

func TestScoreReport_MalformedNumbersUseDefaults(t *testing.T) {
	got := ScoreReport(Report{
		PH:            Text("acidic"),
		Turbidity:     Text(""),
		BacteriaCount: Text("null"),
		Coliforms:     Measurement{raw: []byte("null")},
		HPC:           Measurement{raw: []byte(`{"value":900}`)},
		Lead:          Text(" 0.5 "),
	})

	assert.Equal(t, 4, got.Score)
	assert.Equal(t, []string{IssueLead}, got.IssuesFound)
}

func TestRiskLevelForScore(t *testing.T) {
	tests := []struct {
		score    int
		expected RiskLevel
	}{
		{0, RiskLow},
		{2, RiskLow},
		{3, RiskMedium},
		{5, RiskMedium},
		{6, RiskHigh},
		{30, RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RiskLevelForScore(tt.score), "score %d", tt.score)
	}
}

func TestScoreReport_OverflowingMeasurementExceedsLimit(t *testing.T) {
	got := ScoreReport(Report{Lead: Text("1e400")})

	assert.Equal(t, 4, got.Score)
	assert.Equal(t, []string{IssueLead}, got.IssuesFound)
	assert.Equal(t, []string{DiseaseNeurotoxicity}, got.LikelyDiseases)
}

func TestSymptomKeysAreTallied(t *testing.T) {
	_, summaries := AggregateLocationPatterns([]Report{
		{Location: testVillageA, Symptoms: "Jaundice, nausea and abdominal pain"},
	})

	require.Contains(t, summaries, testVillageA)
	assert.Equal(t, map[string]int{"jaundice": 1, "nausea": 1, "abdominal pain": 1},
		summaries[testVillageA].SymptomTrends)
}
