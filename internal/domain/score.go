package domain

import (
	"encoding/json"
	"slices"
	"strings"
)

// ScoredReport is a Report together with the scorer's verdict. Location is
// the defaulted label and takes precedence over the submitted one.
type ScoredReport struct {
	Report

	Location       string    `json:"location"`
	Score          int       `json:"score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	IssuesFound    []string  `json:"issues_found"`
	LikelyDiseases []string  `json:"likely_diseases"`
}

// MarshalJSON emits the submitted report fields overlaid with the scored fields.
func (s ScoredReport) MarshalJSON() ([]byte, error) {
	out := s.Report.fields()
	out[keyLocation] = s.Location
	out["score"] = s.Score
	out["risk_level"] = s.RiskLevel
	out["issues_found"] = nonNil(s.IssuesFound)
	out["likely_diseases"] = nonNil(s.LikelyDiseases)
	return json.Marshal(out)
}

// UnmarshalJSON restores a ScoredReport from its MarshalJSON form.
func (s *ScoredReport) UnmarshalJSON(data []byte) error {
	var derived struct {
		Location       string    `json:"location"`
		Score          int       `json:"score"`
		RiskLevel      RiskLevel `json:"risk_level"`
		IssuesFound    []string  `json:"issues_found"`
		LikelyDiseases []string  `json:"likely_diseases"`
	}
	if err := json.Unmarshal(data, &derived); err != nil {
		return err
	}

	var report Report
	if err := report.UnmarshalJSON(data); err != nil {
		return err
	}
	for _, key := range []string{"score", "risk_level", "issues_found", "likely_diseases"} {
		delete(report.Extra, key)
	}
	if len(report.Extra) == 0 {
		report.Extra = nil
	}

	*s = ScoredReport{
		Report:         report,
		Location:       derived.Location,
		Score:          derived.Score,
		RiskLevel:      derived.RiskLevel,
		IssuesFound:    derived.IssuesFound,
		LikelyDiseases: derived.LikelyDiseases,
	}
	return nil
}

// waterSample is a report's measurements with defaults applied.
type waterSample struct {
	pH        float64
	turbidity float64
	ecoli     float64
	coliforms float64
	hpc       float64
	arsenic   float64
	fluoride  float64
	nitrate   float64
	lead      float64
}

func sampleOf(r Report) waterSample {
	return waterSample{
		pH:        r.PH.Float(DefaultPH),
		turbidity: r.Turbidity.Float(0),
		ecoli:     r.BacteriaCount.Float(0),
		coliforms: r.Coliforms.Float(0),
		hpc:       r.HPC.Float(0),
		arsenic:   r.Arsenic.Float(0),
		fluoride:  r.Fluoride.Float(0),
		nitrate:   r.Nitrate.Float(0),
		lead:      r.Lead.Float(0),
	}
}

// finding accumulates score, issues and disease hints while a report is scored.
type finding struct {
	score    int
	issues   []string
	diseases []string
}

func (f *finding) flag(weight int, issue string, diseases ...string) {
	f.score += weight
	f.issues = append(f.issues, issue)
	f.diseases = append(f.diseases, diseases...)
}

// ensure appends each disease not already hinted.
func (f *finding) ensure(diseases ...string) {
	for _, d := range diseases {
		if !slices.Contains(f.diseases, d) {
			f.diseases = append(f.diseases, d)
		}
	}
}

// ScoreReport scores one report. Every rule fires at most once and rules are
// evaluated in a fixed order, which also fixes the order of IssuesFound and
// LikelyDiseases. Malformed input never fails; it degrades to defaults.
func ScoreReport(r Report) ScoredReport {
	text := r.SymptomText()
	w := sampleOf(r)

	var f finding
	for _, rule := range symptomRules {
		if containsAny(text, rule.keywords) {
			f.score += rule.weight
		}
	}

	if w.pH < PHMin || w.pH > PHMax {
		f.flag(2, IssueUnsafePH, DiseaseMetalLeaching)
	}

	switch {
	case w.turbidity > TurbidityVeryHigh:
		f.flag(4, IssueVeryHighTurbidity, DiseasePathogensLikely)
	case w.turbidity > TurbidityMax:
		f.flag(2, IssueHighTurbidity, DiseasePathogensSurvive)
	case w.turbidity > TurbidityIdeal:
		f.flag(0, IssueTurbidityAboveIdeal)
	}

	if w.ecoli > EColiSafe {
		f.flag(5, IssueEColi, DiseaseDiarrhea, DiseaseCholera, DiseaseTyphoid)
	}
	if w.coliforms > ColiformSafe {
		f.flag(3, IssueColiforms, DiseaseGastroenteritis, DiseaseHepatitisA)
	}
	if w.hpc > HPCMax {
		f.flag(2, IssueHighHPC, DiseaseOpportunistic)
	}
	if w.arsenic > ArsenicMax {
		f.flag(4, IssueArsenic, DiseaseArsenicosis)
	}
	if w.fluoride > FluorideMax {
		f.flag(2, IssueHighFluoride, DiseaseFluorosis)
	}
	if w.nitrate > NitrateMax {
		f.flag(3, IssueHighNitrate, DiseaseMethemoglobinemia)
	}
	if w.lead > LeadMax {
		f.flag(4, IssueLead, DiseaseNeurotoxicity)
	}

	// Symptoms backed by contaminated water strengthen the waterborne hints.
	fecal := w.ecoli > EColiSafe || w.coliforms > ColiformSafe
	if strings.Contains(text, "diarrhea") && (fecal || w.turbidity > TurbidityMax) {
		f.ensure(DiseaseCholera, DiseaseTyphoid, DiseaseGastroenteritis)
	}
	if strings.Contains(text, "jaundice") && fecal {
		f.ensure(DiseaseHepatitisA)
	}

	return ScoredReport{
		Report:         r,
		Location:       r.Place(),
		Score:          f.score,
		RiskLevel:      RiskLevelForScore(f.score),
		IssuesFound:    nonNil(f.issues),
		LikelyDiseases: dedupe(f.diseases),
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// dedupe drops repeated strings, keeping the first occurrence of each.
func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
