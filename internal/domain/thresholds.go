package domain

// Drinking water limits, WHO/BIS-inspired.
const (
	PHMin = 6.5
	PHMax = 8.5

	TurbidityIdeal    = 1.0  // NTU
	TurbidityMax      = 5.0  // NTU
	TurbidityVeryHigh = 30.0 // NTU

	EColiSafe    = 0.0   // per 100 ml
	ColiformSafe = 0.0   // per 100 ml
	HPCMax       = 500.0 // CFU/ml
	ArsenicMax   = 0.01  // mg/L
	FluorideMax  = 1.5   // mg/L
	NitrateMax   = 45.0  // mg/L as NO3-
	LeadMax      = 0.01  // mg/L

	DefaultPH = 7.0
)

// Issue labels reported in ScoredReport.IssuesFound.
const (
	IssueUnsafePH            = "Unsafe pH"
	IssueVeryHighTurbidity   = "Very high turbidity"
	IssueHighTurbidity       = "High turbidity"
	IssueTurbidityAboveIdeal = "Turbidity above ideal"
	IssueEColi               = "E. coli present"
	IssueColiforms           = "Fecal contamination (coliforms)"
	IssueHighHPC             = "High HPC"
	IssueArsenic             = "Arsenic above safe limit"
	IssueHighFluoride        = "High fluoride"
	IssueHighNitrate         = "High nitrate"
	IssueLead                = "Lead above safe limit"
)

// Disease hints reported in ScoredReport.LikelyDiseases.
const (
	DiseaseMetalLeaching     = "Metal leaching / gastritis / skin irritation"
	DiseasePathogensLikely   = "Pathogens likely; chlorination failure"
	DiseasePathogensSurvive  = "Pathogens may survive; diarrhea risk"
	DiseaseDiarrhea          = "Diarrhea"
	DiseaseCholera           = "Cholera"
	DiseaseTyphoid           = "Typhoid"
	DiseaseGastroenteritis   = "Gastroenteritis"
	DiseaseHepatitisA        = "Hepatitis A"
	DiseaseOpportunistic     = "Opportunistic infections"
	DiseaseArsenicosis       = "Arsenicosis / cancer risk"
	DiseaseFluorosis         = "Dental/Skeletal fluorosis"
	DiseaseMethemoglobinemia = "Methemoglobinemia (Blue Baby)"
	DiseaseNeurotoxicity     = "Neurotoxicity / developmental issues"
)

// symptomKeys are the keywords tallied into LocationSummary.SymptomTrends.
var symptomKeys = []string{
	"fever", "diarrhea", "vomit", "vomiting", "jaundice", "abdominal pain", "stomach pain", "nausea",
}

// symptomRule adds weight once when any of its keywords occurs in the
// lower-cased symptom text.
type symptomRule struct {
	keywords []string
	weight   int
}

var symptomRules = []symptomRule{
	{keywords: []string{"fever"}, weight: 2},
	{keywords: []string{"diarrhea"}, weight: 3},
	{keywords: []string{"vomit", "vomiting", "nausea"}, weight: 2},
	{keywords: []string{"jaundice"}, weight: 2},
	{keywords: []string{"abdominal pain", "stomach pain"}, weight: 1},
}

// severeIssues flag a location as high risk on their own.
var severeIssues = []string{IssueEColi, IssueArsenic, IssueLead, IssueColiforms}

// RiskLevel is the coarse classification of a report or batch.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"

	// RiskNoData is the overall verdict for an empty batch.
	RiskNoData RiskLevel = "No Data"
)

const (
	highScore   = 6
	mediumScore = 3

	// overallShare is the fraction of reports at a tier that makes it the
	// overall verdict. High is checked before Medium.
	overallShare = 0.33

	// highRiskReports is the number of High reports that flags a location.
	highRiskReports = 2

	topN = 5
)

// RiskLevelForScore maps a report score to its tier: 0–2 Low, 3–5 Medium, 6+ High.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= highScore:
		return RiskHigh
	case score >= mediumScore:
		return RiskMedium
	default:
		return RiskLow
	}
}
