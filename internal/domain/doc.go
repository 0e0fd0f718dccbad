// Package domain scores community health and water-quality reports.
//
// # Report Format
//
// Reports arrive as flat JSON objects submitted by field workers or village
// health volunteers. Every field is optional:
//
//	{"location": "Village A", "symptoms": "fever and diarrhea",
//	 "pH": 6.1, "turbidity": "12", "bacteria_count": 3, "report_time": "2025-03-01T08:30:00"}
//
// Numeric fields may be sent as numbers or numeric strings. Missing, blank,
// null, "null" and unparseable values fall back to the field default
// (pH 7.0, everything else 0.0) and are never rejected. bacteria_count is read
// as an E. coli count per 100 ml.
//
// report_time is parsed when it is a well-formed ISO-8601 string and is echoed
// back unchanged otherwise.
//
// # Scoring
//
// [ScoreReport] adds independent weights for symptom keywords found in the
// lower-cased symptom text and for each water-quality threshold that is
// exceeded. Thresholds are WHO/BIS-style drinking water limits:
//
//	pH           outside 6.5–8.5
//	Turbidity    >1 NTU informative, >5 NTU high, >30 NTU very high
//	E. coli      any detection per 100 ml
//	Coliforms    any detection per 100 ml
//	HPC          >500 CFU/ml
//	Arsenic      >0.01 mg/L
//	Fluoride     >1.5 mg/L
//	Nitrate      >45 mg/L as NO3-
//	Lead         >0.01 mg/L
//
// The total maps to a tier: 0–2 Low, 3–5 Medium, 6+ High. Disease hints are
// heuristic flags for follow-up, not a diagnosis.
//
// # Aggregation
//
// [AggregateLocationPatterns] folds scored reports into per-location trends.
// Frequency rankings break ties by first appearance so results are
// deterministic for a given input order. [OverallRisk] and
// [HighRiskLocations] derive the batch-level verdicts, and [Analyze] bundles
// everything into the response served over HTTP and Kafka.
package domain
