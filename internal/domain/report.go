package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnknownLocation is the bucket for reports that carry no location label.
const UnknownLocation = "Unknown"

// ErrNotArray is returned by DecodeReports when the payload is not a JSON array.
var ErrNotArray = errors.New("expecting a JSON array of reports")

// JSON keys of the report fields the scorer reads.
const (
	keyLocation      = "location"
	keySymptoms      = "symptoms"
	keyPH            = "pH"
	keyTurbidity     = "turbidity"
	keyBacteriaCount = "bacteria_count"
	keyColiforms     = "coliforms"
	keyHPC           = "hpc"
	keyArsenic       = "arsenic"
	keyFluoride      = "fluoride"
	keyNitrate       = "nitrate"
	keyLead          = "lead"
	keyReportTime    = "report_time"
)

// Measurement is a leniently parsed numeric report field. The submitted JSON
// value is kept verbatim so it can be echoed back in the scored output.
type Measurement struct {
	raw json.RawMessage
}

// Num returns a Measurement holding v.
func Num(v float64) Measurement {
	return Measurement{raw: json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))}
}

// Text returns a Measurement holding s as a JSON string, the way some
// clients submit numbers.
func Text(s string) Measurement {
	b, _ := json.Marshal(s)
	return Measurement{raw: b}
}

// Present reports whether the field was submitted at all.
func (m Measurement) Present() bool { return len(m.raw) > 0 }

// IsZero lets encoding/json omit fields that were never submitted.
func (m Measurement) IsZero() bool { return !m.Present() }

// Float returns the numeric value, or def when the field is missing, blank,
// null, "null" or not a number.
func (m Measurement) Float(def float64) float64 {
	raw := bytes.TrimSpace(m.raw)
	if len(raw) == 0 {
		return def
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return def
		}
		return parseFloatOr(s, def)
	case 't':
		return 1
	case 'f':
		return 0
	case 'n', '{', '[':
		return def
	default:
		return parseFloatOr(string(raw), def)
	}
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Present() {
		return []byte("null"), nil
	}
	return m.raw, nil
}

func (m *Measurement) UnmarshalJSON(data []byte) error {
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

// parseFloatOr parses s as float64, returning def on failure.
func parseFloatOr(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range values saturate to ±Inf and still compare against limits.
		if errors.Is(err, strconv.ErrRange) {
			return v
		}
		return def
	}
	return v
}

// isoLayouts are the ISO-8601 forms accepted for report_time. Values without
// a zone offset are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ReportTime holds the submitted report_time and, when it was a well-formed
// ISO-8601 string, the parsed timestamp.
type ReportTime struct {
	Time time.Time
	raw  json.RawMessage
}

// Parsed reports whether the submitted value was a valid timestamp.
func (rt ReportTime) Parsed() bool { return !rt.Time.IsZero() }

// IsZero lets encoding/json omit a report_time that was never submitted.
func (rt ReportTime) IsZero() bool { return !rt.Parsed() && len(rt.raw) == 0 }

func (rt ReportTime) MarshalJSON() ([]byte, error) {
	if rt.Parsed() {
		return json.Marshal(rt.Time)
	}
	if len(rt.raw) == 0 {
		return []byte("null"), nil
	}
	return rt.raw, nil
}

func (rt *ReportTime) UnmarshalJSON(data []byte) error {
	*rt = ReportTime{raw: append(json.RawMessage(nil), data...)}

	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	if t, ok := parseISO8601(s); ok {
		rt.Time = t
	}
	return nil
}

// ParseReportTime returns a ReportTime for s, parsed if s is ISO-8601.
func ParseReportTime(s string) ReportTime {
	var rt ReportTime
	b, _ := json.Marshal(s)
	_ = rt.UnmarshalJSON(b)
	return rt
}

func parseISO8601(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Report is one submitted observation for a location. Fields that were not
// submitted keep their zero value and fall back to defaults when scored.
// Unrecognized fields are carried in Extra and echoed in the scored output.
type Report struct {
	Location string
	Symptoms string

	PH            Measurement
	Turbidity     Measurement
	BacteriaCount Measurement // E. coli per 100 ml
	Coliforms     Measurement // total coliforms per 100 ml
	HPC           Measurement // heterotrophic plate count, CFU/ml
	Arsenic       Measurement // mg/L
	Fluoride      Measurement // mg/L
	Nitrate       Measurement // mg/L as NO3-
	Lead          Measurement // mg/L

	ReportTime ReportTime

	Extra map[string]json.RawMessage

	// submitted location and symptoms values, echoed when not plain strings
	locationRaw json.RawMessage
	symptomsRaw json.RawMessage
}

// Place returns the report's location label, or UnknownLocation when absent.
func (r Report) Place() string {
	if r.Location == "" {
		return UnknownLocation
	}
	return r.Location
}

// SymptomText returns the lower-cased symptom description used for matching.
func (r Report) SymptomText() string {
	return strings.ToLower(r.Symptoms)
}

// measurementFields maps JSON keys to the report's numeric fields.
func (r *Report) measurementFields() map[string]*Measurement {
	return map[string]*Measurement{
		keyPH:            &r.PH,
		keyTurbidity:     &r.Turbidity,
		keyBacteriaCount: &r.BacteriaCount,
		keyColiforms:     &r.Coliforms,
		keyHPC:           &r.HPC,
		keyArsenic:       &r.Arsenic,
		keyFluoride:      &r.Fluoride,
		keyNitrate:       &r.Nitrate,
		keyLead:          &r.Lead,
	}
}

// UnmarshalJSON decodes a report object leniently. A value that is not a JSON
// object decodes to an all-default report. Non-string location or symptoms
// values are treated as absent.
func (r *Report) UnmarshalJSON(data []byte) error {
	*r = Report{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	measurements := r.measurementFields()
	for key, value := range fields {
		switch key {
		case keyLocation:
			r.locationRaw = value
			_ = json.Unmarshal(value, &r.Location)
		case keySymptoms:
			r.symptomsRaw = value
			_ = json.Unmarshal(value, &r.Symptoms)
		case keyReportTime:
			_ = r.ReportTime.UnmarshalJSON(value)
		default:
			if m, ok := measurements[key]; ok {
				_ = m.UnmarshalJSON(value)
				continue
			}
			if r.Extra == nil {
				r.Extra = make(map[string]json.RawMessage)
			}
			r.Extra[key] = value
		}
	}
	return nil
}

// fields returns the submitted report fields keyed by their JSON names.
func (r Report) fields() map[string]any {
	out := make(map[string]any, len(r.Extra)+12)
	for k, v := range r.Extra {
		out[k] = v
	}
	switch {
	case r.Location != "":
		out[keyLocation] = r.Location
	case len(r.locationRaw) > 0:
		out[keyLocation] = r.locationRaw
	}
	switch {
	case r.Symptoms != "":
		out[keySymptoms] = r.Symptoms
	case len(r.symptomsRaw) > 0:
		out[keySymptoms] = r.symptomsRaw
	}
	for key, m := range r.measurementFields() {
		if m.Present() {
			out[key] = *m
		}
	}
	if !r.ReportTime.IsZero() {
		out[keyReportTime] = r.ReportTime
	}
	return out
}

func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields())
}

// ParseReport decodes a single report object. Unlike DecodeReports it rejects
// payloads that are not JSON objects, so malformed queue messages can be
// skipped.
func ParseReport(data []byte) (Report, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return Report{}, errors.New("parse report: expected a JSON object")
	}

	var r Report
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return Report{}, fmt.Errorf("parse report: %w", err)
	}
	return r, nil
}

// DecodeReports decodes a request body holding a JSON array of reports.
// Empty and falsy bodies (null, false, any zero number, "", an empty object)
// decode to no reports. Any other non-array value returns ErrNotArray.
func DecodeReports(data []byte) ([]Report, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Report{}, nil
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("decode reports: invalid JSON")
	}

	if trimmed[0] != '[' {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("decode reports: %w", err)
		}
		if isFalsy(v) {
			return []Report{}, nil
		}
		return nil, ErrNotArray
	}

	reports := []Report{}
	if err := json.Unmarshal(trimmed, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return reports, nil
}

// isFalsy reports whether a decoded JSON value is the zero value of its kind.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
