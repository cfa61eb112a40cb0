package vision

import (
	"fmt"
	"math"
)

// Confidence bands that adjust the base severity.
const (
	lowConfidence  = 0.50
	highConfidence = 0.85
)

// AnalyzeDetection grades d, attaches the response text and recipients and
// computes its priority score. A detection without an id gets a generated
// one; one without a timestamp is stamped with the engine clock.
func (e *Engine) AnalyzeDetection(d Detection) Result {
	sev := GradeSeverity(d.Type, d.Confidence)

	id := d.ID
	if id == "" {
		id = e.ids.NewID()
	}
	ts := e.clock.Now()
	if d.Timestamp != nil {
		ts = *d.Timestamp
	}

	return Result{
		ID:                id,
		Type:              d.Type,
		Severity:          sev,
		Location:          d.Location,
		Timestamp:         ts,
		Confidence:        d.Confidence,
		Recommendation:    Recommendation(d.Type, sev, d.Location),
		PriorityScore:     PriorityScore(d.Type, sev, d.Confidence),
		AlertRecipients:   lookupList(recipients, d.Type, defaultRecipients),
		Status:            StatusDetected,
		RequiresImmediate: sev == SeverityCritical,
	}
}

// GradeSeverity adjusts the base severity of t by model confidence: below 0.5
// the finding is minor, above 0.85 a non-critical finding escalates one step.
func GradeSeverity(t DetectionType, confidence float64) Severity {
	base, ok := baseSeverity[t]
	if !ok {
		base = SeverityMinor
	}
	switch {
	case confidence < lowConfidence:
		return SeverityMinor
	case confidence > highConfidence && base == SeverityMinor:
		return SeverityModerate
	case confidence > highConfidence && base == SeverityModerate:
		return SeverityCritical
	default:
		return base
	}
}

// PriorityScore ranks a detection in [0, 100]:
//
//	min(100, round((severity_weight + type_weight) × (0.5 + 0.5×confidence)))
func PriorityScore(t DetectionType, sev Severity, confidence float64) int {
	w, ok := severityWeight[sev]
	if !ok {
		w = severityWeight[SeverityMinor]
	}
	score := math.Round(float64(w+typeWeight[t]) * (0.5 + 0.5*confidence))
	return int(math.Min(100, score))
}

// Recommendation returns the response instruction for a detection.
func Recommendation(t DetectionType, sev Severity, location string) string {
	if tmpl, ok := recommendations[t][sev]; ok {
		return fmt.Sprintf(tmpl, location)
	}
	return fmt.Sprintf(fallbackRecommendation, location)
}
