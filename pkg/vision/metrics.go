package vision

import "math"

// Defect weights used in the RFT calculation.
const (
	criticalWeight = 3.0
	moderateWeight = 1.5
	minorWeight    = 0.5
)

// AnalysisInput is a shift's worth of graded detections plus current KPIs.
type AnalysisInput struct {
	Detections       []Result `json:"detections"`
	BaselineMetrics  Metrics  `json:"baseline_metrics"`
	TotalInspections int      `json:"total_inspections"`
	// Targets are the KPI targets; nil selects DefaultTargets.
	Targets *Metrics `json:"targets,omitempty"`
}

// Analysis summarises quality risk for the period.
type Analysis struct {
	RFTPercentage      float64     `json:"rft_percentage"`
	TotalDetections    int         `json:"total_detections"`
	CriticalCount      int         `json:"critical_count"`
	ModerateCount      int         `json:"moderate_count"`
	MinorCount         int         `json:"minor_count"`
	UnresolvedCount    int         `json:"unresolved_count"`
	BaselineDeviations []Deviation `json:"baseline_deviations"`
	RiskLevel          Level       `json:"risk_level"`
	Recommendations    []string    `json:"recommendations"`
	ConfidenceScore    float64     `json:"confidence_score"`
}

// AnalyzeMetrics computes RFT% and risk for the period:
//
//	weighted = 3·critical + 1.5·moderate + 0.5·minor
//	rft      = clamp(0, 100, 100 − weighted / max(1, inspections) × 10)
//
// The KPIs in the input are checked against in.Targets.
func (e *Engine) AnalyzeMetrics(in AnalysisInput) Analysis {
	a := Analysis{TotalDetections: len(in.Detections)}

	var ppe, maintenance int
	var confidence float64
	for _, d := range in.Detections {
		switch d.Severity {
		case SeverityCritical:
			a.CriticalCount++
		case SeverityModerate:
			a.ModerateCount++
		case SeverityMinor:
			a.MinorCount++
		}
		if d.Status != StatusResolved {
			a.UnresolvedCount++
		}
		switch d.Type {
		case TypePPEViolation:
			ppe++
		case TypeSurfaceDamage, TypeLeak:
			maintenance++
		}
		confidence += d.Confidence
	}

	weighted := float64(a.CriticalCount)*criticalWeight +
		float64(a.ModerateCount)*moderateWeight +
		float64(a.MinorCount)*minorWeight
	inspections := math.Max(1, float64(in.TotalInspections))
	a.RFTPercentage = math.Max(0, math.Min(100, 100-weighted/inspections*10))

	a.BaselineDeviations = e.DetectBaselineDeviation(in.BaselineMetrics, in.Targets)
	if a.BaselineDeviations == nil {
		a.BaselineDeviations = []Deviation{}
	}

	switch {
	case a.CriticalCount > 0 || a.RFTPercentage < 90:
		a.RiskLevel = LevelHigh
	case a.ModerateCount > 2 || a.RFTPercentage < 95:
		a.RiskLevel = LevelMedium
	default:
		a.RiskLevel = LevelLow
	}

	if ppe > 2 {
		a.Recommendations = append(a.Recommendations, "Schedule PPE compliance refresher training for all shifts")
	}
	if maintenance > 0 {
		a.Recommendations = append(a.Recommendations, "Accelerate preventive maintenance schedule for affected areas")
	}
	for _, d := range a.BaselineDeviations {
		if d.Severity == LevelHigh {
			a.Recommendations = append(a.Recommendations, "Conduct root cause analysis for significant baseline deviations")
			break
		}
	}
	if a.RFTPercentage < 95 {
		a.Recommendations = append(a.Recommendations, "Implement additional quality checkpoints at critical stages")
	}
	if len(a.Recommendations) == 0 {
		a.Recommendations = []string{"Maintain current practices - all metrics within acceptable ranges"}
	}

	a.ConfidenceScore = 1.0
	if n := len(in.Detections); n > 0 {
		a.ConfidenceScore = math.Round(confidence/float64(n)*100) / 100
	}
	return a
}
