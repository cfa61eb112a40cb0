package yield

import "math"

// PredictionInput bundles what PredictYield needs.
type PredictionInput struct {
	Signals               Signals
	Profile               BatchProfile
	HistoricalYields      []float64
	ActiveRecommendations int
}

// Prediction is the expected yield now and after applying the active
// recommendations.
type Prediction struct {
	CurrentYield         float64  `json:"current_yield"`
	CorrectedYield       float64  `json:"corrected_yield"`
	CurrentRejectRate    float64  `json:"current_reject_rate"`
	CorrectedRejectRate  float64  `json:"corrected_reject_rate"`
	ConfidenceLevel      float64  `json:"confidence_level"`
	RiskLevel            Severity `json:"risk_level"`
	PotentialImprovement float64  `json:"potential_improvement"`
}

// PredictYield applies the closed-form yield model:
//
//	base      = in_spec% − max(0, (rsd−1.5)×2) − max(0, (reject−1.5)×0.5)
//	current   = clamp(85, 99, base×0.9 + mean(history)×0.1)   // history nudge only if non-empty
//	corrected = min(99.5, current + 0.5×recs + 1.5)
func PredictYield(in PredictionInput) Prediction {
	p := in.Profile
	current := p.InSpecPercentage -
		math.Max(0, (p.WeightRSD-1.5)*2) -
		math.Max(0, (p.RejectRate-1.5)*0.5)

	if n := len(in.HistoricalYields); n > 0 {
		var sum float64
		for _, y := range in.HistoricalYields {
			sum += y
		}
		current = current*0.9 + (sum/float64(n))*0.1
	}
	current = math.Max(85, math.Min(99, current))

	recs := float64(in.ActiveRecommendations)
	corrected := math.Min(99.5, current+recs*0.5+1.5)

	return Prediction{
		CurrentYield:         current,
		CorrectedYield:       corrected,
		CurrentRejectRate:    p.RejectRate,
		CorrectedRejectRate:  math.Max(0.3, p.RejectRate-recs*0.4),
		ConfidenceLevel:      math.Min(0.95, 0.80+0.01*float64(len(in.HistoricalYields))+0.02*recs),
		RiskLevel:            yieldRisk(current),
		PotentialImprovement: corrected - current,
	}
}

func yieldRisk(current float64) Severity {
	switch {
	case current < 93:
		return SeverityHigh
	case current < 95:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
