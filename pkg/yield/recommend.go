package yield

import (
	"fmt"
	"math"
)

// Quality targets that trigger a recommendation.
const (
	targetRSD           = 1.5 // % weight RSD
	targetRejectRate    = 1.5 // %
	hardnessDeadband    = 1.0 // kP either side of target
	weightDeadbandRatio = 0.5 // fraction of the weight tolerance
)

// Recommendation is a proposed setpoint change within SOP limits.
type Recommendation struct {
	ID                  string   `json:"id"`
	Parameter           string   `json:"parameter"`
	CurrentValue        float64  `json:"current_value"`
	RecommendedValue    float64  `json:"recommended_value"`
	Unit                string   `json:"unit"`
	Adjustment          string   `json:"adjustment"`
	ExpectedImprovement float64  `json:"expected_improvement"`
	SOPMin              float64  `json:"sop_min"`
	SOPMax              float64  `json:"sop_max"`
	RiskLevel           Severity `json:"risk_level"`
	Reasoning           string   `json:"reasoning"`
}

// GenerateRecommendations runs four independent checks in a fixed order:
// tablet weight (feeder speed), hardness (main compression), weight
// uniformity (turret speed) and reject rate (pre-compression). A check only
// yields a recommendation when the SOP-clamped setpoint differs from the
// current one.
func (e *Engine) GenerateRecommendations(sig Signals, p BatchProfile, limits SOPLimits, specs ProductSpecs) []Recommendation {
	var out []Recommendation
	add := func(name string, lim Limit, current, step, improvement float64, reasoning string) {
		next := lim.Clamp(current + step)
		if next == current {
			return
		}
		out = append(out, Recommendation{
			ID:                  e.ids.NewID(),
			Parameter:           name,
			CurrentValue:        current,
			RecommendedValue:    next,
			Unit:                lim.Unit,
			Adjustment:          fmt.Sprintf("%+.1f %s", step, lim.Unit),
			ExpectedImprovement: improvement,
			SOPMin:              lim.Min,
			SOPMax:              lim.Max,
			RiskLevel:           SeverityLow,
			Reasoning:           reasoning,
		})
	}

	if dev := sig.Weight - specs.Weight.Target; math.Abs(dev) > specs.Weight.Tolerance*weightDeadbandRatio {
		if dev < 0 {
			add(NameFeederSpeed, limits.FeederSpeed, sig.FeederSpeed, 0.3, 0.15,
				"Slight increase to compensate for gradual weight decrease trend")
		} else {
			add(NameFeederSpeed, limits.FeederSpeed, sig.FeederSpeed, -0.3, 0.15,
				"Slight decrease to compensate for weight increase trend")
		}
	}

	if dev := sig.Hardness - specs.Hardness.Target; math.Abs(dev) > hardnessDeadband {
		if dev < 0 {
			add(NameMainCompressionForce, limits.MainCompressionForce, sig.MainCompressionForce, 0.5, 0.22,
				"Increase hardness to target center; reduces friability rejects")
		} else {
			add(NameMainCompressionForce, limits.MainCompressionForce, sig.MainCompressionForce, -0.5, 0.22,
				"Decrease compression to avoid over-hardness issues")
		}
	}

	if p.WeightRSD > targetRSD {
		add(NameTurretSpeed, limits.TurretSpeed, sig.TurretSpeed, -0.5, 0.18,
			"Minor reduction to improve fill uniformity and reduce %RSD")
	}

	if p.RejectRate > targetRejectRate {
		add(NamePreCompressionForce, limits.PreCompressionForce, sig.PreCompressionForce, 0.3, 0.12,
			"Better de-aeration reduces capping and lamination")
	}

	return out
}

// ValidateRecommendation reports whether rec stays within the SOP range of
// its parameter. Parameters without an SOP range are accepted.
func ValidateRecommendation(rec Recommendation, limits SOPLimits) bool {
	lim, ok := limits.ByName(rec.Parameter)
	if !ok {
		return true
	}
	return lim.Contains(rec.RecommendedValue)
}

