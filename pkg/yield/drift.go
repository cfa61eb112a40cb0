package yield

import (
	"fmt"
	"math"
	"time"
)

// DefaultDriftWindow is the number of most recent signals fitted by DetectDrift.
const DefaultDriftWindow = 30

// minDriftSlope is the absolute slope at or below which a parameter is flat.
const minDriftSlope = 0.01

// Parameter names a monitored press signal.
type Parameter string

const (
	ParamWeight      Parameter = "weight"
	ParamThickness   Parameter = "thickness"
	ParamHardness    Parameter = "hardness"
	ParamFeederSpeed Parameter = "feederSpeed"
	ParamTurretSpeed Parameter = "turretSpeed"
)

// Drift is a statistically estimated directional trend in one parameter.
type Drift struct {
	ID                string    `json:"id"`
	Parameter         Parameter `json:"parameter"`
	Direction         Direction `json:"direction"`
	Magnitude         float64   `json:"magnitude"`
	Severity          Severity  `json:"severity"`
	DetectedAt        time.Time `json:"detected_at"`
	Description       string    `json:"description"`
	RecommendedAction string    `json:"recommended_action"`
}

type monitored struct {
	param    Parameter
	value    func(Signals) float64
	describe func(Direction) string
	action   func(Direction) string
}

// monitoredParams is evaluated in order; output order follows it.
var monitoredParams = []monitored{
	{
		param: ParamWeight,
		value: func(s Signals) float64 { return s.Weight },
		describe: func(d Direction) string {
			return fmt.Sprintf("Tablet weight %s - potential fill depth adjustment needed", d)
		},
		action: func(d Direction) string {
			if d == DirectionDecreasing {
				return "Increase feeder speed slightly"
			}
			return "Decrease feeder speed slightly"
		},
	},
	{
		param: ParamThickness,
		value: func(s Signals) float64 { return s.Thickness },
		describe: func(d Direction) string {
			return fmt.Sprintf("Thickness %s - check punch wear or compression settings", d)
		},
		action: func(d Direction) string {
			if d == DirectionIncreasing {
				return "Increase compression force"
			}
			return "Decrease compression force"
		},
	},
	{
		param: ParamHardness,
		value: func(s Signals) float64 { return s.Hardness },
		describe: func(d Direction) string {
			return fmt.Sprintf("Hardness %s - may affect dissolution profile", d)
		},
		action: func(d Direction) string {
			if d == DirectionDecreasing {
				return "Increase main compression force"
			}
			return "Decrease main compression force"
		},
	},
	{
		param:    ParamFeederSpeed,
		value:    func(s Signals) float64 { return s.FeederSpeed },
		describe: func(Direction) string { return "Feeder speed drift detected - check hopper level" },
		action:   func(Direction) string { return "Check hopper level and material flow" },
	},
	{
		param:    ParamTurretSpeed,
		value:    func(s Signals) float64 { return s.TurretSpeed },
		describe: func(Direction) string { return "Turret speed variation - verify drive belt tension" },
		action:   func(Direction) string { return "Verify drive belt tension and motor condition" },
	},
}

// DetectDrift fits a line through each monitored parameter over the last
// window signals. It returns nil when fewer than window signals are given.
// window <= 0 selects DefaultDriftWindow.
func (e *Engine) DetectDrift(signals []Signals, window int) []Drift {
	if window <= 0 {
		window = DefaultDriftWindow
	}
	if len(signals) < window {
		return nil
	}
	recent := signals[len(signals)-window:]
	now := e.clock.Now()

	values := make([]float64, len(recent))
	var out []Drift
	for _, m := range monitoredParams {
		for i, s := range recent {
			values[i] = m.value(s)
		}
		tr, ok := LinearTrend(values)
		if !ok || math.Abs(tr.Slope) <= minDriftSlope {
			continue
		}

		dir := DirectionDecreasing
		if tr.Slope > 0 {
			dir = DirectionIncreasing
		}
		magnitude := math.Abs(tr.PercentChange)

		out = append(out, Drift{
			ID:                e.ids.NewID(),
			Parameter:         m.param,
			Direction:         dir,
			Magnitude:         magnitude,
			Severity:          driftSeverity(magnitude),
			DetectedAt:        now,
			Description:       m.describe(dir),
			RecommendedAction: m.action(dir),
		})
	}
	return out
}

// driftSeverity grades the percent change over the window: >2 high, >1 medium.
func driftSeverity(magnitude float64) Severity {
	switch {
	case magnitude > 2.0:
		return SeverityHigh
	case magnitude > 1.0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
