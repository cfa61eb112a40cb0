package vision

import "time"

// Deviation thresholds in percentage points below target.
const (
	decliningDeviation = 2.0
	mediumDeviation    = 5.0
	highDeviation      = 10.0
	urgentDeviation    = 5.0
)

// Metrics are the four vision KPIs, all in percent.
type Metrics struct {
	PPECompliance     float64 `json:"ppe_compliance" yaml:"ppe_compliance"`
	SurfaceCondition  float64 `json:"surface_condition" yaml:"surface_condition"`
	EnvironmentalNorm float64 `json:"environmental_norm" yaml:"environmental_norm"`
	SafetyScore       float64 `json:"safety_score" yaml:"safety_score"`
}

// DefaultTargets returns the plant-wide KPI targets.
func DefaultTargets() Metrics {
	return Metrics{PPECompliance: 98, SurfaceCondition: 97, EnvironmentalNorm: 99, SafetyScore: 96}
}

// Deviation is a KPI running below its target.
type Deviation struct {
	ID                string    `json:"id"`
	Metric            string    `json:"metric"`
	BaselineValue     float64   `json:"baseline_value"`
	CurrentValue      float64   `json:"current_value"`
	Deviation         float64   `json:"deviation"`
	Severity          Level     `json:"severity"`
	DetectedAt        time.Time `json:"detected_at"`
	Trend             string    `json:"trend"`
	RecommendedAction string    `json:"recommended_action"`
}

type kpi struct {
	label   string
	value   func(Metrics) float64
	action  string // deviation > urgentDeviation
	monitor string
}

var kpis = []kpi{
	{
		label:   "PPE Compliance",
		value:   func(m Metrics) float64 { return m.PPECompliance },
		action:  "Conduct immediate PPE audit and refresher training",
		monitor: "Review PPE compliance during next shift change",
	},
	{
		label:   "Surface Condition",
		value:   func(m Metrics) float64 { return m.SurfaceCondition },
		action:  "Schedule comprehensive facility inspection",
		monitor: "Add to routine maintenance checklist",
	},
	{
		label:   "Environmental",
		value:   func(m Metrics) float64 { return m.EnvironmentalNorm },
		action:  "Investigate HVAC and environmental controls immediately",
		monitor: "Monitor environmental readings more frequently",
	},
	{
		label:   "Safety Score",
		value:   func(m Metrics) float64 { return m.SafetyScore },
		action:  "Conduct safety stand-down and risk assessment",
		monitor: "Review recent safety incidents and near-misses",
	},
}

// DetectBaselineDeviation compares current against targets (DefaultTargets
// when nil). Only KPIs below target are reported; a KPI above target is not a
// deviation.
func (e *Engine) DetectBaselineDeviation(current Metrics, targets *Metrics) []Deviation {
	t := DefaultTargets()
	if targets != nil {
		t = *targets
	}
	now := e.clock.Now()

	var out []Deviation
	for _, k := range kpis {
		target, value := k.value(t), k.value(current)
		dev := target - value
		if dev <= 0 {
			continue
		}
		d := Deviation{
			ID:                e.ids.NewID(),
			Metric:            k.label,
			BaselineValue:     target,
			CurrentValue:      value,
			Deviation:         dev,
			Severity:          deviationLevel(dev),
			DetectedAt:        now,
			Trend:             "stable",
			RecommendedAction: k.monitor,
		}
		if dev > decliningDeviation {
			d.Trend = "declining"
		}
		if dev > urgentDeviation {
			d.RecommendedAction = k.action
		}
		out = append(out, d)
	}
	return out
}

func deviationLevel(dev float64) Level {
	switch {
	case dev >= highDeviation:
		return LevelHigh
	case dev >= mediumDeviation:
		return LevelMedium
	default:
		return LevelLow
	}
}
