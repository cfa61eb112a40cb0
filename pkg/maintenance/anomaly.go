package maintenance

import (
	"fmt"
	"time"
)

// Sensor names used as Anomaly.Source.
const (
	SourceVibration   = "Vibration Sensor"
	SourceTemperature = "Temperature Sensor"
	SourceMotorLoad   = "Motor Load Sensor"
)

// motorOverloadHigh is the absolute load (%) above which an overload is high severity.
const motorOverloadHigh = 95.0

// Thresholds are the alarm limits for the condition-monitoring sensors.
// A zero field means "use the default".
type Thresholds struct {
	Vibration   float64 `json:"vibration" yaml:"vibration"`     // mm/s
	Temperature float64 `json:"temperature" yaml:"temperature"` // °C
	MotorLoad   float64 `json:"motor_load" yaml:"motor_load"`   // percent
}

// DefaultThresholds returns the factory alarm limits.
func DefaultThresholds() Thresholds {
	return Thresholds{Vibration: 5.0, Temperature: 65, MotorLoad: 90}
}

// withDefaults fills zero fields from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.Vibration == 0 {
		t.Vibration = d.Vibration
	}
	if t.Temperature == 0 {
		t.Temperature = d.Temperature
	}
	if t.MotorLoad == 0 {
		t.MotorLoad = d.MotorLoad
	}
	return t
}

// Anomaly is one threshold breach on one sample.
type Anomaly struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
}

// DetectAnomalies evaluates every sample against t. Anomalies are returned in
// sample order; within a sample the order is vibration, temperature, load.
func (e *Engine) DetectAnomalies(samples []SensorSample, t Thresholds) []Anomaly {
	t = t.withDefaults()
	var out []Anomaly
	for _, s := range samples {
		if s.Vibration > t.Vibration {
			out = append(out, Anomaly{
				ID:        e.ids.NewID(),
				Timestamp: s.Timestamp,
				Source:    SourceVibration,
				Severity:  vibrationSeverity(s.Vibration, t.Vibration),
				Description: fmt.Sprintf("High vibration detected: %.2f mm/s (threshold: %g mm/s)",
					s.Vibration, t.Vibration),
			})
		}
		if s.Temperature > t.Temperature {
			out = append(out, Anomaly{
				ID:        e.ids.NewID(),
				Timestamp: s.Timestamp,
				Source:    SourceTemperature,
				Severity:  temperatureSeverity(s.Temperature, t.Temperature),
				Description: fmt.Sprintf("High temperature detected: %.1f°C (threshold: %g°C)",
					s.Temperature, t.Temperature),
			})
		}
		if s.MotorLoad > t.MotorLoad {
			out = append(out, Anomaly{
				ID:        e.ids.NewID(),
				Timestamp: s.Timestamp,
				Source:    SourceMotorLoad,
				Severity:  motorLoadSeverity(s.MotorLoad),
				Description: fmt.Sprintf("Motor overload detected: %.1f%% (threshold: %g%%)",
					s.MotorLoad, t.MotorLoad),
			})
		}
	}
	return out
}

// vibrationSeverity grades by ratio to the threshold: >1.5× high, >1.2× medium.
func vibrationSeverity(v, limit float64) Severity {
	switch {
	case v > limit*1.5:
		return SeverityHigh
	case v > limit*1.2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// temperatureSeverity grades by absolute offset: >15°C high, >5°C medium.
func temperatureSeverity(v, limit float64) Severity {
	switch {
	case v > limit+15:
		return SeverityHigh
	case v > limit+5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func motorLoadSeverity(v float64) Severity {
	if v > motorOverloadHigh {
		return SeverityHigh
	}
	return SeverityMedium
}
