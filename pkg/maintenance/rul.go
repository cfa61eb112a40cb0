package maintenance

import (
	"math"
	"time"
)

const (
	baseDegradationRate = 0.001 // health points lost per operating hour

	vibrationStressLimit   = 5.0  // mm/s
	temperatureStressLimit = 10.0 // °C above nominal
	motorLoadStressLimit   = 90.0 // percent

	vibrationMultiplier   = 1.5
	temperatureMultiplier = 1.3
	motorLoadMultiplier   = 1.4
)

// RULInput describes the component and its recent operating stress.
type RULInput struct {
	ComponentName    string  `json:"component_name"`
	CurrentHealth    float64 `json:"current_health"`
	OperatingHours   float64 `json:"operating_hours"`
	VibrationLevel   float64 `json:"vibration_level"`
	TemperatureDelta float64 `json:"temperature_delta"`
	MotorLoadAvg     float64 `json:"motor_load_avg"`
}

// RULPrediction is the output of PredictRUL.
type RULPrediction struct {
	ComponentName        string    `json:"component_name"`
	PredictedRUL         float64   `json:"predicted_rul"`
	ConfidenceLevel      float64   `json:"confidence_level"`
	DegradationRate      float64   `json:"degradation_rate"`
	FailureProbability   float64   `json:"failure_probability"`
	PredictedFailureDate time.Time `json:"predicted_failure_date"`
}

// PredictRUL estimates remaining useful life in hours.
//
//	rate       = 0.001 × (1.5 if vibration > 5) × (1.3 if ΔT > 10) × (1.4 if load > 90)
//	rul        = health / rate
//	confidence = clamp(0.6, 0.95, 0.85 − 0.1·|vib_mult−1| − 0.1·|temp_mult−1|)
//	p(failure) = clamp(0.01, 0.99, 1 − rul/1000)
//
// PredictedRUL is rounded to whole hours; the failure date uses the exact value.
func PredictRUL(in RULInput, now time.Time) RULPrediction {
	vibFactor, tempFactor, loadFactor := 1.0, 1.0, 1.0
	if in.VibrationLevel > vibrationStressLimit {
		vibFactor = vibrationMultiplier
	}
	if in.TemperatureDelta > temperatureStressLimit {
		tempFactor = temperatureMultiplier
	}
	if in.MotorLoadAvg > motorLoadStressLimit {
		loadFactor = motorLoadMultiplier
	}

	rate := baseDegradationRate * vibFactor * tempFactor * loadFactor
	rul := in.CurrentHealth / rate

	confidence := clamp(0.6, 0.95,
		0.85-0.1*math.Abs(vibFactor-1)-0.1*math.Abs(tempFactor-1))

	return RULPrediction{
		ComponentName:        in.ComponentName,
		PredictedRUL:         math.Round(rul),
		ConfidenceLevel:      confidence,
		DegradationRate:      rate,
		FailureProbability:   clamp(0.01, 0.99, 1-rul/1000),
		PredictedFailureDate: now.Add(hours(rul)),
	}
}

// PredictRUL is PredictRUL evaluated at the engine clock.
func (e *Engine) PredictRUL(in RULInput) RULPrediction {
	return PredictRUL(in, e.clock.Now())
}

// hours converts fractional hours to a Duration, saturating instead of
// overflowing for absurdly long lifetimes.
func hours(h float64) time.Duration {
	const maxHours = float64(math.MaxInt64 / int64(time.Hour))
	if h > maxHours {
		h = maxHours
	}
	if h < -maxHours {
		h = -maxHours
	}
	return time.Duration(h * float64(time.Hour))
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
