package yield

import "time"

// Signals is one reading of the tablet press.
type Signals struct {
	Weight               float64   `json:"weight"`                 // mg
	Thickness            float64   `json:"thickness"`              // mm
	Hardness             float64   `json:"hardness"`               // kP
	FeederSpeed          float64   `json:"feeder_speed"`           // rpm
	TurretSpeed          float64   `json:"turret_speed"`           // rpm
	Vacuum               float64   `json:"vacuum"`                 // mbar
	PreCompressionForce  float64   `json:"pre_compression_force"`  // kN
	MainCompressionForce float64   `json:"main_compression_force"` // kN
	Timestamp            time.Time `json:"timestamp"`
}

// BatchProfile aggregates the quality statistics of one produced batch.
type BatchProfile struct {
	BatchNumber      string  `json:"batch_number"`
	AvgWeight        float64 `json:"avg_weight"`
	WeightRSD        float64 `json:"weight_rsd"`
	AvgThickness     float64 `json:"avg_thickness"`
	AvgHardness      float64 `json:"avg_hardness"`
	RejectRate       float64 `json:"reject_rate"`
	TabletsProduced  int     `json:"tablets_produced"`
	TabletsPerMinute float64 `json:"tablets_per_minute"`
	InSpecPercentage float64 `json:"in_spec_percentage"`
}

// Severity grades drift and yield risk.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities so callers can pick the worst one.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Direction is the sign of a fitted trend.
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
)
