package maintenance

import "time"

// Trend is the health trajectory reported for a component.
type Trend string

const (
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendCritical  Trend = "critical"
)

// Severity grades an anomaly.
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

// Type is the kind of maintenance work a decision calls for.
type Type string

const (
	TypeNone             Type = ""
	TypeGeneral          Type = "general"
	TypeSpareReplacement Type = "spare_replacement"
)

// Priority of a maintenance decision.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ComponentHealth is the current condition of one machine component.
type ComponentHealth struct {
	Name               string     `json:"name"`
	Health             float64    `json:"health"`
	RUL                float64    `json:"rul"`
	Trend              Trend      `json:"trend"`
	FailureProbability *float64   `json:"failure_probability,omitempty"`
	LastMaintenance    *time.Time `json:"last_maintenance,omitempty"`
}

// SensorSample is one reading of the condition-monitoring sensors.
type SensorSample struct {
	Vibration   float64   `json:"vibration"`
	MotorLoad   float64   `json:"motor_load"`
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
}

// ScheduledBatch is one production run occupying the line.
type ScheduledBatch struct {
	ID          string    `json:"id,omitempty"`
	BatchNumber string    `json:"batch_number,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	Status      string    `json:"status,omitempty"`
}

// Window is a half-open interval [Start, End) on the line.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }
