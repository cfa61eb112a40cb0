package vision

import "time"

// DetectionType is the category reported by the vision model.
type DetectionType string

const (
	TypePPEViolation  DetectionType = "ppe_violation"
	TypeSurfaceDamage DetectionType = "surface_damage"
	TypeLeak          DetectionType = "leak"
	TypeContamination DetectionType = "contamination"
	TypeSafetyHazard  DetectionType = "safety_hazard"
)

// Severity grades a detection.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// Rank orders severities so callers can filter by a minimum.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// Level grades baseline deviations and overall risk.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Status tracks a detection through investigation.
type Status string

const (
	StatusDetected      Status = "detected"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
)

// Detection is a raw finding from the vision model.
type Detection struct {
	ID         string        `json:"id"`
	Type       DetectionType `json:"type"`
	Location   string        `json:"location"`
	Confidence float64       `json:"confidence"`
	Timestamp  *time.Time    `json:"timestamp,omitempty"`
}

// Result is a graded, scored and routable detection.
type Result struct {
	ID                string        `json:"id"`
	Type              DetectionType `json:"type"`
	Severity          Severity      `json:"severity"`
	Location          string        `json:"location"`
	Timestamp         time.Time     `json:"timestamp"`
	Confidence        float64       `json:"confidence"`
	Recommendation    string        `json:"recommendation"`
	PriorityScore     int           `json:"priority_score"`
	AlertRecipients   []string      `json:"alert_recipients"`
	Status            Status        `json:"status"`
	RequiresImmediate bool          `json:"requires_immediate"`
}
