package maintenance

import (
	"fmt"
	"time"
)

// Decision thresholds.
const (
	warningHealth   = 70.0
	criticalHealth  = 50.0
	urgentHealth    = 30.0
	degradedHealth  = 60.0
	warningRULHours = 500.0

	generalDuration     = 2 * time.Hour
	replacementDuration = 4 * time.Hour
)

// Decision is the maintenance verdict for one component.
type Decision struct {
	ID                  string        `json:"id"`
	ComponentName       string        `json:"component_name"`
	RequiresMaintenance bool          `json:"requires_maintenance"`
	MaintenanceType     Type          `json:"maintenance_type,omitempty"`
	Priority            Priority      `json:"priority"`
	Reasoning           string        `json:"reasoning"`
	EstimatedDuration   time.Duration `json:"-"`
	DurationHours       float64       `json:"estimated_duration_hours"`
	SuggestedTime       time.Time     `json:"suggested_time"`
	IdleWindow          Window        `json:"idle_window"`
}

// AnalyzeComponent decides whether c needs maintenance, of which kind and how
// urgently, and proposes the first idle window in schedule long enough for it.
func (e *Engine) AnalyzeComponent(c ComponentHealth, schedule []ScheduledBatch) Decision {
	required := c.Health < warningHealth || c.RUL < warningRULHours || c.Trend == TrendCritical

	d := Decision{
		ID:                  e.ids.NewID(),
		ComponentName:       c.Name,
		RequiresMaintenance: required,
		Priority:            PriorityLow,
		EstimatedDuration:   generalDuration,
	}

	switch {
	case !required:
		d.Reasoning = fmt.Sprintf("Component health at %.0f%% with RUL of %.0fh. No maintenance required.",
			c.Health, c.RUL)
	case c.Health < criticalHealth || c.Trend == TrendCritical:
		d.MaintenanceType = TypeSpareReplacement
		d.EstimatedDuration = replacementDuration
		d.Priority = PriorityHigh
		if c.Health < urgentHealth {
			d.Priority = PriorityCritical
		}
		d.Reasoning = fmt.Sprintf("Critical condition detected. Health: %.0f%%, Trend: %s. Spare replacement required.",
			c.Health, c.Trend)
	default:
		d.MaintenanceType = TypeGeneral
		d.Priority = PriorityMedium
		if c.Health < degradedHealth {
			d.Priority = PriorityHigh
		}
		d.Reasoning = fmt.Sprintf("Preventive maintenance recommended. Health: %.0f%%, RUL: %.0fh. General maintenance sufficient.",
			c.Health, c.RUL)
	}

	d.IdleWindow = e.FindIdleWindow(schedule, d.EstimatedDuration)
	d.SuggestedTime = d.IdleWindow.Start
	d.DurationHours = d.EstimatedDuration.Hours()
	return d
}
