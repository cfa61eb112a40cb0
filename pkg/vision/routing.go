package vision

import "time"

// Routing tells the notification layer who to reach, how and by when.
type Routing struct {
	DetectionID          string    `json:"detection_id"`
	Recipients           []string  `json:"recipients"`
	NotificationMethods  []string  `json:"notification_methods"`
	EscalationPath       []string  `json:"escalation_path"`
	ResponseDeadline     time.Time `json:"response_deadline"`
	AutoEscalate         bool      `json:"auto_escalate"`
	WorkflowIntegrations []string  `json:"workflow_integrations"`
}

// RouteAlert derives the notification plan for r. The deadline is measured
// from now.
func RouteAlert(r Result, now time.Time) Routing {
	rule, ok := routing[r.Severity]
	if !ok {
		rule = routing[SeverityMinor]
	}
	return Routing{
		DetectionID:          r.ID,
		Recipients:           append([]string(nil), r.AlertRecipients...),
		NotificationMethods:  append([]string(nil), rule.methods...),
		EscalationPath:       append([]string(nil), rule.escalation...),
		ResponseDeadline:     now.Add(rule.deadline),
		AutoEscalate:         rule.auto,
		WorkflowIntegrations: lookupList(workflowIntegrations, r.Type, defaultIntegrations),
	}
}

// RouteAlert is RouteAlert evaluated at the engine clock.
func (e *Engine) RouteAlert(r Result) Routing {
	return RouteAlert(r, e.clock.Now())
}
