package scheduling

import "fmt"

// IssueSeverity grades a validation issue.
type IssueSeverity string

const (
	IssueError   IssueSeverity = "error"
	IssueWarning IssueSeverity = "warning"
)

// Issue is one problem found while validating a schedule.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// Validation is the go/no-go verdict for a schedule.
type Validation struct {
	IsValid         bool     `json:"is_valid"`
	CanProceed      bool     `json:"can_proceed"`
	Issues          []Issue  `json:"issues"`
	ErrorCount      int      `json:"error_count"`
	WarningCount    int      `json:"warning_count"`
	Recommendations []string `json:"recommendations"`
}

// ValidateSchedule lists every issue with running groups under the current
// conditions. Equipment failures are errors, but production may still
// proceed on backup equipment when any failure is reported.
func ValidateSchedule(groups []Group, conditions []Condition, failures []EquipmentFailure) Validation {
	issues := []Issue{}
	add := func(sev IssueSeverity, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	for _, f := range failures {
		add(IssueError, "%s on %s is offline - batches diverted to backup", f.ProcessName, f.LineID)
	}
	for _, c := range conditions {
		switch c.Status {
		case ConditionBlocked:
			add(IssueError, "%s at %s: %s", c.Name, c.Unit, c.Detail)
		case ConditionWarning:
			add(IssueWarning, "%s at %s: %s", c.Name, c.Unit, c.Detail)
		}
	}
	for _, g := range groups {
		if len(g.Batches) == 0 {
			add(IssueWarning, "Empty batch group: %s", g.Label)
		}
	}
	qa, hasQA := findCondition(conditions, "Room Clearance", "QA")
	for _, g := range groups {
		if g.CleaningRequired == CleaningFull && hasQA && qa.Status != ConditionReady {
			add(IssueWarning, "QA clearance pending for %s group", g.Label)
		}
	}

	v := Validation{Issues: issues}
	for _, i := range issues {
		switch i.Severity {
		case IssueError:
			v.ErrorCount++
		case IssueWarning:
			v.WarningCount++
		}
	}
	v.IsValid = v.ErrorCount == 0
	v.CanProceed = v.ErrorCount == 0 || len(failures) > 0
	v.Recommendations = validationRecommendations(v, len(failures) > 0)
	return v
}

func validationRecommendations(v Validation, failures bool) []string {
	var out []string
	if failures {
		out = append(out,
			"Continue production using backup equipment while maintenance addresses failures",
			"Monitor backup equipment capacity to prevent overload")
	}
	if v.ErrorCount > 0 && !failures {
		out = append(out, "Resolve blocking conditions before proceeding with scheduled batches")
	}
	if v.WarningCount > 0 {
		out = append(out, "Review and address warnings to maintain optimal schedule efficiency")
	}
	if len(v.Issues) == 0 {
		out = append(out, "All conditions nominal - proceed with optimized schedule")
	}
	return out
}
