package vision

import "time"

// baseSeverity is the severity of a detection before confidence adjustment.
// Unlisted types start as minor.
var baseSeverity = map[DetectionType]Severity{
	TypePPEViolation:  SeverityModerate,
	TypeSurfaceDamage: SeverityModerate,
	TypeLeak:          SeverityCritical,
	TypeContamination: SeverityCritical,
	TypeSafetyHazard:  SeverityCritical,
}

var severityWeight = map[Severity]int{
	SeverityMinor:    20,
	SeverityModerate: 50,
	SeverityCritical: 90,
}

var typeWeight = map[DetectionType]int{
	TypeContamination: 10,
	TypeLeak:          10,
	TypeSafetyHazard:  8,
	TypePPEViolation:  5,
	TypeSurfaceDamage: 3,
}

var defaultRecipients = []string{"supervisor"}

var recipients = map[DetectionType][]string{
	TypePPEViolation:  {"supervisor", "safety_officer"},
	TypeSurfaceDamage: {"maintenance", "qa_inspector"},
	TypeLeak:          {"maintenance", "supervisor", "safety_officer"},
	TypeContamination: {"qa_inspector", "supervisor", "production_manager"},
	TypeSafetyHazard:  {"safety_officer", "supervisor", "security"},
}

var defaultIntegrations = []string{"MES"}

var workflowIntegrations = map[DetectionType][]string{
	TypePPEViolation:  {"MES", "Incident Management"},
	TypeSurfaceDamage: {"CMMS", "MES"},
	TypeLeak:          {"CMMS", "MES", "EHS"},
	TypeContamination: {"MES", "QMS", "Incident Management"},
	TypeSafetyHazard:  {"EHS", "Incident Management", "Security"},
}

// fallbackRecommendation is used for types without a template. %s is the location.
const fallbackRecommendation = "Review detection at %s and take appropriate action."

// recommendations holds one template per type and severity. %s is the location.
var recommendations = map[DetectionType]map[Severity]string{
	TypePPEViolation: {
		SeverityMinor:    "Remind personnel at %s to verify PPE compliance",
		SeverityModerate: "Immediately notify supervisor to address PPE violation at %s",
		SeverityCritical: "STOP WORK at %s - Critical PPE violation detected. Escort personnel to compliance area.",
	},
	TypeSurfaceDamage: {
		SeverityMinor:    "Schedule inspection of surface at %s during next maintenance window",
		SeverityModerate: "Create maintenance ticket for surface damage at %s. Assess structural integrity.",
		SeverityCritical: "URGENT: Cordon off %s. Immediate structural assessment required.",
	},
	TypeLeak: {
		SeverityMinor:    "Monitor potential leak at %s. Schedule plumbing inspection.",
		SeverityModerate: "Deploy containment at %s. Notify maintenance for leak repair.",
		SeverityCritical: "EMERGENCY: Evacuate %s. Shut off utilities. Deploy emergency response team.",
	},
	TypeContamination: {
		SeverityMinor:    "Initiate cleaning protocol at %s. Document for batch records.",
		SeverityModerate: "Quarantine area at %s. QA inspection required before resuming operations.",
		SeverityCritical: "STOP PRODUCTION: Contamination at %s. Initiate full investigation and batch quarantine.",
	},
	TypeSafetyHazard: {
		SeverityMinor:    "Address safety concern at %s. Update safety checklist.",
		SeverityModerate: "Clear personnel from %s. Safety officer review required.",
		SeverityCritical: "EVACUATE %s immediately. Emergency response protocols activated.",
	},
}

// routingRule is the notification policy for one severity.
type routingRule struct {
	methods    []string
	escalation []string
	deadline   time.Duration
	auto       bool
}

// routing falls back to the minor rule for unknown severities.
var routing = map[Severity]routingRule{
	SeverityCritical: {
		methods:    []string{"push", "sms", "alarm"},
		escalation: []string{"supervisor", "production_manager", "plant_manager"},
		deadline:   5 * time.Minute,
		auto:       true,
	},
	SeverityModerate: {
		methods:    []string{"push", "email"},
		escalation: []string{"supervisor", "production_manager"},
		deadline:   30 * time.Minute,
	},
	SeverityMinor: {
		methods:    []string{"push"},
		escalation: []string{"supervisor"},
		deadline:   120 * time.Minute,
	},
}

// lookupList returns a copy of m[k] or of def so callers cannot mutate the tables.
func lookupList(m map[DetectionType][]string, k DetectionType, def []string) []string {
	v, ok := m[k]
	if !ok {
		v = def
	}
	return append([]string(nil), v...)
}
