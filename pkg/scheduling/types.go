package scheduling

// Density is the powder density category of a product.
type Density string

const (
	DensityLow    Density = "low"
	DensityMedium Density = "medium"
	DensityHigh   Density = "high"
)

// BatchStatus is the queue state of a batch.
type BatchStatus string

const (
	BatchQueued     BatchStatus = "queued"
	BatchInProgress BatchStatus = "in-progress"
	BatchCompleted  BatchStatus = "completed"
)

// BatchOrder is one batch waiting for the press.
type BatchOrder struct {
	ID                string      `json:"id"`
	BatchNumber       string      `json:"batch_number"`
	ProductName       string      `json:"product_name"`
	Drug              string      `json:"drug"`
	Density           Density     `json:"density"`
	Status            BatchStatus `json:"status"`
	EstimatedDuration int         `json:"estimated_duration"` // minutes
	Priority          *int        `json:"priority,omitempty"`
}

// ConditionStatus is the state of a live production constraint.
type ConditionStatus string

const (
	ConditionReady   ConditionStatus = "ready"
	ConditionWarning ConditionStatus = "warning"
	ConditionBlocked ConditionStatus = "blocked"
)

// Condition is a live constraint signal such as room clearance or machine wear.
type Condition struct {
	ID     string          `json:"id,omitempty"`
	Unit   string          `json:"unit"`
	Name   string          `json:"name"`
	Status ConditionStatus `json:"status"`
	Detail string          `json:"detail"`
}

// ConditionRef identifies a blocking or warning condition in an Optimization.
type ConditionRef struct {
	Unit   string `json:"unit"`
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

func refOf(c Condition) ConditionRef {
	return ConditionRef{Unit: c.Unit, Name: c.Name, Detail: c.Detail}
}

// Constraints are optional resource requirements for a schedule.
type Constraints struct {
	MinOperatorSkill       *int     `json:"min_operator_skill,omitempty"`
	MaxMachineWear         *int     `json:"max_machine_wear,omitempty"`
	RequiredCertifications []string `json:"required_certifications,omitempty"`
}

// EquipmentFailure reports an offline process on a line.
type EquipmentFailure struct {
	ProcessName string `json:"processName"`
	LineID      string `json:"lineId"`
}
