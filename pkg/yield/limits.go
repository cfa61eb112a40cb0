package yield

// Limit is an SOP-approved operating range for one press parameter.
type Limit struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Unit string  `json:"unit" yaml:"unit"`
}

// Contains reports whether v lies in [Min, Max].
func (l Limit) Contains(v float64) bool { return v >= l.Min && v <= l.Max }

// Clamp restricts v to [Min, Max].
func (l Limit) Clamp(v float64) float64 {
	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// SOPLimits are the operating ranges a recommendation may never leave.
type SOPLimits struct {
	FeederSpeed          Limit `json:"feeder_speed" yaml:"feeder_speed"`
	TurretSpeed          Limit `json:"turret_speed" yaml:"turret_speed"`
	PreCompressionForce  Limit `json:"pre_compression_force" yaml:"pre_compression_force"`
	MainCompressionForce Limit `json:"main_compression_force" yaml:"main_compression_force"`
	Vacuum               Limit `json:"vacuum" yaml:"vacuum"`
}

// DefaultSOPLimits returns the factory operating ranges.
func DefaultSOPLimits() SOPLimits {
	return SOPLimits{
		FeederSpeed:          Limit{Min: 20, Max: 35, Unit: "rpm"},
		TurretSpeed:          Limit{Min: 40, Max: 55, Unit: "rpm"},
		PreCompressionForce:  Limit{Min: 2, Max: 5, Unit: "kN"},
		MainCompressionForce: Limit{Min: 12, Max: 20, Unit: "kN"},
		Vacuum:               Limit{Min: -400, Max: -200, Unit: "mbar"},
	}
}

// Recommendation parameter names.
const (
	NameFeederSpeed          = "Feeder Speed"
	NameTurretSpeed          = "Turret Speed"
	NamePreCompressionForce  = "Pre-Compression Force"
	NameMainCompressionForce = "Main Compression Force"
	NameVacuum               = "Vacuum"
)

// ByName looks up the limit for a recommendation parameter name.
func (s SOPLimits) ByName(name string) (Limit, bool) {
	switch name {
	case NameFeederSpeed:
		return s.FeederSpeed, true
	case NameTurretSpeed:
		return s.TurretSpeed, true
	case NamePreCompressionForce:
		return s.PreCompressionForce, true
	case NameMainCompressionForce:
		return s.MainCompressionForce, true
	case NameVacuum:
		return s.Vacuum, true
	}
	return Limit{}, false
}

// Spec is a product quality specification for one attribute.
type Spec struct {
	Target    float64 `json:"target" yaml:"target"`
	Tolerance float64 `json:"tolerance,omitempty" yaml:"tolerance"`
	Min       float64 `json:"min,omitempty" yaml:"min"`
	Max       float64 `json:"max,omitempty" yaml:"max"`
}

// ProductSpecs are the quality targets of the product on the press.
type ProductSpecs struct {
	Weight    Spec `json:"weight" yaml:"weight"`
	Thickness Spec `json:"thickness" yaml:"thickness"`
	Hardness  Spec `json:"hardness" yaml:"hardness"`
}

// DefaultProductSpecs returns the specs of the reference 500 mg tablet.
func DefaultProductSpecs() ProductSpecs {
	return ProductSpecs{
		Weight:    Spec{Target: 500, Tolerance: 5},
		Thickness: Spec{Target: 4.5, Tolerance: 0.2},
		Hardness:  Spec{Target: 12, Min: 8, Max: 16},
	}
}
