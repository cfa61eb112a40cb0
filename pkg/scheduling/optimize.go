package scheduling

import (
	"fmt"
	"math"
	"strings"
)

const (
	minOperatorSkillLevel = 2
	targetEfficiencyGain  = 40
	largeRunBatches       = 5

	blockerPenalty   = 0.25
	warningPenalty   = 0.10
	violationPenalty = 0.15
)

// Optimization is the costed cleaning plan for a set of groups.
type Optimization struct {
	Groups                []Group        `json:"groups"`
	TotalBatches          int            `json:"total_batches"`
	TotalSavingsMinutes   int            `json:"total_savings_minutes"`
	EfficiencyGain        int            `json:"efficiency_gain"`
	BaselineCleaningTime  int            `json:"baseline_cleaning_time"`
	OptimizedCleaningTime int            `json:"optimized_cleaning_time"`
	Blockers              []ConditionRef `json:"blockers"`
	Warnings              []ConditionRef `json:"warnings"`
	ConstraintViolations  []string       `json:"constraint_violations"`
	Confidence            float64        `json:"confidence"`
	Insights              []string       `json:"insights"`
	IsOptimal             bool           `json:"is_optimal"`
}

// OptimizeSchedule costs groups against a full-clean-everything baseline:
//
//	baseline  = batches × 45
//	optimized = Σ group batches × group cleaning minutes
//	gain      = round((1 − optimized/baseline) × 100), 0 when baseline is 0
//
// Confidence starts at 1 and loses 0.25 per blocker, 0.10 per warning and
// 0.15 per constraint violation. The gain is not clamped.
func OptimizeSchedule(groups []Group, conditions []Condition, c *Constraints) Optimization {
	if c == nil {
		c = &Constraints{}
	}
	o := Optimization{
		Groups:               groups,
		Blockers:             []ConditionRef{},
		Warnings:             []ConditionRef{},
		ConstraintViolations: CheckConstraints(*c, conditions),
	}

	for _, g := range groups {
		o.TotalBatches += len(g.Batches)
		o.OptimizedCleaningTime += len(g.Batches) * g.CleaningTimeMinutes
		o.TotalSavingsMinutes += g.EstimatedSavings
	}
	o.BaselineCleaningTime = o.TotalBatches * fullCleaningMinutes
	if o.BaselineCleaningTime > 0 {
		ratio := float64(o.OptimizedCleaningTime) / float64(o.BaselineCleaningTime)
		o.EfficiencyGain = int(math.Round((1 - ratio) * 100))
	}

	for _, cond := range conditions {
		switch cond.Status {
		case ConditionBlocked:
			o.Blockers = append(o.Blockers, refOf(cond))
		case ConditionWarning:
			o.Warnings = append(o.Warnings, refOf(cond))
		}
	}

	conf := 1 -
		float64(len(o.Blockers))*blockerPenalty -
		float64(len(o.Warnings))*warningPenalty -
		float64(len(o.ConstraintViolations))*violationPenalty
	o.Confidence = math.Max(0, math.Min(1, math.Round(conf*100)/100))

	o.Insights = insights(groups, o.EfficiencyGain, len(o.Blockers))
	o.IsOptimal = len(o.Blockers) == 0 && len(o.ConstraintViolations) == 0
	return o
}

// CheckConstraints evaluates each resource constraint against the first
// condition whose name mentions it. Room clearance is always checked.
func CheckConstraints(c Constraints, conditions []Condition) []string {
	violations := []string{}

	if c.MinOperatorSkill != nil && *c.MinOperatorSkill > minOperatorSkillLevel {
		if cond, ok := findCondition(conditions, "Operator"); ok && cond.Status != ConditionReady {
			violations = append(violations, "Insufficient operator skill level available")
		}
	}
	if c.MaxMachineWear != nil && *c.MaxMachineWear != 0 {
		if cond, ok := findCondition(conditions, "Machine Wear"); ok && cond.Status == ConditionWarning {
			violations = append(violations, "Machine wear approaching maximum threshold")
		}
	}
	if cond, ok := findCondition(conditions, "Room Clearance"); ok && cond.Status != ConditionReady {
		violations = append(violations, "Room clearance not yet approved")
	}
	return violations
}

func findCondition(conditions []Condition, names ...string) (Condition, bool) {
	for _, c := range conditions {
		for _, n := range names {
			if strings.Contains(c.Name, n) {
				return c, true
			}
		}
	}
	return Condition{}, false
}

func insights(groups []Group, gain, blockers int) []string {
	out := []string{}
	switch {
	case gain >= targetEfficiencyGain:
		out = append(out, fmt.Sprintf("Optimal grouping achieved %d%% cleaning time reduction", gain))
	case gain > 0:
		out = append(out, fmt.Sprintf("Current grouping provides %d%% efficiency gain. Consider batch resequencing for further improvement.", gain))
	}

	for _, g := range groups {
		if g.Type == SameDrugSameDensity {
			if n := len(g.Batches); n >= largeRunBatches {
				out = append(out, fmt.Sprintf("Large same-product run (%d batches) maximizes throughput", n))
			}
			break
		}
	}

	if blockers > 0 {
		out = append(out, fmt.Sprintf("Schedule may be delayed due to %d blocking condition(s)", blockers))
	}

	noClean, anyNoClean := 0, false
	for _, g := range groups {
		if g.CleaningRequired == CleaningNone {
			anyNoClean = true
			noClean += len(g.Batches)
		}
	}
	if anyNoClean {
		out = append(out, fmt.Sprintf("%d batches require no cleaning changeover", noClean))
	}
	return out
}
