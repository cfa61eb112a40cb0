package compute

import (
	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/types"
	"github.com/pharmames/pharmames/pkg/yield"
)

// Weight constants for the line health score formula.
// They must sum to 1.0.
const (
	weightAnomaly = 0.40
	weightDrift   = 0.40
	weightUptime  = 0.20
)

// Penalties applied to a factor by the worst finding's severity.
const (
	penaltyHigh   = 1.0
	penaltyMedium = 0.5
	penaltyLow    = 0.2
)

// Input holds the findings of one Process cycle.
type Input struct {
	Anomalies []maintenance.Anomaly
	Drifts    []yield.Drift

	// UptimePct is the percentage of recent scrape cycles that returned
	// telemetry. 100 = always reachable, 0 = never reachable.
	UptimePct float64
}

// Output is the result of the line score calculation.
type Output struct {
	// Score is the composite health score in the range 0–100.
	Score float64

	// State follows the worst finding: high → critical, medium → degraded,
	// anything else → healthy.
	State string

	AnomalyFactor float64
	DriftFactor   float64
	UptimeFactor  float64
}

// Compute grades one cycle of findings.
//
//	score = (
//	    (1 - anomaly_penalty) * 0.40 +
//	    (1 - drift_penalty)   * 0.40 +
//	    uptime_pct/100        * 0.20
//	) * 100
//
// where each penalty comes from the worst severity seen for that engine.
func Compute(in Input) Output {
	worstAnomaly := 0
	for _, a := range in.Anomalies {
		worstAnomaly = max(worstAnomaly, a.Severity.Rank())
	}
	worstDrift := 0
	for _, d := range in.Drifts {
		worstDrift = max(worstDrift, d.Severity.Rank())
	}

	anomalyFactor := 1 - penaltyFor(worstAnomaly)
	driftFactor := 1 - penaltyFor(worstDrift)
	uptimeFactor := clamp01(in.UptimePct / 100)

	score := (anomalyFactor*weightAnomaly +
		driftFactor*weightDrift +
		uptimeFactor*weightUptime) * 100

	return Output{
		Score:         score,
		State:         stateFromRank(max(worstAnomaly, worstDrift)),
		AnomalyFactor: anomalyFactor,
		DriftFactor:   driftFactor,
		UptimeFactor:  uptimeFactor,
	}
}

// Both engines rank low=1, medium=2, high=3.
func penaltyFor(rank int) float64 {
	switch rank {
	case 3:
		return penaltyHigh
	case 2:
		return penaltyMedium
	case 1:
		return penaltyLow
	default:
		return 0
	}
}

func stateFromRank(rank int) string {
	switch {
	case rank >= 3:
		return types.StateCritical
	case rank == 2:
		return types.StateDegraded
	default:
		return types.StateHealthy
	}
}

// clamp01 restricts v to the range [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
