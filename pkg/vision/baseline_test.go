package vision

import "testing"

func TestDetectBaselineDeviation(t *testing.T) {
	e := newTestEngine()
	current := Metrics{PPECompliance: 86, SurfaceCondition: 97.5, EnvironmentalNorm: 93, SafetyScore: 94.5}
	got := e.DetectBaselineDeviation(current, nil)

	want := []struct {
		metric   string
		dev      float64
		severity Level
		trend    string
		action   string
	}{
		{"PPE Compliance", 12, LevelHigh, "declining", "Conduct immediate PPE audit and refresher training"},
		{"Environmental", 6, LevelMedium, "declining", "Investigate HVAC and environmental controls immediately"},
		{"Safety Score", 1.5, LevelLow, "stable", "Review recent safety incidents and near-misses"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d deviations, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		d := got[i]
		if d.Metric != w.metric || d.Severity != w.severity || d.Trend != w.trend || d.RecommendedAction != w.action {
			t.Errorf("[%d] = {%s %s %s %q}, want {%s %s %s %q}",
				i, d.Metric, d.Severity, d.Trend, d.RecommendedAction, w.metric, w.severity, w.trend, w.action)
		}
		if d.Deviation != w.dev {
			t.Errorf("[%d] Deviation = %v, want %v", i, d.Deviation, w.dev)
		}
		if !d.DetectedAt.Equal(baseTime) {
			t.Errorf("[%d] DetectedAt = %v, want clock now", i, d.DetectedAt)
		}
	}
}

func TestDetectBaselineDeviation_AboveTargetNotReported(t *testing.T) {
	e := newTestEngine()
	if got := e.DetectBaselineDeviation(Metrics{100, 100, 100, 100}, nil); len(got) != 0 {
		t.Errorf("KPIs above target produced deviations: %+v", got)
	}
}

func TestDetectBaselineDeviation_CustomTargets(t *testing.T) {
	e := newTestEngine()
	targets := Metrics{PPECompliance: 90, SurfaceCondition: 90, EnvironmentalNorm: 90, SafetyScore: 90}
	got := e.DetectBaselineDeviation(Metrics{PPECompliance: 85, SurfaceCondition: 95, EnvironmentalNorm: 95, SafetyScore: 95}, &targets)
	if len(got) != 1 || got[0].Metric != "PPE Compliance" || got[0].Severity != LevelMedium {
		t.Errorf("got %+v, want a single medium PPE deviation", got)
	}
	if got[0].RecommendedAction != "Review PPE compliance during next shift change" {
		t.Errorf("deviation of exactly 5 should keep the monitoring action, got %q", got[0].RecommendedAction)
	}
}
