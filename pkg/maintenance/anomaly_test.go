package maintenance

import (
	"testing"

	"github.com/pharmames/pharmames/pkg/ident"
)

func newTestEngine() *Engine {
	return New(&ident.Sequence{Prefix: "m"}, ident.FixedClock(baseTime))
}

func TestDetectAnomalies_OrderAndIDs(t *testing.T) {
	e := newTestEngine()
	samples := []SensorSample{
		{Vibration: 8.0, Temperature: 85, MotorLoad: 97, Timestamp: baseTime},
		{Vibration: 1.0, Temperature: 20, MotorLoad: 50, Timestamp: baseTime.Add(1)},
		{Vibration: 5.5, Temperature: 66, MotorLoad: 91, Timestamp: baseTime.Add(2)},
	}
	got := e.DetectAnomalies(samples, Thresholds{})

	want := []struct {
		id       string
		source   string
		severity Severity
	}{
		{"m-1", SourceVibration, SeverityHigh},
		{"m-2", SourceTemperature, SeverityHigh},
		{"m-3", SourceMotorLoad, SeverityHigh},
		{"m-4", SourceVibration, SeverityLow},
		{"m-5", SourceTemperature, SeverityLow},
		{"m-6", SourceMotorLoad, SeverityMedium},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d anomalies, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].Source != w.source || got[i].Severity != w.severity {
			t.Errorf("anomaly[%d] = {%s %s %s}, want {%s %s %s}",
				i, got[i].ID, got[i].Source, got[i].Severity, w.id, w.source, w.severity)
		}
	}
	if !got[3].Timestamp.Equal(samples[2].Timestamp) {
		t.Errorf("anomaly timestamp = %v, want sample timestamp", got[3].Timestamp)
	}
}

func TestDetectAnomalies_Descriptions(t *testing.T) {
	e := newTestEngine()
	got := e.DetectAnomalies([]SensorSample{{Vibration: 6.25, Temperature: 70, MotorLoad: 92.5}}, Thresholds{})
	want := []string{
		"High vibration detected: 6.25 mm/s (threshold: 5 mm/s)",
		"High temperature detected: 70.0°C (threshold: 65°C)",
		"Motor overload detected: 92.5% (threshold: 90%)",
	}
	for i, w := range want {
		if got[i].Description != w {
			t.Errorf("description[%d] = %q, want %q", i, got[i].Description, w)
		}
	}
}

func TestDetectAnomalies_DescriptionKeepsThresholdPrecision(t *testing.T) {
	e := newTestEngine()
	got := e.DetectAnomalies([]SensorSample{{Vibration: 6, Temperature: 70.5, MotorLoad: 93}},
		Thresholds{Vibration: 5.25, Temperature: 65.75, MotorLoad: 92.125})
	want := []string{
		"High vibration detected: 6.00 mm/s (threshold: 5.25 mm/s)",
		"High temperature detected: 70.5°C (threshold: 65.75°C)",
		"Motor overload detected: 93.0% (threshold: 92.125%)",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d anomalies, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Description != w {
			t.Errorf("description[%d] = %q, want %q", i, got[i].Description, w)
		}
	}
}

func TestDetectAnomalies_ThresholdOverride(t *testing.T) {
	e := newTestEngine()
	s := []SensorSample{{Vibration: 6, Temperature: 70, MotorLoad: 92}}
	got := e.DetectAnomalies(s, Thresholds{Vibration: 10, Temperature: 80, MotorLoad: 95})
	if len(got) != 0 {
		t.Errorf("got %d anomalies with raised thresholds, want 0", len(got))
	}
}

func TestDetectAnomalies_PartialOverrideKeepsDefaults(t *testing.T) {
	e := newTestEngine()
	got := e.DetectAnomalies([]SensorSample{{Vibration: 6, Temperature: 66}}, Thresholds{Vibration: 10})
	if len(got) != 1 || got[0].Source != SourceTemperature {
		t.Errorf("got %+v, want a single temperature anomaly", got)
	}
}

func TestSeverity_MonotonicInValue(t *testing.T) {
	th := DefaultThresholds()
	checks := []struct {
		name string
		fn   func(v float64) Severity
		from float64
	}{
		{"vibration", func(v float64) Severity { return vibrationSeverity(v, th.Vibration) }, th.Vibration},
		{"temperature", func(v float64) Severity { return temperatureSeverity(v, th.Temperature) }, th.Temperature},
		{"motor load", motorLoadSeverity, th.MotorLoad},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			prev := 0
			for v := c.from + 0.01; v < c.from*3; v += 0.05 {
				r := c.fn(v).Rank()
				if r < prev {
					t.Fatalf("severity dropped at %.2f", v)
				}
				prev = r
			}
		})
	}
}

func TestSeverityRank(t *testing.T) {
	if !(SeverityHigh.Rank() > SeverityMedium.Rank() && SeverityMedium.Rank() > SeverityLow.Rank()) {
		t.Error("severity ranks not ordered")
	}
	if Severity("bogus").Rank() != 0 {
		t.Error("unknown severity should rank 0")
	}
}
