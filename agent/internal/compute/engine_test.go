package compute

import (
	"errors"
	"testing"
	"time"

	"github.com/pharmames/pharmames/agent/internal/scraper"
	"github.com/pharmames/pharmames/pkg/ident"
	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/types"
	"github.com/pharmames/pharmames/pkg/yield"
)

// baseTime is a fixed reference point so all test timings are deterministic.
var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// tick returns baseTime advanced by n minutes.
func tick(n int) time.Time {
	return baseTime.Add(time.Duration(n) * time.Minute)
}

func newTestEngine(window int) *Engine {
	return NewEngine(maintenance.DefaultThresholds(), window, &ident.Sequence{Prefix: "t"}, ident.FixedClock(baseTime))
}

// nominal returns an in-spec reading for the given source.
func nominal(id string, weight float64) *scraper.Reading {
	return &scraper.Reading{
		SourceID:   id,
		SourceType: "press",
		ScrapedAt:  baseTime,
		Signals: yield.Signals{
			Weight: weight, Thickness: 4, Hardness: 12,
			FeederSpeed: 30, TurretSpeed: 45, Vacuum: -50,
			PreCompressionForce: 3, MainCompressionForce: 15,
		},
		Sensor: maintenance.SensorSample{Vibration: 2, MotorLoad: 70, Temperature: 40},
	}
}

func TestEngine_NominalReadingIsHealthy(t *testing.T) {
	e := newTestEngine(5)
	out := e.Process(nominal("line-1", 250), tick(0))

	if out.State != types.StateHealthy {
		t.Errorf("State = %q, want %q", out.State, types.StateHealthy)
	}
	if out.WindowFill != 1 {
		t.Errorf("WindowFill = %d, want 1", out.WindowFill)
	}
	if out.Signals == nil || out.Sensor == nil {
		t.Fatal("snapshot should carry the latest signals and sensor sample")
	}
	if len(out.Anomalies) != 0 || len(out.Drifts) != 0 {
		t.Errorf("unexpected findings: %+v %+v", out.Anomalies, out.Drifts)
	}
	if !almostEqual(out.HealthScore, 100, 0.001) {
		t.Errorf("HealthScore = %v, want 100", out.HealthScore)
	}
}

func TestEngine_ScrapeFailure_Unknown(t *testing.T) {
	e := newTestEngine(5)
	e.Process(nominal("line-1", 250), tick(0))

	failed := &scraper.Reading{SourceID: "line-1", SourceType: "press", Err: errors.New("connection refused")}
	out := e.Process(failed, tick(1))

	if out.State != types.StateUnknown {
		t.Errorf("State = %q, want %q", out.State, types.StateUnknown)
	}
	if out.ErrorMessage != "connection refused" {
		t.Errorf("ErrorMessage = %q", out.ErrorMessage)
	}
	if out.WindowFill != 1 {
		t.Errorf("WindowFill = %d, want 1 (failure must not touch the window)", out.WindowFill)
	}
	if !almostEqual(out.UptimePct, 50, 0.001) {
		t.Errorf("UptimePct = %v, want 50", out.UptimePct)
	}
}

func TestEngine_AnomalyDrivesState(t *testing.T) {
	e := newTestEngine(5)
	r := nominal("line-1", 250)
	r.Sensor.Vibration = 8 // > 1.5 × 5 → high
	out := e.Process(r, tick(0))

	if len(out.Anomalies) != 1 {
		t.Fatalf("Anomalies = %d, want 1", len(out.Anomalies))
	}
	if out.Anomalies[0].Source != maintenance.SourceVibration {
		t.Errorf("Source = %q", out.Anomalies[0].Source)
	}
	if out.State != types.StateCritical {
		t.Errorf("State = %q, want %q", out.State, types.StateCritical)
	}
}

func TestEngine_DriftOverFullWindow(t *testing.T) {
	e := newTestEngine(5)
	var out *types.LineSnapshot
	// Weight climbs 1 mg per reading: slope 1, well above the flat threshold.
	for i := 0; i < 5; i++ {
		out = e.Process(nominal("line-1", 250+float64(i)), tick(i))
		if i < 4 && len(out.Drifts) != 0 {
			t.Fatalf("reading %d: drift reported before window filled", i)
		}
	}

	if out.WindowFill != 5 {
		t.Errorf("WindowFill = %d, want 5", out.WindowFill)
	}
	var weight *yield.Drift
	for i := range out.Drifts {
		if out.Drifts[i].Parameter == yield.ParamWeight {
			weight = &out.Drifts[i]
		}
	}
	if weight == nil {
		t.Fatalf("expected weight drift, got %+v", out.Drifts)
	}
	if weight.Direction != yield.DirectionIncreasing {
		t.Errorf("Direction = %q, want increasing", weight.Direction)
	}
}

func TestEngine_WindowIsBounded(t *testing.T) {
	e := newTestEngine(3)
	var out *types.LineSnapshot
	for i := 0; i < 10; i++ {
		out = e.Process(nominal("line-1", 250), tick(i))
	}
	if out.WindowFill != 3 {
		t.Errorf("WindowFill = %d, want 3", out.WindowFill)
	}
}

func TestEngine_SetPolicy(t *testing.T) {
	e := newTestEngine(10)
	for i := 0; i < 8; i++ {
		e.Process(nominal("line-1", 250), tick(i))
	}

	th := maintenance.DefaultThresholds()
	th.MotorLoad = 60
	e.SetPolicy(th, 4)

	out := e.Process(nominal("line-1", 250), tick(9))
	if out.WindowFill != 4 || out.WindowSize != 4 {
		t.Errorf("WindowFill/WindowSize = %d/%d, want 4/4 after shrinking the window", out.WindowFill, out.WindowSize)
	}
	if len(out.Anomalies) != 1 || out.Anomalies[0].Source != maintenance.SourceMotorLoad {
		t.Errorf("expected motor load anomaly with lowered threshold, got %+v", out.Anomalies)
	}
}

func TestEngine_SourcesIndependent(t *testing.T) {
	e := newTestEngine(5)
	e.Process(&scraper.Reading{SourceID: "a", Err: errors.New("down")}, tick(0))
	out := e.Process(nominal("b", 250), tick(0))
	if !almostEqual(out.UptimePct, 100, 0.001) {
		t.Errorf("source b UptimePct = %v, want 100", out.UptimePct)
	}
}

func TestEngine_UptimeWindowRolls(t *testing.T) {
	e := newTestEngine(5)
	for i := 0; i < uptimeWindow; i++ {
		e.Process(&scraper.Reading{SourceID: "a", Err: errors.New("down")}, tick(i))
	}
	var out *types.LineSnapshot
	for i := 0; i < uptimeWindow; i++ {
		out = e.Process(nominal("a", 250), tick(uptimeWindow+i))
	}
	if !almostEqual(out.UptimePct, 100, 0.001) {
		t.Errorf("UptimePct = %v, want 100 once failures roll out", out.UptimePct)
	}
}

func TestEngine_Forget(t *testing.T) {
	e := newTestEngine(5)
	e.Process(nominal("a", 250), tick(0))
	e.Forget("a")
	out := e.Process(nominal("a", 250), tick(1))
	if out.WindowFill != 1 {
		t.Errorf("WindowFill = %d, want 1 after Forget", out.WindowFill)
	}
}

func TestEngine_RepeatedSampleNotCountedTwice(t *testing.T) {
	e := newTestEngine(5)
	r := nominal("line-1", 250)
	r.Sensor.Vibration = 6.2 // over the default 5.0 limit

	first := e.Process(r, tick(0))
	if len(first.Anomalies) != 1 || first.Repeated {
		t.Fatalf("first: anomalies = %d, repeated = %v", len(first.Anomalies), first.Repeated)
	}

	again := *r
	again.Repeat = true
	for i := 1; i <= 3; i++ {
		out := e.Process(&again, tick(i))
		if out.WindowFill != 1 {
			t.Errorf("tick %d: WindowFill = %d, want 1", i, out.WindowFill)
		}
		if !out.Repeated {
			t.Errorf("tick %d: snapshot not marked repeated", i)
		}
		if len(out.Anomalies) != 1 || out.Anomalies[0].ID != first.Anomalies[0].ID {
			t.Errorf("tick %d: anomalies = %+v, want the original finding", i, out.Anomalies)
		}
		if out.State != first.State {
			t.Errorf("tick %d: State = %q, want %q", i, out.State, first.State)
		}
	}

	fresh := nominal("line-1", 251)
	if out := e.Process(fresh, tick(4)); out.WindowFill != 2 || out.Repeated {
		t.Errorf("fresh sample: WindowFill = %d, repeated = %v", out.WindowFill, out.Repeated)
	}
}

func TestEngine_RepeatBeforeAnySampleIsFresh(t *testing.T) {
	e := newTestEngine(5)
	r := nominal("line-1", 250)
	r.Repeat = true
	out := e.Process(r, tick(0))
	if out.Repeated || out.WindowFill != 1 {
		t.Errorf("repeated = %v, WindowFill = %d, want fresh sample", out.Repeated, out.WindowFill)
	}
}
