package compute

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pharmames/pharmames/agent/internal/scraper"
	"github.com/pharmames/pharmames/pkg/ident"
	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/types"
	"github.com/pharmames/pharmames/pkg/yield"
)

// uptimeWindow is the number of recent scrape outcomes tracked for uptime %.
const uptimeWindow = 20

// Engine maintains a rolling signal window per press and turns every new
// Reading into a LineSnapshot: anomaly detection on the new sensor sample,
// drift detection over the window.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	maint *maintenance.Engine
	yield *yield.Engine

	mu         sync.Mutex
	thresholds maintenance.Thresholds
	window     int
	states     map[string]*sourceState
}

// NewEngine returns a ready-to-use Engine. A window below 2 selects
// yield.DefaultDriftWindow.
func NewEngine(thresholds maintenance.Thresholds, window int, ids ident.Generator, clock ident.Clock) *Engine {
	if window < 2 {
		window = yield.DefaultDriftWindow
	}
	return &Engine{
		maint:      maintenance.New(ids, clock),
		yield:      yield.New(ids, clock),
		thresholds: thresholds,
		window:     window,
		states:     make(map[string]*sourceState),
	}
}

// SetPolicy swaps the anomaly thresholds and drift window. Windows that
// shrink are trimmed to their newest signals.
func (e *Engine) SetPolicy(thresholds maintenance.Thresholds, window int) {
	if window < 2 {
		window = yield.DefaultDriftWindow
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thresholds = thresholds
	e.window = window
	for _, st := range e.states {
		st.trim(window)
	}
	slog.Info("compute: policy updated", "window", window,
		"vibration", thresholds.Vibration, "temperature", thresholds.Temperature, "motor_load", thresholds.MotorLoad)
}

// Process ingests a Reading and returns the derived snapshot.
//
// now is passed explicitly so callers (and tests) control the clock without
// sleeping. Use time.Now() in production.
//
// A failed scrape leaves the window untouched and yields State "unknown".
func (e *Engine) Process(r *scraper.Reading, now time.Time) *types.LineSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateFor(r.SourceID)
	success := r.Err == nil
	st.recordScrape(success)

	out := &types.LineSnapshot{
		SourceID:   r.SourceID,
		SourceType: r.SourceType,
		Timestamp:  now,
		UptimePct:  st.uptimePct(),
		WindowSize: e.window,
	}

	if !success {
		slog.Warn("compute: scrape failed, marking unknown",
			"source", r.SourceID, "err", r.Err)
		out.State = types.StateUnknown
		out.ErrorMessage = r.Err.Error()
		out.WindowFill = len(st.signals)
		return out
	}

	sig, sensor := r.Signals, r.Sensor
	out.Signals = &sig
	out.Sensor = &sensor

	// A repeated sample keeps the findings it already produced and stays out
	// of the window.
	if r.Repeat && st.seen {
		out.Repeated = true
		out.Anomalies = st.anomalies
		out.Drifts = st.drifts
	} else {
		st.push(r.Signals, e.window)
		out.Anomalies = e.maint.DetectAnomalies([]maintenance.SensorSample{sensor}, e.thresholds)
		out.Drifts = e.yield.DetectDrift(st.signals, e.window)
		st.seen, st.anomalies, st.drifts = true, out.Anomalies, out.Drifts
	}
	out.WindowFill = len(st.signals)

	score := Compute(Input{
		Anomalies: out.Anomalies,
		Drifts:    out.Drifts,
		UptimePct: out.UptimePct,
	})
	out.State = score.State
	out.HealthScore = score.Score

	if len(out.Anomalies) > 0 || len(out.Drifts) > 0 {
		slog.Debug("compute: findings",
			"source", r.SourceID, "anomalies", len(out.Anomalies), "drifts", len(out.Drifts), "state", out.State)
	}
	return out
}

// Forget drops all state for a source that is no longer configured.
func (e *Engine) Forget(sourceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.states, sourceID)
}

// sourceState holds the signal window and uptime history for one press.
type sourceState struct {
	signals []yield.Signals // newest last
	history []bool          // scrape outcomes, newest last

	// findings of the last fresh sample
	seen      bool
	anomalies []maintenance.Anomaly
	drifts    []yield.Drift
}

func (e *Engine) stateFor(id string) *sourceState {
	if st, ok := e.states[id]; ok {
		return st
	}
	st := &sourceState{}
	e.states[id] = st
	return st
}

func (st *sourceState) push(s yield.Signals, window int) {
	st.signals = append(st.signals, s)
	st.trim(window)
}

func (st *sourceState) trim(window int) {
	if over := len(st.signals) - window; over > 0 {
		st.signals = append([]yield.Signals(nil), st.signals[over:]...)
	}
}

func (st *sourceState) recordScrape(success bool) {
	if len(st.history) >= uptimeWindow {
		st.history = st.history[1:]
	}
	st.history = append(st.history, success)
}

func (st *sourceState) uptimePct() float64 {
	if len(st.history) == 0 {
		return 100 // assume up before first observation
	}
	var ok int
	for _, s := range st.history {
		if s {
			ok++
		}
	}
	return float64(ok) / float64(len(st.history)) * 100
}
