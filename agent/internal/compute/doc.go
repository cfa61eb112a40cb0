// Package compute derives line state from scraper readings.
//
// score.go provides the pure Compute(Input) function that grades one cycle of
// findings into a line state and a composite health score (0–100):
// anomalies(40%) + drift(40%) + uptime(20%).
//
// engine.go provides the stateful Engine that keeps a rolling signal window
// per press, runs maintenance anomaly detection on every new sensor sample and
// yield drift detection over the window. Engine.Process accepts an injectable
// time.Time so tests are deterministic.
//
// States: critical (worst finding high), degraded (worst finding medium),
// healthy, unknown (scrape failed).
package compute
