package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric names exported by pharmames-server.
const (
	RequestsTotal = "pharmames_requests_total"
	FindingsTotal = "pharmames_findings_total"
	LinesLive     = "pharmames_lines_live"
	StreamClients = "pharmames_stream_clients"
)

type entry struct {
	labels map[string]string
	value  float64
}

// Registry is a concurrency-safe set of counters and gauges keyed by name
// and label set.
type Registry struct {
	mu       sync.Mutex
	help     map[string]string
	counters map[string]map[string]*entry // name → label key → entry
	gauges   map[string]map[string]*entry
}

// NewRegistry returns a Registry with the server metrics described.
func NewRegistry() *Registry {
	r := &Registry{
		help:     make(map[string]string),
		counters: make(map[string]map[string]*entry),
		gauges:   make(map[string]map[string]*entry),
	}
	r.Describe(RequestsTotal, "Decision engine operations served, by operation.")
	r.Describe(FindingsTotal, "Findings produced by the decision engines, by engine and severity.")
	r.Describe(LinesLive, "Production lines with a live snapshot.")
	r.Describe(StreamClients, "Connected WebSocket stream clients.")
	return r
}

// Describe sets the HELP text of a metric.
func (r *Registry) Describe(name, help string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.help[name] = help
}

// IncCounter adds delta to the counter name{labels}. Non-positive deltas are ignored.
func (r *Registry) IncCounter(name string, labels map[string]string, delta float64) {
	if delta <= 0 {
		return
	}
	k, lcopy := labelKey(labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	series := r.counters[name]
	if series == nil {
		series = make(map[string]*entry)
		r.counters[name] = series
	}
	e := series[k]
	if e == nil {
		e = &entry{labels: lcopy}
		series[k] = e
	}
	e.value += delta
}

// SetGauge sets the gauge name{labels} to value.
func (r *Registry) SetGauge(name string, labels map[string]string, value float64) {
	k, lcopy := labelKey(labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	series := r.gauges[name]
	if series == nil {
		series = make(map[string]*entry)
		r.gauges[name] = series
	}
	series[k] = &entry{labels: lcopy, value: value}
}

// Value returns the current value of a counter or gauge, or 0.
func (r *Registry) Value(name string, labels map[string]string) float64 {
	k, _ := labelKey(labels)
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := r.counters[name][k]; e != nil {
		return e.value
	}
	if e := r.gauges[name][k]; e != nil {
		return e.value
	}
	return 0
}

// Request counts one served engine operation.
func (r *Registry) Request(operation string) {
	r.IncCounter(RequestsTotal, map[string]string{"operation": operation}, 1)
}

// Finding counts n findings of one severity produced by engine.
func (r *Registry) Finding(engine, severity string, n int) {
	r.IncCounter(FindingsTotal, map[string]string{"engine": engine, "severity": severity}, float64(n))
}

// SetLinesLive records the number of lines with a live snapshot.
func (r *Registry) SetLinesLive(n int) {
	r.SetGauge(LinesLive, nil, float64(n))
}

// SetStreamClients records the number of connected WebSocket clients.
func (r *Registry) SetStreamClients(n int) {
	r.SetGauge(StreamClients, nil, float64(n))
}

// Families converts the registry into metric families sorted by name.
func (r *Registry) Families() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*dto.MetricFamily, 0, len(r.counters)+len(r.gauges))
	for name, series := range r.counters {
		out = append(out, r.family(name, dto.MetricType_COUNTER, series))
	}
	for name, series := range r.gauges {
		out = append(out, r.family(name, dto.MetricType_GAUGE, series))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// family builds one MetricFamily. Callers hold r.mu.
func (r *Registry) family(name string, typ dto.MetricType, series map[string]*entry) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: ptr(name),
		Type: typ.Enum(),
	}
	if h, ok := r.help[name]; ok {
		mf.Help = ptr(h)
	}

	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		e := series[k]
		m := &dto.Metric{Label: labelPairs(e.labels)}
		if typ == dto.MetricType_COUNTER {
			m.Counter = &dto.Counter{Value: ptr(e.value)}
		} else {
			m.Gauge = &dto.Gauge{Value: ptr(e.value)}
		}
		mf.Metric = append(mf.Metric, m)
	}
	return mf
}

// WriteText renders all families in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Families() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Handler serves the text exposition.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		if err := r.WriteText(w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func labelKey(labels map[string]string) (string, map[string]string) {
	if len(labels) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	lcopy := make(map[string]string, len(labels))
	for _, k := range keys {
		lcopy[k] = labels[k]
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, "|"), lcopy
}

func labelPairs(labels map[string]string) []*dto.LabelPair {
	if len(labels) == 0 {
		return nil
	}
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]*dto.LabelPair, 0, len(names))
	for _, n := range names {
		out = append(out, &dto.LabelPair{Name: ptr(n), Value: ptr(labels[n])})
	}
	return out
}

func ptr[T any](v T) *T { return &v }
