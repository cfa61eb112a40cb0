package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/pharmames/pharmames/agent/internal/config"
)

// Press exposition metric names.
const (
	metricWeight         = "tablet_press_weight_mg"
	metricThickness      = "tablet_press_thickness_mm"
	metricHardness       = "tablet_press_hardness_kp"
	metricFeederSpeed    = "tablet_press_feeder_speed_rpm"
	metricTurretSpeed    = "tablet_press_turret_speed_rpm"
	metricVacuum         = "tablet_press_vacuum_mbar"
	metricPreCompression = "tablet_press_pre_compression_force_kn"
	metricMainCompress   = "tablet_press_main_compression_force_kn"
	metricVibration      = "tablet_press_vibration_mm_s"
	metricMotorLoad      = "tablet_press_motor_load_percent"
	metricTemperature    = "tablet_press_temperature_celsius"
)

// pressMetrics binds each exposition metric to the Reading field it fills.
var pressMetrics = []struct {
	name string
	set  func(r *Reading, v float64)
}{
	{metricWeight, func(r *Reading, v float64) { r.Signals.Weight = v }},
	{metricThickness, func(r *Reading, v float64) { r.Signals.Thickness = v }},
	{metricHardness, func(r *Reading, v float64) { r.Signals.Hardness = v }},
	{metricFeederSpeed, func(r *Reading, v float64) { r.Signals.FeederSpeed = v }},
	{metricTurretSpeed, func(r *Reading, v float64) { r.Signals.TurretSpeed = v }},
	{metricVacuum, func(r *Reading, v float64) { r.Signals.Vacuum = v }},
	{metricPreCompression, func(r *Reading, v float64) { r.Signals.PreCompressionForce = v }},
	{metricMainCompress, func(r *Reading, v float64) { r.Signals.MainCompressionForce = v }},
	{metricVibration, func(r *Reading, v float64) { r.Sensor.Vibration = v }},
	{metricMotorLoad, func(r *Reading, v float64) { r.Sensor.MotorLoad = v }},
	{metricTemperature, func(r *Reading, v float64) { r.Sensor.Temperature = v }},
}

// pressScraper polls a press controller's /metrics endpoint.
type pressScraper struct {
	src    config.Source
	client *http.Client
}

// Scrape fetches the exposition and maps every tablet_press_* gauge onto a
// Reading. Presses exposing several series per metric (one per station) are
// averaged. A missing metric marks the whole reading as failed.
func (s *pressScraper) Scrape(ctx context.Context) (*Reading, error) {
	now := time.Now().UTC()
	r := newReading(s.src, now)

	mfs, err := fetchMetrics(ctx, s.client, s.src.Endpoint)
	if err != nil {
		r.Err = err
		return r, nil
	}

	var missing []string
	for _, m := range pressMetrics {
		v, ok := meanFamily(mfs[m.name])
		if !ok {
			missing = append(missing, m.name)
			continue
		}
		m.set(r, v)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		r.Err = fmt.Errorf("missing metrics: %s", strings.Join(missing, ", "))
		return r, nil
	}

	r.Signals.Timestamp = now
	r.Sensor.Timestamp = now
	return r, nil
}

// fetchMetrics performs an HTTP GET to url and returns parsed metric families.
func fetchMetrics(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseMetrics(resp.Body)
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// meanFamily averages the gauge or untyped values in mf. ok is false when
// the family is absent or carries no samples.
func meanFamily(mf *dto.MetricFamily) (float64, bool) {
	if mf == nil {
		return 0, false
	}
	var total float64
	var n int
	for _, m := range mf.GetMetric() {
		switch {
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}
