package api_test

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/ident"
	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/types"
	"github.com/pharmames/pharmames/pkg/vision"
	"github.com/pharmames/pharmames/server/internal/alerts"
	"github.com/pharmames/pharmames/server/internal/api"
	"github.com/pharmames/pharmames/server/internal/config"
	"github.com/pharmames/pharmames/server/internal/metrics"
	"github.com/pharmames/pharmames/server/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

// --- test helpers -----------------------------------------------------------

var testNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type fakeAlerts struct {
	routed []vision.Result
	active []*alerts.Alert
}

func (f *fakeAlerts) EvaluateVision(r vision.Result, _ vision.Routing) bool {
	f.routed = append(f.routed, r)
	return true
}

func (f *fakeAlerts) Active() []*alerts.Alert { return f.active }

type fixture struct {
	router  *gin.Engine
	store   *store.Store
	alerts  *fakeAlerts
	metrics *metrics.Registry
}

func newFixture(t *testing.T, snaps ...*types.LineSnapshot) *fixture {
	t.Helper()
	return newFixtureWithEngines(t, config.Default().Server.Engines, snaps...)
}

func newFixtureWithEngines(t *testing.T, engines config.EnginesConfig, snaps ...*types.LineSnapshot) *fixture {
	t.Helper()
	f := &fixture{
		store:   store.New(5 * time.Minute),
		alerts:  &fakeAlerts{},
		metrics: metrics.NewRegistry(),
	}
	for _, s := range snaps {
		f.store.Put(s)
	}
	h := api.New(api.Deps{
		Store:   f.store,
		Alerts:  f.alerts,
		Metrics: f.metrics,
		Engines: engines,
		IDs:     &ident.Sequence{Prefix: "t"},
		Clock:   ident.FixedClock(testNow),
	})
	f.router = gin.New()
	f.router.GET("/health", h.Health)
	h.Register(f.router.Group("/api/v1"))
	return f
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func (f *fixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(rr, req)
	return rr
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Count   *int   `json:"count"`
	Error   string `json:"error"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
	return env
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func liveSnapshot(id, state string) *types.LineSnapshot {
	return &types.LineSnapshot{
		SourceID:    id,
		SourceType:  "press",
		Timestamp:   testNow,
		State:       state,
		HealthScore: 92,
		UptimePct:   100,
		WindowFill:  30,
		WindowSize:  30,
	}
}

// --- health -----------------------------------------------------------------

func TestHealth(t *testing.T) {
	f := newFixture(t, liveSnapshot("line-1", types.StateHealthy))
	rr := f.get(t, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp api.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Version != api.Version || resp.Service != api.ServiceName {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Agents) != 4 {
		t.Errorf("agents = %v, want 4 entries", resp.Agents)
	}
	if resp.LinesLive != 1 {
		t.Errorf("lines_live = %d, want 1", resp.LinesLive)
	}
	if !resp.Timestamp.Equal(testNow) {
		t.Errorf("timestamp = %v, want %v", resp.Timestamp, testNow)
	}
}

// --- maintenance ------------------------------------------------------------

func TestPredictRUL(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/maintenance/predict-rul", `{
		"component_name": "Main Compression Roller",
		"current_health": 80, "operating_hours": 1200,
		"vibration_level": 6.0, "temperature_delta": 12, "motor_load_avg": 95}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[maintenance.RULPrediction](t, rr)
	if !env.Success {
		t.Fatal("success = false")
	}
	if env.Data.PredictedRUL != 29304 {
		t.Errorf("predicted_rul = %v, want 29304", env.Data.PredictedRUL)
	}
	if !almostEqual(env.Data.ConfidenceLevel, 0.77) {
		t.Errorf("confidence = %v, want 0.77", env.Data.ConfidenceLevel)
	}
	if env.Count != nil {
		t.Errorf("count should be absent for single results, got %d", *env.Count)
	}
	if got := f.metrics.Value(metrics.RequestsTotal, map[string]string{"operation": "maintenance.predict-rul"}); got != 1 {
		t.Errorf("request counter = %v, want 1", got)
	}
}

func TestDetectAnomalies(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
	}{
		{
			name: "configured thresholds",
			body: `{"sensor_data":[
				{"vibration":8,"motor_load":70,"temperature":40,"timestamp":"2024-03-01T07:00:00Z"},
				{"vibration":2,"motor_load":97,"temperature":40,"timestamp":"2024-03-01T07:01:00Z"}]}`,
			wantCount: 2,
		},
		{
			name: "request threshold overrides vibration only",
			body: `{"sensor_data":[
				{"vibration":8,"motor_load":97,"temperature":40,"timestamp":"2024-03-01T07:00:00Z"}],
				"thresholds":{"vibration":10}}`,
			wantCount: 1,
		},
		{
			name:      "nothing abnormal",
			body:      `{"sensor_data":[{"vibration":1,"motor_load":50,"temperature":30,"timestamp":"2024-03-01T07:00:00Z"}]}`,
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rr := f.post(t, "/api/v1/maintenance/detect-anomalies", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
			}
			env := decode[[]maintenance.Anomaly](t, rr)
			if env.Data == nil {
				t.Fatal("data must be an array, got null")
			}
			if len(env.Data) != tt.wantCount || env.Count == nil || *env.Count != tt.wantCount {
				t.Errorf("anomalies = %d (count %v), want %d", len(env.Data), env.Count, tt.wantCount)
			}
		})
	}
}

func TestDetectAnomalies_RecordsFindings(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/api/v1/maintenance/detect-anomalies",
		`{"sensor_data":[{"vibration":8,"motor_load":97,"temperature":40,"timestamp":"2024-03-01T07:00:00Z"}]}`)

	// 8 mm/s is 1.6x the 5 mm/s limit and 97 % load is above the 95 % overload mark.
	if got := f.metrics.Value(metrics.FindingsTotal, map[string]string{"engine": "maintenance", "severity": "high"}); got != 2 {
		t.Errorf("high maintenance findings = %v, want 2", got)
	}
}

func TestFindIdleWindow(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/maintenance/find-idle-window", `{"schedule":[],"duration_hours":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[maintenance.Window](t, rr)
	if !env.Data.Start.Equal(testNow) || !env.Data.End.Equal(testNow.Add(2*time.Hour)) {
		t.Errorf("window = %+v, want [now, now+2h)", env.Data)
	}
}

func TestMaintenance_Rejects(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing duration", "/api/v1/maintenance/find-idle-window", `{"schedule":[]}`},
		{"zero duration", "/api/v1/maintenance/find-idle-window", `{"duration_hours":0}`},
		{"inverted batch", "/api/v1/maintenance/find-idle-window", `{"duration_hours":1,"schedule":[
			{"start_time":"2024-03-01T10:00:00Z","end_time":"2024-03-01T09:00:00Z"}]}`},
		{"health out of range", "/api/v1/maintenance/analyze-component",
			`{"component":{"name":"Punch","health":120,"rul":100,"trend":"stable"}}`},
		{"unknown trend", "/api/v1/maintenance/analyze-component",
			`{"component":{"name":"Punch","health":50,"rul":100,"trend":"sideways"}}`},
		{"missing component", "/api/v1/maintenance/analyze-component", `{"schedule":[]}`},
		{"malformed json", "/api/v1/maintenance/detect-anomalies", `{"sensor_data":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rr := f.post(t, tt.path, tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422 (body %s)", rr.Code, rr.Body.String())
			}
			env := decode[any](t, rr)
			if env.Success || env.Error == "" {
				t.Errorf("envelope = %+v, want success=false with error", env)
			}
		})
	}
}

func TestAnalyzeComponent(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/maintenance/analyze-component", `{
		"component":{"name":"Punch Set","health":35,"rul":40,"trend":"critical"},
		"schedule":[]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[maintenance.Decision](t, rr)
	if !env.Data.RequiresMaintenance {
		t.Error("requires_maintenance = false, want true")
	}
	if !env.Data.SuggestedTime.Equal(testNow) {
		t.Errorf("suggested_time = %v, want %v on an empty schedule", env.Data.SuggestedTime, testNow)
	}
}

// --- yield ------------------------------------------------------------------

func TestSOPLimits(t *testing.T) {
	f := newFixture(t)
	rr := f.get(t, "/api/v1/yield/sop-limits")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	env := decode[map[string]map[string]any](t, rr)
	if _, ok := env.Data["sop_limits"]["feeder_speed"]; !ok {
		t.Errorf("sop_limits missing feeder_speed: %v", env.Data)
	}
	if _, ok := env.Data["product_specs"]["weight"]; !ok {
		t.Errorf("product_specs missing weight: %v", env.Data)
	}
}

func TestValidateRecommendation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"inside limits", `{"recommendation":{"parameter":"Feeder Speed","recommended_value":30}}`, true},
		{"above limits", `{"recommendation":{"parameter":"Feeder Speed","recommended_value":40}}`, false},
		{"request limits win", `{"recommendation":{"parameter":"Feeder Speed","recommended_value":40},
			"sop_limits":{"feeder_speed":{"min":20,"max":45,"unit":"rpm"}}}`, true},
		{"unknown parameter passes", `{"recommendation":{"parameter":"Fill Depth","recommended_value":999}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rr := f.post(t, "/api/v1/yield/validate-recommendation", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
			}
			env := decode[struct {
				IsValid bool `json:"is_valid"`
			}](t, rr)
			if env.Data.IsValid != tt.want {
				t.Errorf("is_valid = %v, want %v", env.Data.IsValid, tt.want)
			}
		})
	}
}

func TestDetectDrift(t *testing.T) {
	readings := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		// Weight climbs 2 mg per reading; everything else is flat.
		readings = append(readings, fmt.Sprintf(`{"weight":%d,"thickness":4.5,"hardness":12,`+
			`"feeder_speed":30,"turret_speed":45,"vacuum":-300,"pre_compression_force":3,`+
			`"main_compression_force":15,"timestamp":"2024-03-01T07:0%d:00Z"}`, 500+2*i, i))
	}
	body := `{"window_size":5,"signals":[` + strings.Join(readings, ",") + `]}`

	f := newFixture(t)
	rr := f.post(t, "/api/v1/yield/detect-drift", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[[]map[string]any](t, rr)
	if len(env.Data) != 1 || env.Data[0]["parameter"] != "weight" || env.Data[0]["direction"] != "increasing" {
		t.Errorf("drifts = %v, want one increasing weight drift", env.Data)
	}
}

func TestDetectDrift_BadWindow(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/yield/detect-drift", `{"signals":[],"window_size":1}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestPredictYield(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/yield/predict", `{
		"signals":{"weight":500,"thickness":4.5,"hardness":12,"feeder_speed":30,"turret_speed":45,
			"vacuum":-300,"pre_compression_force":3,"main_compression_force":15,"timestamp":"2024-03-01T07:00:00Z"},
		"batch_profile":{"batch_number":"B-1","avg_weight":500,"weight_rsd":1.0,"avg_thickness":4.5,
			"avg_hardness":12,"reject_rate":1.0,"tablets_produced":100000,"tablets_per_minute":900,
			"in_spec_percentage":97},
		"active_recommendations":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[map[string]any](t, rr)
	if got := env.Data["current_yield"].(float64); !almostEqual(got, 97) {
		t.Errorf("current_yield = %v, want 97", got)
	}
	if got := env.Data["corrected_yield"].(float64); !almostEqual(got, 99.5) {
		t.Errorf("corrected_yield = %v, want 99.5", got)
	}
}

// --- vision -----------------------------------------------------------------

func TestAnalyzeDetection(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/vision/analyze-detection",
		`{"detection":{"id":"det-1","type":"leak","location":"Granulator 2","confidence":0.9}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[vision.Result](t, rr)
	if env.Data.Severity != vision.SeverityCritical || env.Data.PriorityScore != 95 {
		t.Errorf("result = %+v, want critical/95", env.Data)
	}
	if !env.Data.Timestamp.Equal(testNow) || env.Data.Status != vision.StatusDetected {
		t.Errorf("timestamp/status = %v/%s", env.Data.Timestamp, env.Data.Status)
	}
	if got := f.metrics.Value(metrics.FindingsTotal, map[string]string{"engine": "vision", "severity": "critical"}); got != 1 {
		t.Errorf("vision findings = %v, want 1", got)
	}
}

func TestAnalyzeDetection_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"unknown type":       `{"detection":{"type":"smoke","location":"x","confidence":0.5}}`,
		"confidence above 1": `{"detection":{"type":"leak","location":"x","confidence":1.5}}`,
		"missing detection":  `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			if rr := f.post(t, "/api/v1/vision/analyze-detection", body); rr.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rr.Code)
			}
		})
	}
}

func TestRouteAlert_ForwardsToAlerts(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/vision/route-alert", `{"detection":{
		"id":"det-9","type":"contamination","severity":"critical","location":"Blister Line 1",
		"timestamp":"2024-03-01T07:55:00Z","confidence":0.92,"recommendation":"Quarantine",
		"priority_score":90,"alert_recipients":["QA Manager"],"status":"detected","requires_immediate":true}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[vision.Routing](t, rr)
	if env.Data.DetectionID != "det-9" {
		t.Errorf("detection_id = %q", env.Data.DetectionID)
	}
	if len(env.Data.Recipients) != 1 || env.Data.Recipients[0] != "QA Manager" {
		t.Errorf("recipients = %v", env.Data.Recipients)
	}
	if !env.Data.ResponseDeadline.After(testNow) {
		t.Errorf("deadline %v should be after now", env.Data.ResponseDeadline)
	}
	if len(f.alerts.routed) != 1 || f.alerts.routed[0].ID != "det-9" {
		t.Errorf("alerts engine received %v", f.alerts.routed)
	}
}

func TestBaselineDeviation_UsesConfiguredTargets(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/vision/detect-baseline-deviation",
		`{"current":{"ppe_compliance":90,"surface_condition":97,"environmental_norm":99,"safety_score":96}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[[]vision.Deviation](t, rr)
	if len(env.Data) != 1 || !almostEqual(env.Data[0].Deviation, 8) {
		t.Errorf("deviations = %+v, want one PPE deviation of 8", env.Data)
	}
}

func TestAnalyzeMetrics(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/vision/analyze-metrics", `{"detections":[],
		"baseline_metrics":{"ppe_compliance":99,"surface_condition":98,"environmental_norm":99.5,"safety_score":97},
		"total_inspections":0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[vision.Analysis](t, rr)
	if env.Data.RFTPercentage != 100 || env.Data.ConfidenceScore != 1 || env.Data.RiskLevel != vision.LevelLow {
		t.Errorf("analysis = %+v", env.Data)
	}
}

func TestVisionRoutes_ShareConfiguredTargets(t *testing.T) {
	engines := config.Default().Server.Engines
	engines.Vision.Targets = vision.Metrics{PPECompliance: 80, SurfaceCondition: 80, EnvironmentalNorm: 80, SafetyScore: 80}
	f := newFixtureWithEngines(t, engines)
	kpis := `{"ppe_compliance":85,"surface_condition":85,"environmental_norm":85,"safety_score":85}`

	rr := f.post(t, "/api/v1/vision/detect-baseline-deviation", `{"current":`+kpis+`}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("deviation status = %d: %s", rr.Code, rr.Body.String())
	}
	if devs := decode[[]vision.Deviation](t, rr); len(devs.Data) != 0 {
		t.Errorf("deviations = %+v, want none above configured targets", devs.Data)
	}

	rr = f.post(t, "/api/v1/vision/analyze-metrics", `{"detections":[],"baseline_metrics":`+kpis+`,"total_inspections":10}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("analyze status = %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"baseline_deviations":[]`) {
		t.Errorf("body = %s, want an empty baseline_deviations list", rr.Body.String())
	}
	env := decode[vision.Analysis](t, rr)
	for _, r := range env.Data.Recommendations {
		if strings.Contains(r, "root cause") {
			t.Errorf("unexpected recommendation %q", r)
		}
	}
}

func TestAnalyzeMetrics_RequestTargetsOverride(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/vision/analyze-metrics", `{"detections":[],
		"baseline_metrics":{"ppe_compliance":85,"surface_condition":85,"environmental_norm":85,"safety_score":85},
		"baseline":{"ppe_compliance":95,"surface_condition":80,"environmental_norm":80,"safety_score":80},
		"total_inspections":10}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[vision.Analysis](t, rr)
	if len(env.Data.BaselineDeviations) != 1 || !almostEqual(env.Data.BaselineDeviations[0].Deviation, 10) {
		t.Errorf("deviations = %+v, want one PPE deviation of 10", env.Data.BaselineDeviations)
	}
}

// --- scheduling -------------------------------------------------------------

func TestGroupBatches(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/api/v1/scheduling/group-batches", `{"batches":[
		{"id":"1","batch_number":"B-1","product_name":"Paracetamol 500","drug":"paracetamol","density":"low","status":"queued","estimated_duration":60},
		{"id":"2","batch_number":"B-2","product_name":"Paracetamol 500","drug":"paracetamol","density":"low","status":"queued","estimated_duration":60}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	env := decode[[]map[string]any](t, rr)
	if env.Count == nil || *env.Count != len(env.Data) || len(env.Data) == 0 {
		t.Errorf("groups = %d, count = %v", len(env.Data), env.Count)
	}
}

func TestOptimizeAndValidate(t *testing.T) {
	f := newFixture(t)
	body := `{"groups":[],"conditions":[{"unit":"Room 4","name":"Room Clearance","status":"blocked","detail":"QA swab pending"}]}`

	rr := f.post(t, "/api/v1/scheduling/optimize", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("optimize status = %d: %s", rr.Code, rr.Body.String())
	}
	opt := decode[map[string]any](t, rr)
	if opt.Data["is_optimal"] != false {
		t.Errorf("is_optimal = %v, want false with a blocker", opt.Data["is_optimal"])
	}

	rr = f.post(t, "/api/v1/scheduling/validate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("validate status = %d: %s", rr.Code, rr.Body.String())
	}
	val := decode[map[string]any](t, rr)
	if val.Data["is_valid"] != false || val.Data["can_proceed"] != false {
		t.Errorf("validation = %v", val.Data)
	}
}

// --- live lines -------------------------------------------------------------

func TestLines(t *testing.T) {
	crit := liveSnapshot("line-2", types.StateCritical)
	crit.Anomalies = []maintenance.Anomaly{{ID: "a1", Source: maintenance.SourceVibration,
		Severity: maintenance.SeverityHigh, Description: "High vibration detected"}}
	f := newFixture(t, liveSnapshot("line-1", types.StateHealthy), crit)

	rr := f.get(t, "/api/v1/lines")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	env := decode[[]api.LineResponse](t, rr)
	if len(env.Data) != 2 || *env.Count != 2 {
		t.Fatalf("lines = %d, want 2", len(env.Data))
	}
	if env.Data[0].SourceID != "line-1" || env.Data[1].SourceID != "line-2" {
		t.Errorf("order = %s, %s", env.Data[0].SourceID, env.Data[1].SourceID)
	}
	if env.Data[1].Diagnostics[0].Level != "critical" {
		t.Errorf("line-2 first hint = %+v, want critical", env.Data[1].Diagnostics[0])
	}

	rr = f.get(t, "/api/v1/lines/line-2")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	one := decode[api.LineResponse](t, rr)
	if one.Data.State != types.StateCritical || one.Data.LastSeen.IsZero() {
		t.Errorf("line-2 = %+v", one.Data)
	}

	rr = f.get(t, "/api/v1/lines/line-9")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing line status = %d, want 404", rr.Code)
	}
	if miss := decode[any](t, rr); miss.Success || miss.Error == "" {
		t.Errorf("404 envelope = %+v", miss)
	}
}

func TestAlerts(t *testing.T) {
	f := newFixture(t)
	rr := f.get(t, "/api/v1/alerts")
	env := decode[[]alerts.Alert](t, rr)
	if env.Data == nil || len(env.Data) != 0 || *env.Count != 0 {
		t.Errorf("alerts = %v (count %v), want empty array", env.Data, env.Count)
	}

	f.alerts.active = []*alerts.Alert{{ID: "alert-1", Kind: alerts.KindLine, State: "firing"}}
	rr = f.get(t, "/api/v1/alerts")
	env = decode[[]alerts.Alert](t, rr)
	if len(env.Data) != 1 || env.Data[0].ID != "alert-1" {
		t.Errorf("alerts = %+v", env.Data)
	}
}
