package receiver_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/types"
	"github.com/pharmames/pharmames/server/internal/receiver"
	"github.com/pharmames/pharmames/server/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

type alertRecorder struct{ seen []string }

func (a *alertRecorder) EvaluateSnapshot(s *types.LineSnapshot) {
	a.seen = append(a.seen, s.SourceID+":"+s.State)
}

type findingRecorder map[string]int

func (f findingRecorder) Finding(engine, severity string, n int) {
	f[engine+"/"+severity] += n
}

func setup(t *testing.T) (*gin.Engine, *store.Store, *alertRecorder, findingRecorder) {
	t.Helper()
	st := store.New(5 * time.Minute)
	al := &alertRecorder{}
	fr := findingRecorder{}
	r := gin.New()
	r.POST("/api/v1/lines/snapshots", receiver.New(st, al, fr).Handle)
	return r, st, al, fr
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lines/snapshots", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rr, req)
	return rr
}

const criticalSnapshot = `{
	"source_id": "line-1",
	"source_type": "press",
	"agent_id": "agent-a",
	"timestamp": "2024-03-01T08:00:00Z",
	"state": "critical",
	"health_score": 40,
	"uptime_pct": 100,
	"window_fill": 30,
	"window_size": 30,
	"anomalies": [
		{"id":"a1","source":"Vibration Sensor","severity":"high","description":"High vibration detected"}
	],
	"drifts": [
		{"id":"d1","parameter":"weight","direction":"increasing","magnitude":1.5,"severity":"medium"},
		{"id":"d2","parameter":"hardness","direction":"decreasing","magnitude":2.5,"severity":"high"}
	]
}`

func TestHandle_StoresSnapshot(t *testing.T) {
	r, st, al, fr := setup(t)

	rr := post(r, criticalSnapshot)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body %s)", rr.Code, rr.Body.String())
	}

	e, ok := st.Get("line-1")
	if !ok {
		t.Fatal("store.Get: expected entry, got none")
	}
	if e.Snapshot.State != types.StateCritical || e.Snapshot.AgentID != "agent-a" {
		t.Errorf("stored = %+v", e.Snapshot)
	}
	if len(e.Snapshot.Anomalies) != 1 || len(e.Snapshot.Drifts) != 2 {
		t.Errorf("findings not kept: %+v", e.Snapshot)
	}

	if len(al.seen) != 1 || al.seen[0] != "line-1:critical" {
		t.Errorf("alerts saw %v", al.seen)
	}
	if fr["maintenance/high"] != 1 || fr["yield/medium"] != 1 || fr["yield/high"] != 1 {
		t.Errorf("findings = %v", fr)
	}
}

func TestHandle_ReplacesPrevious(t *testing.T) {
	r, st, _, _ := setup(t)
	post(r, criticalSnapshot)
	rr := post(r, `{"source_id":"line-1","timestamp":"2024-03-01T08:00:15Z","state":"healthy","health_score":100}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rr.Code)
	}
	e, _ := st.Get("line-1")
	if e.Snapshot.State != types.StateHealthy {
		t.Errorf("state = %q, want healthy", e.Snapshot.State)
	}
	if st.Count() != 1 {
		t.Errorf("Count = %d, want 1", st.Count())
	}
}

func TestHandle_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"source_id":`, http.StatusBadRequest},
		{"missing source_id", `{"timestamp":"2024-03-01T08:00:00Z","state":"healthy"}`, http.StatusUnprocessableEntity},
		{"missing timestamp", `{"source_id":"line-1","state":"healthy"}`, http.StatusUnprocessableEntity},
		{"unknown state", `{"source_id":"line-1","timestamp":"2024-03-01T08:00:00Z","state":"melting"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, st, al, _ := setup(t)
			rr := post(r, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if !strings.Contains(rr.Body.String(), `"success":false`) {
				t.Errorf("body = %s, want error envelope", rr.Body.String())
			}
			if st.Count() != 0 || len(al.seen) != 0 {
				t.Error("rejected snapshot must not be stored or evaluated")
			}
		})
	}
}

func TestHandle_NilCollaborators(t *testing.T) {
	st := store.New(time.Minute)
	r := gin.New()
	r.POST("/api/v1/lines/snapshots", receiver.New(st, nil, nil).Handle)
	if rr := post(r, criticalSnapshot); rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	if st.Count() != 1 {
		t.Errorf("Count = %d, want 1", st.Count())
	}
}

func TestHandle_RepeatedFindingsCountedOnce(t *testing.T) {
	r, st, al, fr := setup(t)
	post(r, criticalSnapshot)

	repeated := strings.Replace(criticalSnapshot, `"window_size": 30,`, `"window_size": 30, "repeated": true,`, 1)
	if rr := post(r, repeated); rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	if fr["maintenance/high"] != 1 || fr["yield/medium"] != 1 || fr["yield/high"] != 1 {
		t.Errorf("findings = %v, want each counted once", fr)
	}
	if e, _ := st.Get("line-1"); !e.Snapshot.Repeated {
		t.Error("stored snapshot lost the repeated flag")
	}
	if len(al.seen) != 2 {
		t.Errorf("alerts saw %d snapshots, want 2", len(al.seen))
	}
}
