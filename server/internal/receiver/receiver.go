package receiver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/types"
	"github.com/pharmames/pharmames/server/internal/store"
)

// maxSnapshotBytes caps one snapshot body.
const maxSnapshotBytes = 1 << 20

// Alerter evaluates line alert rules for a stored snapshot.
type Alerter interface {
	EvaluateSnapshot(snap *types.LineSnapshot)
}

// FindingRecorder counts findings carried by accepted snapshots.
type FindingRecorder interface {
	Finding(engine, severity string, n int)
}

// Receiver accepts LineSnapshot posts from pharmames-agent instances.
type Receiver struct {
	store   *store.Store
	alerts  Alerter
	metrics FindingRecorder
}

// New creates a Receiver that writes accepted snapshots to st. alerts and
// metrics may be nil.
func New(st *store.Store, alerts Alerter, metrics FindingRecorder) *Receiver {
	return &Receiver{store: st, alerts: alerts, metrics: metrics}
}

type acceptedResponse struct {
	Success bool   `json:"success"`
	Data    ackData `json:"data"`
}

type ackData struct {
	SourceID string `json:"source_id"`
	State    string `json:"state"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handle serves POST /api/v1/lines/snapshots. Authentication is enforced by
// the route group's middleware before this is called.
func (r *Receiver) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSnapshotBytes)

	var snap types.LineSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		c.AbortWithStatusJSON(code, errorResponse{Error: "invalid snapshot: " + err.Error()})
		return
	}
	if err := snap.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	prev := r.store.Put(&snap)
	if prev != nil && prev.State != snap.State {
		slog.Info("receiver: line state changed",
			"source_id", snap.SourceID, "from", prev.State, "to", snap.State, "score", snap.HealthScore)
	}
	slog.Debug("receiver: snapshot stored",
		"source_id", snap.SourceID,
		"agent_id", snap.AgentID,
		"state", snap.State,
		"score", snap.HealthScore,
	)

	if r.metrics != nil && !snap.Repeated {
		for _, a := range snap.Anomalies {
			r.metrics.Finding("maintenance", string(a.Severity), 1)
		}
		for _, d := range snap.Drifts {
			r.metrics.Finding("yield", string(d.Severity), 1)
		}
	}
	if r.alerts != nil {
		r.alerts.EvaluateSnapshot(&snap)
	}

	c.JSON(http.StatusAccepted, acceptedResponse{
		Success: true,
		Data:    ackData{SourceID: snap.SourceID, State: snap.State},
	})
}
