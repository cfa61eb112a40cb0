package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/ident"
	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/scheduling"
	"github.com/pharmames/pharmames/pkg/vision"
	"github.com/pharmames/pharmames/pkg/yield"
	"github.com/pharmames/pharmames/server/internal/alerts"
	"github.com/pharmames/pharmames/server/internal/config"
	"github.com/pharmames/pharmames/server/internal/metrics"
	"github.com/pharmames/pharmames/server/internal/store"
)

// Service identity reported by GET /health.
const (
	ServiceName = "PharmaMES Decision Engines"
	Version     = "1.0.0"
)

var agents = []string{"maintenance", "yield-optimization", "vision", "scheduling"}

// maxBodyBytes caps request bodies on the engine routes.
const maxBodyBytes = 4 << 20

// AlertSource is the part of the alerts engine the API needs.
type AlertSource interface {
	EvaluateVision(r vision.Result, rt vision.Routing) bool
	Active() []*alerts.Alert
}

// Deps are the collaborators a Handler serves from. Alerts, Metrics, IDs and
// Clock may be nil.
type Deps struct {
	Store   *store.Store
	Alerts  AlertSource
	Metrics *metrics.Registry
	Engines config.EnginesConfig
	IDs     ident.Generator
	Clock   ident.Clock
}

// Handler serves the decision engine routes and the live line views.
type Handler struct {
	store   *store.Store
	alerts  AlertSource
	metrics *metrics.Registry
	cfg     config.EnginesConfig
	clock   ident.Clock

	maint  *maintenance.Engine
	yield  *yield.Engine
	vision *vision.Engine
	sched  *scheduling.Engine
}

// New builds a Handler and its engines.
func New(d Deps) *Handler {
	ids, clock := ident.OrDefault(d.IDs, d.Clock)
	m := d.Metrics
	if m == nil {
		m = metrics.NewRegistry()
	}
	return &Handler{
		store:   d.Store,
		alerts:  d.Alerts,
		metrics: m,
		cfg:     d.Engines,
		clock:   clock,
		maint:   maintenance.New(ids, clock),
		yield:   yield.New(ids, clock),
		vision:  vision.New(ids, clock),
		sched:   scheduling.New(ids),
	}
}

// Register mounts every /api/v1 route on r, which is normally a group
// carrying the auth middleware.
func (h *Handler) Register(r gin.IRouter) {
	m := r.Group("/maintenance")
	m.POST("/analyze-component", h.op("maintenance.analyze-component", h.analyzeComponent))
	m.POST("/predict-rul", h.op("maintenance.predict-rul", h.predictRUL))
	m.POST("/detect-anomalies", h.op("maintenance.detect-anomalies", h.detectAnomalies))
	m.POST("/find-idle-window", h.op("maintenance.find-idle-window", h.findIdleWindow))

	y := r.Group("/yield")
	y.POST("/detect-drift", h.op("yield.detect-drift", h.detectDrift))
	y.POST("/predict", h.op("yield.predict", h.predictYield))
	y.POST("/recommendations", h.op("yield.recommendations", h.recommendations))
	y.POST("/validate-recommendation", h.op("yield.validate-recommendation", h.validateRecommendation))
	y.GET("/sop-limits", h.op("yield.sop-limits", h.sopLimits))

	v := r.Group("/vision")
	v.POST("/analyze-detection", h.op("vision.analyze-detection", h.analyzeDetection))
	v.POST("/detect-baseline-deviation", h.op("vision.detect-baseline-deviation", h.baselineDeviation))
	v.POST("/route-alert", h.op("vision.route-alert", h.routeAlert))
	v.POST("/analyze-metrics", h.op("vision.analyze-metrics", h.analyzeMetrics))

	s := r.Group("/scheduling")
	s.POST("/group-batches", h.op("scheduling.group-batches", h.groupBatches))
	s.POST("/optimize", h.op("scheduling.optimize", h.optimize))
	s.POST("/validate", h.op("scheduling.validate", h.validateSchedule))

	r.GET("/lines", h.listLines)
	r.GET("/lines/:id", h.getLine)
	r.GET("/alerts", h.listAlerts)
}

// Health handles GET /health. It is mounted outside the auth group.
func (h *Handler) Health(c *gin.Context) {
	live := 0
	if h.store != nil {
		live = len(h.store.List())
	}
	c.JSON(http.StatusOK, HealthResponse{
		Success:   true,
		Service:   ServiceName,
		Version:   Version,
		Timestamp: h.clock.Now(),
		Agents:    agents,
		LinesLive: live,
	})
}

// op counts each request for operation before running next.
func (h *Handler) op(operation string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.metrics.Request(operation)
		next(c)
	}
}

// --- live lines ---------------------------------------------------------------

func (h *Handler) listLines(c *gin.Context) {
	out := BuildLines(h.store)
	list(c, out, len(out))
}

// BuildLines returns every live line with its diagnostics, ordered by source ID.
// The WebSocket hub broadcasts the same view.
func BuildLines(st *store.Store) []LineResponse {
	entries := st.List()
	out := make([]LineResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLineResponse(e))
	}
	return out
}

func (h *Handler) getLine(c *gin.Context) {
	id := c.Param("id")
	e, ok := h.store.Get(id)
	if !ok {
		fail(c, http.StatusNotFound, fmt.Sprintf("line %q not found", id))
		return
	}
	ok200(c, toLineResponse(e))
}

func (h *Handler) listAlerts(c *gin.Context) {
	if h.alerts == nil {
		list(c, []*alerts.Alert{}, 0)
		return
	}
	active := h.alerts.Active()
	list(c, orEmpty(active), len(active))
}

func toLineResponse(e *store.Entry) LineResponse {
	return LineResponse{
		LineSnapshot: e.Snapshot,
		LastSeen:     e.UpdatedAt.UTC(),
		Diagnostics:  lineDiagnostics(e.Snapshot),
	}
}

// --- helpers ----------------------------------------------------------------

// bind decodes the JSON body into req. On failure it writes a 422 and
// returns false.
func bind(c *gin.Context, req any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		slog.Debug("api: invalid request", "path", c.FullPath(), "err", err)
		fail(c, http.StatusUnprocessableEntity, "invalid request: "+err.Error())
		return false
	}
	return true
}

func ok200(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successResponse{Success: true, Data: data})
}

func list(c *gin.Context, data any, n int) {
	c.JSON(http.StatusOK, successResponse{Success: true, Data: data, Count: &n})
}

func fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, errorResponse{Success: false, Error: msg})
}

// orEmpty turns a nil slice into an empty one so it encodes as [].
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// RequestLogger logs one line per request at debug level, and at warn level
// for server errors.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "api: request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
