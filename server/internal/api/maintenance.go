package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/maintenance"
)

func (h *Handler) analyzeComponent(c *gin.Context) {
	var req analyzeComponentRequest
	if !bind(c, &req) {
		return
	}
	comp := *req.Component
	if comp.Health < 0 || comp.Health > 100 {
		fail(c, http.StatusUnprocessableEntity, "component.health must be between 0 and 100")
		return
	}
	switch comp.Trend {
	case maintenance.TrendStable, maintenance.TrendDeclining, maintenance.TrendCritical:
	default:
		fail(c, http.StatusUnprocessableEntity, "component.trend must be one of stable, declining, critical")
		return
	}
	if !validSchedule(c, req.Schedule) {
		return
	}
	ok200(c, h.maint.AnalyzeComponent(comp, req.Schedule))
}

func (h *Handler) predictRUL(c *gin.Context) {
	var req maintenance.RULInput
	if !bind(c, &req) {
		return
	}
	ok200(c, h.maint.PredictRUL(req))
}

func (h *Handler) detectAnomalies(c *gin.Context) {
	var req detectAnomaliesRequest
	if !bind(c, &req) {
		return
	}

	// Request thresholds override the configured ones field by field.
	th := h.cfg.Maintenance.Thresholds
	if o := req.Thresholds; o != nil {
		if o.Vibration != 0 {
			th.Vibration = o.Vibration
		}
		if o.Temperature != 0 {
			th.Temperature = o.Temperature
		}
		if o.MotorLoad != 0 {
			th.MotorLoad = o.MotorLoad
		}
	}

	out := h.maint.DetectAnomalies(req.SensorData, th)
	for _, a := range out {
		h.metrics.Finding("maintenance", string(a.Severity), 1)
	}
	list(c, orEmpty(out), len(out))
}

func (h *Handler) findIdleWindow(c *gin.Context) {
	var req findIdleWindowRequest
	if !bind(c, &req) {
		return
	}
	if *req.DurationHours <= 0 {
		fail(c, http.StatusUnprocessableEntity, "duration_hours must be positive")
		return
	}
	if !validSchedule(c, req.Schedule) {
		return
	}
	d := time.Duration(*req.DurationHours * float64(time.Hour))
	ok200(c, h.maint.FindIdleWindow(req.Schedule, d))
}

// validSchedule rejects batches that end before they start.
func validSchedule(c *gin.Context, schedule []maintenance.ScheduledBatch) bool {
	for _, b := range schedule {
		if b.End.Before(b.Start) {
			fail(c, http.StatusUnprocessableEntity, "schedule entries must end after they start")
			return false
		}
	}
	return true
}
