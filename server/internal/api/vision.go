package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/vision"
)

func validDetectionType(t vision.DetectionType) bool {
	switch t {
	case vision.TypePPEViolation, vision.TypeSurfaceDamage, vision.TypeLeak,
		vision.TypeContamination, vision.TypeSafetyHazard:
		return true
	}
	return false
}

func (h *Handler) analyzeDetection(c *gin.Context) {
	var req analyzeDetectionRequest
	if !bind(c, &req) {
		return
	}
	d := *req.Detection
	if !validDetectionType(d.Type) {
		fail(c, http.StatusUnprocessableEntity, "detection.type is not a known detection type")
		return
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		fail(c, http.StatusUnprocessableEntity, "detection.confidence must be between 0 and 1")
		return
	}

	res := h.vision.AnalyzeDetection(d)
	h.metrics.Finding("vision", string(res.Severity), 1)
	ok200(c, res)
}

func (h *Handler) baselineDeviation(c *gin.Context) {
	var req baselineDeviationRequest
	if !bind(c, &req) {
		return
	}
	out := h.vision.DetectBaselineDeviation(*req.Current, h.targets(req.Baseline))
	list(c, orEmpty(out), len(out))
}

// routeAlert plans the notification for an analysed detection and hands it to
// the alerts engine, which forwards it to the configured webhooks.
func (h *Handler) routeAlert(c *gin.Context) {
	var req routeAlertRequest
	if !bind(c, &req) {
		return
	}
	res := *req.Detection
	if !validDetectionType(res.Type) {
		fail(c, http.StatusUnprocessableEntity, "detection.type is not a known detection type")
		return
	}

	rt := h.vision.RouteAlert(res)
	if h.alerts != nil && h.alerts.EvaluateVision(res, rt) {
		slog.Info("api: vision alert forwarded",
			"detection", res.ID, "type", res.Type, "severity", res.Severity, "location", res.Location)
	}
	ok200(c, rt)
}

func (h *Handler) analyzeMetrics(c *gin.Context) {
	var req analyzeMetricsRequest
	if !bind(c, &req) {
		return
	}
	if *req.TotalInspections < 0 {
		fail(c, http.StatusUnprocessableEntity, "total_inspections must not be negative")
		return
	}
	ok200(c, h.vision.AnalyzeMetrics(vision.AnalysisInput{
		Detections:       req.Detections,
		BaselineMetrics:  *req.BaselineMetrics,
		TotalInspections: *req.TotalInspections,
		Targets:          h.targets(req.Baseline),
	}))
}

// targets returns the request's KPI targets, or the configured ones.
func (h *Handler) targets(override *vision.Metrics) *vision.Metrics {
	if override != nil {
		return override
	}
	t := h.cfg.Vision.Targets
	return &t
}
