package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/yield"
)

func (h *Handler) detectDrift(c *gin.Context) {
	var req detectDriftRequest
	if !bind(c, &req) {
		return
	}
	window := h.cfg.Yield.DriftWindow
	if req.WindowSize != nil {
		if *req.WindowSize < 2 {
			fail(c, http.StatusUnprocessableEntity, "window_size must be at least 2")
			return
		}
		window = *req.WindowSize
	}

	out := h.yield.DetectDrift(req.Signals, window)
	for _, d := range out {
		h.metrics.Finding("yield", string(d.Severity), 1)
	}
	list(c, orEmpty(out), len(out))
}

func (h *Handler) predictYield(c *gin.Context) {
	var req yieldPredictRequest
	if !bind(c, &req) {
		return
	}
	if req.ActiveRecommendations < 0 {
		fail(c, http.StatusUnprocessableEntity, "active_recommendations must not be negative")
		return
	}
	ok200(c, yield.PredictYield(yield.PredictionInput{
		Signals:               *req.Signals,
		Profile:               *req.BatchProfile,
		HistoricalYields:      req.HistoricalYields,
		ActiveRecommendations: req.ActiveRecommendations,
	}))
}

func (h *Handler) recommendations(c *gin.Context) {
	var req recommendationsRequest
	if !bind(c, &req) {
		return
	}
	limits := h.cfg.Yield.SOPLimits
	if req.SOPLimits != nil {
		limits = *req.SOPLimits
	}
	specs := h.cfg.Yield.ProductSpecs
	if req.Specs != nil {
		specs = *req.Specs
	}

	out := h.yield.GenerateRecommendations(*req.Signals, *req.Profile, limits, specs)
	list(c, orEmpty(out), len(out))
}

func (h *Handler) validateRecommendation(c *gin.Context) {
	var req validateRecommendationRequest
	if !bind(c, &req) {
		return
	}
	limits := h.cfg.Yield.SOPLimits
	if req.SOPLimits != nil {
		limits = *req.SOPLimits
	}
	ok200(c, validateRecommendationResponse{
		IsValid: yield.ValidateRecommendation(*req.Recommendation, limits),
	})
}

func (h *Handler) sopLimits(c *gin.Context) {
	ok200(c, sopLimitsResponse{
		SOPLimits:    h.cfg.Yield.SOPLimits,
		ProductSpecs: h.cfg.Yield.ProductSpecs,
	})
}
