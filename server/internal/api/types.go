package api

import (
	"time"

	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/scheduling"
	"github.com/pharmames/pharmames/pkg/types"
	"github.com/pharmames/pharmames/pkg/vision"
	"github.com/pharmames/pharmames/pkg/yield"
)

// successResponse is the envelope of every successful API response.
// Count is set for list results only.
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Count   *int `json:"count,omitempty"`
}

// errorResponse is the envelope of every failed API response.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Success   bool      `json:"success"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Agents    []string  `json:"agents"`
	LinesLive int       `json:"lines_live"`
}

// LineResponse is one line entry in GET /api/v1/lines or GET /api/v1/lines/:id.
type LineResponse struct {
	*types.LineSnapshot
	LastSeen    time.Time        `json:"last_seen"`
	Diagnostics []DiagnosticHint `json:"diagnostics"`
}

// --- maintenance -------------------------------------------------------------

type analyzeComponentRequest struct {
	Component *maintenance.ComponentHealth `json:"component" binding:"required"`
	Schedule  []maintenance.ScheduledBatch `json:"schedule"`
}

type detectAnomaliesRequest struct {
	SensorData []maintenance.SensorSample `json:"sensor_data" binding:"required"`
	Thresholds *maintenance.Thresholds    `json:"thresholds"`
}

type findIdleWindowRequest struct {
	Schedule      []maintenance.ScheduledBatch `json:"schedule"`
	DurationHours *float64                     `json:"duration_hours" binding:"required"`
}

// --- yield -------------------------------------------------------------------

type detectDriftRequest struct {
	Signals    []yield.Signals `json:"signals" binding:"required"`
	WindowSize *int            `json:"window_size"`
}

type yieldPredictRequest struct {
	Signals               *yield.Signals      `json:"signals" binding:"required"`
	BatchProfile          *yield.BatchProfile `json:"batch_profile" binding:"required"`
	HistoricalYields      []float64           `json:"historical_yields"`
	ActiveRecommendations int                 `json:"active_recommendations"`
}

type recommendationsRequest struct {
	Signals   *yield.Signals      `json:"signals" binding:"required"`
	Profile   *yield.BatchProfile `json:"profile" binding:"required"`
	SOPLimits *yield.SOPLimits    `json:"sop_limits"`
	Specs     *yield.ProductSpecs `json:"specs"`
}

type validateRecommendationRequest struct {
	Recommendation *yield.Recommendation `json:"recommendation" binding:"required"`
	SOPLimits      *yield.SOPLimits      `json:"sop_limits"`
}

type validateRecommendationResponse struct {
	IsValid bool `json:"is_valid"`
}

type sopLimitsResponse struct {
	SOPLimits    yield.SOPLimits    `json:"sop_limits"`
	ProductSpecs yield.ProductSpecs `json:"product_specs"`
}

// --- vision ------------------------------------------------------------------

type analyzeDetectionRequest struct {
	Detection *vision.Detection `json:"detection" binding:"required"`
}

type baselineDeviationRequest struct {
	Current  *vision.Metrics `json:"current" binding:"required"`
	Baseline *vision.Metrics `json:"baseline"`
}

type routeAlertRequest struct {
	Detection *vision.Result `json:"detection" binding:"required"`
}

type analyzeMetricsRequest struct {
	Detections       []vision.Result `json:"detections"`
	BaselineMetrics  *vision.Metrics `json:"baseline_metrics" binding:"required"`
	TotalInspections *int            `json:"total_inspections" binding:"required"`
	Baseline         *vision.Metrics `json:"baseline"`
}

// --- scheduling --------------------------------------------------------------

type groupBatchesRequest struct {
	Batches []scheduling.BatchOrder `json:"batches" binding:"required"`
}

type optimizeRequest struct {
	Groups      []scheduling.Group      `json:"groups" binding:"required"`
	Conditions  []scheduling.Condition  `json:"conditions" binding:"required"`
	Constraints *scheduling.Constraints `json:"constraints"`
}

type validateScheduleRequest struct {
	Groups            []scheduling.Group            `json:"groups" binding:"required"`
	Conditions        []scheduling.Condition        `json:"conditions" binding:"required"`
	EquipmentFailures []scheduling.EquipmentFailure `json:"equipment_failures"`
}
