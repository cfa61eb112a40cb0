// Package api implements the pharmames-server REST API on gin.
//
// Engine routes (POST unless noted), all under /api/v1:
//
//	/maintenance/analyze-component, predict-rul, detect-anomalies, find-idle-window
//	/yield/detect-drift, predict, recommendations, validate-recommendation
//	GET /yield/sop-limits
//	/vision/analyze-detection, detect-baseline-deviation, route-alert, analyze-metrics
//	/scheduling/group-batches, optimize, validate
//
// Live views:
//
//	GET /api/v1/lines      live line snapshots with diagnostics
//	GET /api/v1/lines/:id  one live line, 404 when absent or stale
//	GET /api/v1/alerts     firing alerts and the last hour of history
//
// Every response uses the envelope {"success":true,"data":...} with "count"
// added for list results; errors are {"success":false,"error":"..."}.
// Malformed or out-of-range requests get 422.
//
// GET /health is mounted by the caller outside the auth group.
package api
