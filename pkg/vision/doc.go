// Package vision grades camera detections on the line, scores and routes the
// resulting alerts and rolls them up into right-first-time (RFT) metrics.
//
// All per-category knowledge (base severities, recipients, workflow
// integrations, recommendation text) lives in the immutable tables of
// tables.go.
package vision
