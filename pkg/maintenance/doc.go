// Package maintenance turns equipment health and vibration/temperature/load
// telemetry into maintenance decisions.
//
// rul.go predicts remaining useful life from a linear degradation model whose
// base rate (0.001 health/hour) is scaled by three binary stress multipliers.
//
// anomaly.go checks each SensorSample against overridable thresholds.
//
// window.go finds the first idle gap in a production schedule.
//
// decision.go combines health, RUL and trend into a MaintenanceDecision and
// asks window.go when the work can happen.
//
// Every operation is a pure function of its inputs. Identifiers and "now" come
// from the ident.Generator and ident.Clock passed to New.
package maintenance
