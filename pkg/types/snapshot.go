package types

import (
	"errors"
	"time"

	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/yield"
)

// Line states, ordered from least to most severe.
const (
	StateUnknown  = "unknown"
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateCritical = "critical"
)

// LineSnapshot is the derived state of one tablet press after one scrape.
type LineSnapshot struct {
	SourceID   string    `json:"source_id"`
	SourceType string    `json:"source_type"`
	AgentID    string    `json:"agent_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	// State is one of the State* constants.
	State string `json:"state"`
	// HealthScore is the composite 0-100 line score.
	HealthScore float64 `json:"health_score"`
	// UptimePct is the share of recent scrapes that returned telemetry.
	UptimePct float64 `json:"uptime_pct"`
	// WindowFill is how many signals the drift window currently holds.
	WindowFill int `json:"window_fill"`
	// WindowSize is the drift window capacity; drift is only evaluated once
	// WindowFill reaches it.
	WindowSize int `json:"window_size,omitempty"`

	Signals *yield.Signals            `json:"signals,omitempty"`
	Sensor  *maintenance.SensorSample `json:"sensor,omitempty"`

	Anomalies []maintenance.Anomaly `json:"anomalies,omitempty"`
	Drifts    []yield.Drift         `json:"drifts,omitempty"`
	// Repeated marks a snapshot built from a sample that was already
	// reported; its findings are carried over, not new.
	Repeated bool `json:"repeated,omitempty"`

	// Cert is the TLS certificate state of the press endpoint. Nil for
	// plain-text endpoints.
	Cert *CertStatus `json:"cert,omitempty"`

	// ErrorMessage is non-empty when the scrape failed.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Certificate states reported in CertStatus.Status.
const (
	CertValid       = "valid"
	CertExpiring    = "expiring"
	CertExpired     = "expired"
	CertUnreachable = "unreachable"
)

// CertStatus describes the leaf certificate of a TLS press or broker endpoint.
type CertStatus struct {
	Endpoint  string    `json:"endpoint"`
	AuthType  string    `json:"auth_type"`
	Status    string    `json:"status"`
	NotAfter  time.Time `json:"not_after,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	DaysLeft  int       `json:"days_left"`
	CheckedAt time.Time `json:"checked_at"`
}

// Validate checks the fields the server relies on.
func (s *LineSnapshot) Validate() error {
	if s.SourceID == "" {
		return errors.New("source_id is required")
	}
	if s.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	if StateRank(s.State) < 0 {
		return errors.New("state must be one of unknown, healthy, degraded, critical")
	}
	return nil
}

// StateRank orders line states; it returns -1 for an unrecognised state.
func StateRank(state string) int {
	switch state {
	case StateUnknown:
		return 0
	case StateHealthy:
		return 1
	case StateDegraded:
		return 2
	case StateCritical:
		return 3
	default:
		return -1
	}
}
