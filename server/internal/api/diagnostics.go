package api

import (
	"fmt"
	"sort"

	"github.com/pharmames/pharmames/pkg/types"
)

// Hint levels, most severe first.
const (
	levelCritical = "critical"
	levelWarning  = "warning"
	levelInfo     = "info"
	levelOK       = "ok"
)

// lowUptimePct is the uptime below which a line is flagged as intermittent.
const lowUptimePct = 90.0

// DiagnosticHint is one readable insight about a line's condition.
// The UI shows Title as a chip and Detail on click.
type DiagnosticHint struct {
	// Key is stable and machine-readable.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical".
	Level  string   `json:"level"`
	Title  string   `json:"title"`
	Detail string   `json:"detail"`
	Value  *float64 `json:"value,omitempty"`
}

// lineDiagnostics turns a snapshot into hints ordered critical, warning,
// info, ok.
func lineDiagnostics(snap *types.LineSnapshot) []DiagnosticHint {
	if snap.ErrorMessage != "" {
		return []DiagnosticHint{{
			Key:   "scrape_failed",
			Level: levelCritical,
			Title: "No press telemetry",
			Detail: fmt.Sprintf(
				"The agent could not read this press: %q. Check that the press "+
					"controller or broker is reachable and the credentials are valid. "+
					"Line state is unknown until telemetry resumes.", snap.ErrorMessage),
		}}
	}

	var hints []DiagnosticHint

	for _, a := range snap.Anomalies {
		hints = append(hints, DiagnosticHint{
			Key:    "anomaly_" + a.ID,
			Level:  findingLevel(a.Severity.Rank()),
			Title:  a.Source,
			Detail: a.Description,
		})
	}

	for _, d := range snap.Drifts {
		mag := d.Magnitude
		hints = append(hints, DiagnosticHint{
			Key:    "drift_" + string(d.Parameter),
			Level:  findingLevel(d.Severity.Rank()),
			Title:  fmt.Sprintf("%s %s %.1f%%", d.Parameter, d.Direction, d.Magnitude),
			Detail: d.Description + ". " + d.RecommendedAction + ".",
			Value:  &mag,
		})
	}

	if snap.UptimePct < lowUptimePct {
		up := snap.UptimePct
		hints = append(hints, DiagnosticHint{
			Key:   "intermittent_telemetry",
			Level: levelWarning,
			Title: fmt.Sprintf("%.0f%% uptime", up),
			Detail: "Recent scrapes of this press failed intermittently. " +
				"Findings are based on fewer readings than usual.",
			Value: &up,
		})
	}

	if h, ok := certHint(snap.Cert); ok {
		hints = append(hints, h)
	}

	if snap.WindowSize > 0 && snap.WindowFill < snap.WindowSize {
		hints = append(hints, DiagnosticHint{
			Key:   "warming_up",
			Level: levelInfo,
			Title: "Drift window filling",
			Detail: fmt.Sprintf("Drift detection starts once %d readings are collected; %d so far.",
				snap.WindowSize, snap.WindowFill),
		})
	}

	if len(hints) == 0 {
		score := snap.HealthScore
		hints = append(hints, DiagnosticHint{
			Key:    "nominal",
			Level:  levelOK,
			Title:  "Line nominal",
			Detail: "No anomalies or process drift on the latest reading.",
			Value:  &score,
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank(hints[i].Level) > levelRank(hints[j].Level)
	})
	return hints
}

// certHint reports an expired, expiring or unverifiable endpoint certificate.
func certHint(cs *types.CertStatus) (DiagnosticHint, bool) {
	if cs == nil {
		return DiagnosticHint{}, false
	}
	days := float64(cs.DaysLeft)
	switch cs.Status {
	case types.CertExpired:
		return DiagnosticHint{
			Key:    "cert_expired",
			Level:  levelCritical,
			Title:  "Certificate expired",
			Detail: fmt.Sprintf("The certificate of %s expired on %s.", cs.Endpoint, cs.NotAfter.Format("2006-01-02")),
			Value:  &days,
		}, true
	case types.CertExpiring:
		return DiagnosticHint{
			Key:   "cert_expiring",
			Level: levelWarning,
			Title: fmt.Sprintf("Certificate expires in %d days", cs.DaysLeft),
			Detail: fmt.Sprintf("Renew the certificate of %s (issuer %q) before %s.",
				cs.Endpoint, cs.Issuer, cs.NotAfter.Format("2006-01-02")),
			Value: &days,
		}, true
	case types.CertUnreachable:
		return DiagnosticHint{
			Key:    "cert_unverified",
			Level:  levelInfo,
			Title:  "Certificate not inspected",
			Detail: fmt.Sprintf("The TLS handshake with %s failed, so its certificate could not be checked.", cs.Endpoint),
		}, true
	}
	return DiagnosticHint{}, false
}

// findingLevel maps a high/medium/low finding rank to a hint level.
func findingLevel(rank int) string {
	switch {
	case rank >= 3:
		return levelCritical
	case rank == 2:
		return levelWarning
	default:
		return levelInfo
	}
}

func levelRank(level string) int {
	switch level {
	case levelCritical:
		return 3
	case levelWarning:
		return 2
	case levelInfo:
		return 1
	default:
		return 0
	}
}
