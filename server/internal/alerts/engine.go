package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pharmames/pharmames/pkg/types"
	"github.com/pharmames/pharmames/pkg/vision"
	"github.com/pharmames/pharmames/server/internal/config"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
	maxFindingsInText = 3
)

// Alert kinds.
const (
	KindLine   = "line"
	KindVision = "vision"
)

// Alert represents a single alert event.
type Alert struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Key        string     `json:"key"`
	SourceID   string     `json:"source_id"`
	Severity   string     `json:"severity"` // critical | warning | info
	Message    string     `json:"message"`
	Recipients []string   `json:"recipients,omitempty"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine raises alerts from line snapshots and vision routings and delivers
// webhook notifications when they fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	minSeverity vision.Severity
	cooldown    time.Duration
	webhooks    []config.WebhookConfig
	client      *http.Client
	now         func() time.Time

	mu       sync.Mutex
	active   map[string]*Alert    // key: "<kind>:<subject>"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved or one-shot alerts
	seq      int64
}

// New creates an Engine from the server alert configuration.
func New(cfg config.AlertsConfig) *Engine {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	minSev := cfg.MinSeverity
	if minSev.Rank() == 0 {
		minSev = vision.SeverityModerate
	}
	return &Engine{
		minSeverity: minSev,
		cooldown:    cooldown,
		webhooks:    cfg.Webhooks,
		client:      &http.Client{Timeout: 10 * time.Second},
		now:         time.Now,
		active:      make(map[string]*Alert),
		lastFire:    make(map[string]time.Time),
	}
}

// EvaluateSnapshot fires a line alert when snap is critical and resolves a
// firing one once the line reports healthy or degraded. Unknown states leave
// a firing alert untouched.
func (e *Engine) EvaluateSnapshot(snap *types.LineSnapshot) {
	key := KindLine + ":" + snap.SourceID

	switch snap.State {
	case types.StateCritical:
		e.fire(key, func(now time.Time, id string) *Alert {
			return &Alert{
				ID:       id,
				Kind:     KindLine,
				Key:      key,
				SourceID: snap.SourceID,
				Severity: "critical",
				Message:  lineMessage(snap),
				FiredAt:  now,
				State:    "firing",
			}
		})
	case types.StateHealthy, types.StateDegraded:
		e.resolve(key)
	}
}

// EvaluateVision fires an alert for a routed detection at or above the
// configured minimum severity. Vision alerts are one-shot and never resolve.
func (e *Engine) EvaluateVision(r vision.Result, rt vision.Routing) bool {
	if r.Severity.Rank() < e.minSeverity.Rank() {
		return false
	}
	key := KindVision + ":" + string(r.Type) + ":" + r.Location
	return e.fire(key, func(now time.Time, id string) *Alert {
		return &Alert{
			ID:         id,
			Kind:       KindVision,
			Key:        key,
			SourceID:   r.Location,
			Severity:   visionLabel(r.Severity),
			Message:    visionMessage(r, rt),
			Recipients: append([]string(nil), rt.Recipients...),
			FiredAt:    now,
			State:      "firing",
		}
	})
}

// fire records and delivers the alert built by build unless key is already
// firing or cooling down.
func (e *Engine) fire(key string, build func(now time.Time, id string) *Alert) bool {
	e.mu.Lock()
	now := e.now()
	if _, firing := e.active[key]; firing {
		e.mu.Unlock()
		return false
	}
	if last, ok := e.lastFire[key]; ok && now.Sub(last) < e.cooldown {
		e.mu.Unlock()
		return false
	}
	e.seq++
	a := build(now, fmt.Sprintf("%s:%d", key, e.seq))
	e.lastFire[key] = now
	if a.Kind == KindLine {
		e.active[key] = a
	} else {
		e.remember(a)
	}
	alertCopy := *a
	e.mu.Unlock()

	slog.Warn("alerts: alert fired",
		"key", key,
		"source", a.SourceID,
		"severity", a.Severity,
	)
	go e.deliver(&alertCopy)
	return true
}

func (e *Engine) resolve(key string) {
	e.mu.Lock()
	a, ok := e.active[key]
	if !ok {
		e.mu.Unlock()
		return
	}
	resolved := e.now()
	a.State = "resolved"
	a.ResolvedAt = &resolved
	delete(e.active, key)
	e.remember(a)
	alertCopy := *a
	e.mu.Unlock()

	slog.Info("alerts: alert resolved", "key", key, "source", a.SourceID)
	go e.deliver(&alertCopy)
}

// remember appends a to the bounded history. Callers hold e.mu.
func (e *Engine) remember(a *Alert) {
	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
}

// Active returns copies of all currently firing alerts plus any alerts
// fired or resolved within the past hour, sorted newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		at := a.FiredAt
		if a.ResolvedAt != nil {
			at = *a.ResolvedAt
		}
		if at.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}

func lineMessage(snap *types.LineSnapshot) string {
	var findings []string
	for _, a := range snap.Anomalies {
		findings = append(findings, a.Description)
	}
	for _, d := range snap.Drifts {
		findings = append(findings, d.Description)
	}
	msg := fmt.Sprintf("[critical] line %s is critical (health score %.0f)", snap.SourceID, snap.HealthScore)
	if len(findings) == 0 {
		return msg
	}
	extra := ""
	if len(findings) > maxFindingsInText {
		extra = fmt.Sprintf(" (+%d more)", len(findings)-maxFindingsInText)
		findings = findings[:maxFindingsInText]
	}
	return msg + ": " + strings.Join(findings, "; ") + extra
}

func visionMessage(r vision.Result, rt vision.Routing) string {
	return fmt.Sprintf("[%s] %s at %s (priority %d): %s. Respond by %s via %s",
		r.Severity, strings.ReplaceAll(string(r.Type), "_", " "), r.Location, r.PriorityScore,
		r.Recommendation, rt.ResponseDeadline.Format(time.RFC3339), strings.Join(rt.NotificationMethods, ", "))
}

func visionLabel(s vision.Severity) string {
	switch s {
	case vision.SeverityCritical:
		return "critical"
	case vision.SeverityModerate:
		return "warning"
	default:
		return "info"
	}
}
