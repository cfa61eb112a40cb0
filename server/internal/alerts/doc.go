// Package alerts turns critical line snapshots and routed vision detections
// into alert events and delivers them to Teams, Slack, or generic HTTP
// webhooks. A per-key cooldown suppresses repeats; line alerts resolve when
// the line leaves the critical state.
package alerts
