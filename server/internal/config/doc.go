// Package config loads the server-side configuration from the `server:` section
// of server.yaml.
//
// Config fields:
//   - HTTPPort     : port for the REST API, metrics and WebSocket hub (default 3001)
//   - LogLevel     : debug | info | warn | error (default info)
//   - Auth         : mode apikey|none, key_env (default AI_AGENTS_API_KEY), header (default x-api-key)
//   - CORS         : allowed browser origins (empty allows all)
//   - Snapshot.TTL : how long a line snapshot remains live (default 5m)
//   - Stream       : WebSocket broadcast interval (default 5s)
//   - Alerts       : min vision severity, cooldown, slack/teams/http webhooks
//   - Engines      : anomaly thresholds, drift window, SOP limits, product specs, KPI targets
//
// Load(path) applies defaults before unmarshalling, then validates.
package config
