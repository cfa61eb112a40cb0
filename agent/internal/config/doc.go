// Package config loads and watches the agent configuration file (agent.yaml).
//
// Top-level types:
//   - Config{Agent}: full config tree parsed from YAML
//   - AgentConfig: server_endpoint, scrape_interval, buffer_size,
//     window_size, thresholds, sources [], server_auth
//   - Source: id, type (press|mqtt), endpoint, topic, qos, auth, tls
//   - AuthConfig: mode (mtls|apikey|bearer|basic|none), cert/key/ca files, header,
//     key_env, token_env, username, password_env; secrets resolve from the environment
//
// Load(path) reads the YAML file, applies defaults (30s scrape,
// 1000 buffer, 30-reading window, factory alarm thresholds), then validates
// required fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors (vim, VS Code) by re-adding the watch after
// a reload.
package config
