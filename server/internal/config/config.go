package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/vision"
	"github.com/pharmames/pharmames/pkg/yield"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort       = 3001
	DefaultLogLevel       = "info"
	DefaultSnapshotTTL    = 5 * time.Minute
	DefaultStreamInterval = 5 * time.Second
	DefaultAlertCooldown  = 15 * time.Minute
	DefaultMinSeverity    = vision.SeverityModerate
	DefaultKeyEnv         = "AI_AGENTS_API_KEY"
)

// Config holds the server-side configuration parsed from the `server:` section
// of server.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, metrics and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// Auth configures how the server authenticates API callers and agents.
	Auth AuthConfig `yaml:"auth"`

	// CORS lists the browser origins allowed to call the API.
	CORS CORSConfig `yaml:"cors"`

	// Snapshot controls in-memory line snapshot retention.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Stream controls the WebSocket broadcast cadence.
	Stream StreamConfig `yaml:"stream"`

	// Alerts holds the severity floor, cooldown and webhook delivery targets.
	Alerts AlertsConfig `yaml:"alerts"`

	// Engines overrides the decision engines' reference tables.
	Engines EnginesConfig `yaml:"engines"`
}

// AuthConfig controls client authentication on the server side.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from. Defaults to "x-api-key".
	// "Authorization: Bearer <key>" is always accepted as well.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// CORSConfig lists allowed browser origins. Empty or ["*"] allows all.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AllowAll reports whether every origin is accepted.
func (c CORSConfig) AllowAll() bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// SnapshotConfig controls in-memory snapshot retention.
type SnapshotConfig struct {
	// TTL is how long a line's snapshot remains in the store after its last update.
	TTL time.Duration `yaml:"ttl"`
}

// StreamConfig controls the WebSocket hub.
type StreamConfig struct {
	// Interval is how often live line snapshots are broadcast.
	Interval time.Duration `yaml:"interval"`
}

// AlertsConfig holds alert filtering and webhook delivery targets.
type AlertsConfig struct {
	// MinSeverity is the lowest vision severity that is forwarded
	// (minor | moderate | critical). Critical line snapshots always alert.
	MinSeverity vision.Severity `yaml:"min_severity"`

	// Cooldown suppresses repeats of the same alert key for this duration.
	Cooldown time.Duration `yaml:"cooldown"`

	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// EnginesConfig carries the per-plant engine reference values.
type EnginesConfig struct {
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Yield       YieldConfig       `yaml:"yield"`
	Vision      VisionConfig      `yaml:"vision"`
}

// MaintenanceConfig overrides the default anomaly thresholds.
type MaintenanceConfig struct {
	Thresholds maintenance.Thresholds `yaml:"thresholds"`
}

// YieldConfig overrides the drift window, SOP limits and product specs.
type YieldConfig struct {
	DriftWindow  int                `yaml:"drift_window"`
	SOPLimits    yield.SOPLimits    `yaml:"sop_limits"`
	ProductSpecs yield.ProductSpecs `yaml:"product_specs"`
}

// VisionConfig overrides the KPI baseline targets.
type VisionConfig struct {
	Targets vision.Metrics `yaml:"targets"`
}

// Load reads and parses the config file at path, returning the server configuration.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			LogLevel: DefaultLogLevel,
			Auth:     AuthConfig{Mode: "apikey", KeyEnv: DefaultKeyEnv},
			Snapshot: SnapshotConfig{TTL: DefaultSnapshotTTL},
			Stream:   StreamConfig{Interval: DefaultStreamInterval},
			Alerts: AlertsConfig{
				MinSeverity: DefaultMinSeverity,
				Cooldown:    DefaultAlertCooldown,
			},
			Engines: EnginesConfig{
				Maintenance: MaintenanceConfig{Thresholds: maintenance.DefaultThresholds()},
				Yield: YieldConfig{
					DriftWindow:  yield.DefaultDriftWindow,
					SOPLimits:    yield.DefaultSOPLimits(),
					ProductSpecs: yield.DefaultProductSpecs(),
				},
				Vision: VisionConfig{Targets: vision.DefaultTargets()},
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("server.log_level: %w", err)
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	if s.Snapshot.TTL < 0 {
		return fmt.Errorf("server.snapshot.ttl must not be negative")
	}
	if s.Stream.Interval <= 0 {
		return fmt.Errorf("server.stream.interval must be positive")
	}
	if s.Alerts.MinSeverity.Rank() == 0 {
		return fmt.Errorf("server.alerts.min_severity %q unknown: want minor|moderate|critical", s.Alerts.MinSeverity)
	}
	if s.Alerts.Cooldown < 0 {
		return fmt.Errorf("server.alerts.cooldown must not be negative")
	}
	for i, wh := range s.Alerts.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("server.alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("server.alerts.webhooks[%d]: url_env is required", i)
		}
	}
	th := s.Engines.Maintenance.Thresholds
	if th.Vibration < 0 || th.Temperature < 0 || th.MotorLoad < 0 {
		return fmt.Errorf("server.engines.maintenance.thresholds must not be negative")
	}
	if s.Engines.Yield.DriftWindow < 2 {
		return fmt.Errorf("server.engines.yield.drift_window must be at least 2")
	}
	for name, l := range map[string]yield.Limit{
		"feeder_speed":           s.Engines.Yield.SOPLimits.FeederSpeed,
		"turret_speed":           s.Engines.Yield.SOPLimits.TurretSpeed,
		"pre_compression_force":  s.Engines.Yield.SOPLimits.PreCompressionForce,
		"main_compression_force": s.Engines.Yield.SOPLimits.MainCompressionForce,
		"vacuum":                 s.Engines.Yield.SOPLimits.Vacuum,
	} {
		if l.Min > l.Max {
			return fmt.Errorf("server.engines.yield.sop_limits.%s: min %v exceeds max %v", name, l.Min, l.Max)
		}
	}
	return nil
}

// ParseLevel maps a log_level string onto a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}
