package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pharmames/pharmames/pkg/maintenance"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultScrapeInterval = 30 * time.Second
	DefaultBufferSize     = 1000
	DefaultWindowSize     = 30
	DefaultMQTTQoS        = 1
)

// Source types.
const (
	SourcePress = "press"
	SourceMQTT  = "mqtt"
)

// Config is the top-level agent configuration. Fields map 1:1 to
// agent.example.yaml.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all agent-side settings.
type AgentConfig struct {
	// ServerEndpoint is the base URL of pharmames-server, e.g. http://mes:3001.
	ServerEndpoint string `yaml:"server_endpoint"`

	// ScrapeInterval controls how often each press is polled.
	ScrapeInterval time.Duration `yaml:"scrape_interval"`

	// BufferSize is the maximum number of snapshots held in memory when
	// the server is unreachable.
	BufferSize int `yaml:"buffer_size"`

	// WindowSize is the number of readings per press used for drift detection.
	WindowSize int `yaml:"window_size"`

	// Thresholds are the condition-monitoring alarm limits. Zero fields use
	// the built-in defaults.
	Thresholds maintenance.Thresholds `yaml:"thresholds"`

	// Sources is the list of tablet presses to monitor.
	Sources []Source `yaml:"sources"`

	// ServerAuth configures how the agent authenticates to pharmames-server.
	ServerAuth AuthConfig `yaml:"server_auth"`
}

// Source describes one monitored tablet press.
type Source struct {
	// ID is a unique, human-readable identifier, usually the line name.
	ID string `yaml:"id"`

	// Type is press (Prometheus text exposition over HTTP) or mqtt.
	Type string `yaml:"type"`

	// Endpoint is the exposition URL for press sources or the broker URL
	// (tcp://host:1883) for mqtt sources.
	Endpoint string `yaml:"endpoint"`

	// Topic is the MQTT topic carrying JSON telemetry. mqtt only.
	Topic string `yaml:"topic"`

	// QoS is the MQTT subscription QoS (0-2, default 1). mqtt only.
	QoS *byte `yaml:"qos"`

	// Auth configures how the agent authenticates to this source.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// SubscribeQoS returns the configured QoS or DefaultMQTTQoS.
func (s Source) SubscribeQoS() byte {
	if s.QoS == nil {
		return DefaultMQTTQoS
	}
	return *s.QoS
}

// AuthConfig specifies the authentication mode for a source or the server.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields, used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// Header is the HTTP header the API key is sent in (Mode == "apikey").
	Header string `yaml:"header"`
	// KeyEnv names the environment variable holding the API key.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv string `yaml:"token_env"`

	// Username is the literal basic-auth (or MQTT) username.
	Username string `yaml:"username"`
	// PasswordEnv names the environment variable holding the password.
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// EffectiveHeader returns the API key header, defaulting to x-api-key.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return "x-api-key"
	}
	return a.Header
}

// TLSConfig holds per-source TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			ScrapeInterval: DefaultScrapeInterval,
			BufferSize:     DefaultBufferSize,
			WindowSize:     DefaultWindowSize,
			Thresholds:     maintenance.DefaultThresholds(),
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	a := cfg.Agent
	if a.ServerEndpoint == "" {
		return fmt.Errorf("agent.server_endpoint is required")
	}
	if a.ScrapeInterval <= 0 {
		return fmt.Errorf("agent.scrape_interval must be positive")
	}
	if a.BufferSize <= 0 {
		return fmt.Errorf("agent.buffer_size must be positive")
	}
	if a.WindowSize < 2 {
		return fmt.Errorf("agent.window_size must be at least 2")
	}
	if a.Thresholds.Vibration < 0 || a.Thresholds.Temperature < 0 || a.Thresholds.MotorLoad < 0 {
		return fmt.Errorf("agent.thresholds must not be negative")
	}
	seen := make(map[string]bool, len(a.Sources))
	for i, src := range a.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[%d]: id is required", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("sources[%d]: duplicate id %q", i, src.ID)
		}
		seen[src.ID] = true
		if src.Endpoint == "" {
			return fmt.Errorf("sources[%d] %q: endpoint is required", i, src.ID)
		}
		switch src.Type {
		case SourcePress:
		case SourceMQTT:
			if src.Topic == "" {
				return fmt.Errorf("sources[%d] %q: topic is required for mqtt", i, src.ID)
			}
			if src.QoS != nil && *src.QoS > 2 {
				return fmt.Errorf("sources[%d] %q: qos must be 0, 1 or 2", i, src.ID)
			}
		default:
			return fmt.Errorf("sources[%d] %q: unknown type %q", i, src.ID, src.Type)
		}
		switch src.Auth.Mode {
		case "mtls", "apikey", "bearer", "basic", "none", "":
		default:
			return fmt.Errorf("sources[%d] %q: unknown auth mode %q", i, src.ID, src.Auth.Mode)
		}
	}
	switch a.ServerAuth.Mode {
	case "mtls":
		if a.ServerAuth.CertFile == "" || a.ServerAuth.KeyFile == "" {
			return fmt.Errorf("agent.server_auth: mtls requires cert_file and key_file")
		}
	case "apikey", "none", "":
	default:
		return fmt.Errorf("agent.server_auth: unknown mode %q", a.ServerAuth.Mode)
	}
	return nil
}
