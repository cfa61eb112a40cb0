package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/pharmames/pharmames/agent/internal/config"
	"github.com/pharmames/pharmames/pkg/yield"
)

const (
	// staleAfter is how long the last telemetry message stays usable.
	staleAfter = 2 * time.Minute

	connectRetryInterval = 5 * time.Second
	disconnectQuiesceMS  = 250
)

var errNoTelemetry = errors.New("no telemetry yet")

// telemetry is the JSON payload published by a press gateway.
type telemetry struct {
	yield.Signals
	Vibration   float64 `json:"vibration"`
	MotorLoad   float64 `json:"motor_load"`
	Temperature float64 `json:"temperature"`
}

// mqttScraper keeps the most recent telemetry message for one press topic.
// Scrape returns that message until it goes stale.
type mqttScraper struct {
	src    config.Source
	client mqtt.Client
	now    func() time.Time

	mu      sync.Mutex
	latest  *Reading
	lastErr error
	seq     uint64 // messages decoded
	served  uint64 // seq at the last Scrape
}

func newMQTTScraper(src config.Source) (*mqttScraper, error) {
	s := &mqttScraper{src: src, now: func() time.Time { return time.Now().UTC() }}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(src.Endpoint)
	opts.SetClientID("pharmames-agent-" + src.ID + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(connectRetryInterval)
	if src.Auth.Mode == "basic" {
		opts.SetUsername(src.Auth.Username)
		opts.SetPassword(src.Auth.Password())
	}
	if strings.HasPrefix(src.Endpoint, "ssl://") || strings.HasPrefix(src.Endpoint, "tls://") ||
		strings.HasPrefix(src.Endpoint, "mqtts://") || src.Auth.Mode == "mtls" {
		tlsCfg, err := buildTLSConfig(src)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	// Subscribing from the connect handler restores the subscription after
	// every automatic reconnect.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		tok := c.Subscribe(src.Topic, src.SubscribeQoS(), s.onMessage)
		tok.Wait()
		if err := tok.Error(); err != nil {
			slog.Error("scraper: mqtt subscribe failed", "source", src.ID, "topic", src.Topic, "err", err)
			return
		}
		slog.Info("scraper: mqtt subscribed", "source", src.ID, "topic", src.Topic)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("scraper: mqtt connection lost", "source", src.ID, "err", err)
	})

	s.client = mqtt.NewClient(opts)
	// With ConnectRetry the token completes only once the broker is reachable,
	// so the agent starts even when the broker is down.
	s.client.Connect()
	return s, nil
}

func (s *mqttScraper) onMessage(_ mqtt.Client, msg mqtt.Message) {
	s.handlePayload(msg.Payload())
}

// handlePayload decodes one telemetry message and makes it the latest reading.
// Undecodable payloads are kept as the last error and the previous reading stays.
func (s *mqttScraper) handlePayload(payload []byte) {
	var t telemetry
	if err := json.Unmarshal(payload, &t); err != nil {
		s.mu.Lock()
		s.lastErr = fmt.Errorf("decode telemetry: %w", err)
		s.mu.Unlock()
		return
	}

	now := s.now()
	ts := t.Timestamp
	if ts.IsZero() {
		ts = now
	}
	r := newReading(s.src, now)
	r.Signals = t.Signals
	r.Signals.Timestamp = ts
	r.Sensor.Vibration = t.Vibration
	r.Sensor.MotorLoad = t.MotorLoad
	r.Sensor.Temperature = t.Temperature
	r.Sensor.Timestamp = ts

	s.mu.Lock()
	s.latest = r
	s.lastErr = nil
	s.seq++
	s.mu.Unlock()
}

// Scrape returns a copy of the latest telemetry, flagged as a repeat when no
// message arrived since the previous call. It never blocks on the broker.
func (s *mqttScraper) Scrape(_ context.Context) (*Reading, error) {
	now := s.now()

	s.mu.Lock()
	latest, lastErr := s.latest, s.lastErr
	repeat := latest != nil && s.seq == s.served
	s.served = s.seq
	s.mu.Unlock()

	if latest == nil {
		r := newReading(s.src, now)
		r.Err = errNoTelemetry
		if lastErr != nil {
			r.Err = fmt.Errorf("%w: %w", errNoTelemetry, lastErr)
		}
		return r, nil
	}

	r := *latest
	r.ScrapedAt = now
	r.Repeat = repeat
	if age := now.Sub(latest.ScrapedAt); age > staleAfter {
		r.Err = fmt.Errorf("telemetry stale for %s", age.Truncate(time.Second))
	}
	return &r, nil
}

// Close disconnects from the broker.
func (s *mqttScraper) Close() {
	if s.client != nil {
		s.client.Disconnect(disconnectQuiesceMS)
	}
}
