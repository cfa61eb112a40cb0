package scraper

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pharmames/pharmames/agent/internal/config"
	"github.com/pharmames/pharmames/pkg/maintenance"
	"github.com/pharmames/pharmames/pkg/yield"
)

const defaultScrapeTimeout = 10 * time.Second

// Reading is the normalized output of one scrape cycle for a single press.
type Reading struct {
	SourceID   string
	SourceType string
	ScrapedAt  time.Time

	// Signals carries the process parameters consumed by the yield engine.
	Signals yield.Signals

	// Sensor carries the condition-monitoring values consumed by the
	// maintenance anomaly detector.
	Sensor maintenance.SensorSample

	// Repeat is set when the source has published nothing since the previous
	// scrape and Signals/Sensor are the already-consumed sample.
	Repeat bool

	// Err is non-nil if the scrape itself failed (connectivity, auth, parse,
	// no telemetry). The compute engine treats it as an unknown line state.
	Err error
}

// Scraper is the common interface implemented by every press scraper.
type Scraper interface {
	Scrape(ctx context.Context) (*Reading, error)
}

// Closer is implemented by scrapers that hold a long-lived connection.
type Closer interface {
	Close()
}

// New returns the appropriate Scraper for the given source configuration.
func New(src config.Source) (Scraper, error) {
	switch src.Type {
	case config.SourcePress:
		client, err := buildHTTPClient(src)
		if err != nil {
			return nil, fmt.Errorf("scraper %q: build http client: %w", src.ID, err)
		}
		return &pressScraper{src: src, client: client}, nil
	case config.SourceMQTT:
		s, err := newMQTTScraper(src)
		if err != nil {
			return nil, fmt.Errorf("scraper %q: %w", src.ID, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("scraper: unsupported type %q", src.Type)
	}
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.EffectiveHeader(), t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.auth.Username, t.auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildTLSConfig returns the dial options shared by HTTP and MQTT sources.
func buildTLSConfig(src config.Source) (*tls.Config, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: src.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}
	if src.Auth.Mode != "mtls" {
		return tlsCfg, nil
	}

	cert, err := tls.LoadX509KeyPair(src.Auth.CertFile, src.Auth.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load client cert: %w", err)
	}
	tlsCfg.Certificates = []tls.Certificate{cert}

	if src.Auth.CAFile != "" {
		caPEM, err := os.ReadFile(src.Auth.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no valid certs found in ca file %q", src.Auth.CAFile)
		}
		tlsCfg.RootCAs = pool
	}
	return tlsCfg, nil
}

// buildHTTPClient constructs an http.Client for the source's auth and TLS settings.
func buildHTTPClient(src config.Source) (*http.Client, error) {
	tlsCfg, err := buildTLSConfig(src)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &authRoundTripper{
			base: &http.Transport{TLSClientConfig: tlsCfg},
			auth: src.Auth,
		},
		Timeout: defaultScrapeTimeout,
	}, nil
}

// newReading initialises an empty Reading stamped with now.
func newReading(src config.Source, now time.Time) *Reading {
	return &Reading{
		SourceID:   src.ID,
		SourceType: src.Type,
		ScrapedAt:  now,
	}
}
