package shipper

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pharmames/pharmames/agent/internal/config"
	"github.com/pharmames/pharmames/pkg/types"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
	sendTimeout       = 10 * time.Second

	// SnapshotPath is the server route that accepts line snapshots.
	SnapshotPath = "/api/v1/lines/snapshots"
)

// Shipper buffers line snapshots and ships them to pharmames-server.
// Ship() is non-blocking; when the buffer is full the oldest snapshot is evicted.
// Run() must be called in a goroutine to drain the buffer.
type Shipper struct {
	cfg     config.AgentConfig
	url     string
	agentID string
	client  *http.Client
	buf     chan *types.LineSnapshot
	bo      *backoff
}

// permanentError marks a response that retrying cannot fix.
type permanentError struct {
	status int
	body   string
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("server rejected snapshot: status %d: %s", e.status, e.body)
}

// New creates a Shipper using the given agent config.
func New(cfg config.AgentConfig) (*Shipper, error) {
	client, err := buildClient(cfg.ServerAuth)
	if err != nil {
		return nil, fmt.Errorf("shipper: %w", err)
	}
	host, _ := os.Hostname()
	return &Shipper{
		cfg:     cfg,
		url:     strings.TrimRight(cfg.ServerEndpoint, "/") + SnapshotPath,
		agentID: host,
		client:  client,
		buf:     make(chan *types.LineSnapshot, max(cfg.BufferSize, 1)),
		bo:      newBackoff(backoffInitial, backoffMax),
	}, nil
}

// Ship enqueues snap. If the buffer is full the oldest entry is evicted to
// make room.
func (s *Shipper) Ship(snap *types.LineSnapshot) {
	if snap.AgentID == "" {
		snap.AgentID = s.agentID
	}
	for {
		select {
		case s.buf <- snap:
			return
		default:
		}
		// Buffer full: drop the oldest snapshot, keep the newest.
		select {
		case old := <-s.buf:
			slog.Warn("shipper: buffer full, evicted oldest snapshot",
				"source", old.SourceID, "buffer_cap", cap(s.buf))
		default:
		}
	}
}

// Run drains the buffer, sending snapshots to the server. A snapshot that
// fails with a transient error is retried with backoff before the next one
// is taken. Run blocks until ctx is cancelled.
func (s *Shipper) Run(ctx context.Context) {
	for {
		var snap *types.LineSnapshot
		select {
		case <-ctx.Done():
			return
		case snap = <-s.buf:
		}

		for {
			err := s.send(ctx, snap)
			if err == nil {
				s.bo.reset()
				slog.Debug("shipper: snapshot delivered", "source", snap.SourceID)
				break
			}
			if ctx.Err() != nil {
				return
			}

			var perm *permanentError
			if errors.As(err, &perm) {
				slog.Error("shipper: permanent send error, discarding snapshot",
					"source", snap.SourceID, "status", perm.status, "err", err)
				break
			}

			wait := s.bo.next()
			slog.Warn("shipper: send failed, will retry",
				"endpoint", s.url, "source", snap.SourceID, "err", err, "retry_in", wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}
}

// send POSTs one snapshot. It returns *permanentError for 4xx responses other
// than 429.
func (s *Shipper) send(ctx context.Context, snap *types.LineSnapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return &permanentError{status: 0, body: err.Error()}
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.ServerAuth.Mode == "apikey" && s.cfg.ServerAuth.KeyEnv != "" {
		req.Header.Set(s.cfg.ServerAuth.EffectiveHeader(), s.cfg.ServerAuth.Key())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		return &permanentError{status: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}
}

// buildClient returns an HTTP client configured for the server auth mode.
func buildClient(auth config.AuthConfig) (*http.Client, error) {
	client := &http.Client{Timeout: sendTimeout}
	if auth.Mode != "mtls" {
		return client, nil
	}

	cert, err := tls.LoadX509KeyPair(auth.CertFile, auth.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load client cert: %w", err)
	}
	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}}

	if auth.CAFile != "" {
		caPEM, err := os.ReadFile(auth.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no valid certs in ca file %q", auth.CAFile)
		}
		tlsCfg.RootCAs = pool
	}
	client.Transport = &http.Transport{TLSClientConfig: tlsCfg}
	return client, nil
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	initial time.Duration
	limit   time.Duration
	current time.Duration
}

func newBackoff(initial, limit time.Duration) *backoff {
	return &backoff{initial: initial, limit: limit, current: initial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	// Apply ±25 % jitter.
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > b.limit {
		b.current = b.limit
	}
	return d
}

func (b *backoff) reset() {
	b.current = b.initial
}
