package security

import (
	"context"
	"crypto/tls"
	"math"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/pharmames/pharmames/agent/internal/config"
	"github.com/pharmames/pharmames/pkg/types"
)

const (
	dialTimeout = 10 * time.Second
	// expiringDays is the remaining lifetime below which a certificate is
	// reported as expiring.
	expiringDays = 30
)

// defaultPorts maps TLS URL schemes to the port used when none is given.
var defaultPorts = map[string]string{
	"https": "443",
	"ssl":   "8883",
	"tls":   "8883",
	"mqtts": "8883",
	"wss":   "443",
}

// Check dials the endpoint of src and returns the state of its leaf
// certificate at now. It returns nil for plain-text or unparseable endpoints.
func Check(ctx context.Context, src config.Source, now time.Time) *types.CertStatus {
	u, err := url.Parse(src.Endpoint)
	if err != nil {
		return nil
	}
	port, ok := defaultPorts[u.Scheme]
	if !ok {
		return nil
	}

	cs := &types.CertStatus{
		Endpoint:  src.Endpoint,
		AuthType:  src.Auth.Mode,
		CheckedAt: now.UTC(),
	}
	if cs.AuthType == "" {
		cs.AuthType = "none"
	}

	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, port)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			InsecureSkipVerify: src.TLS.InsecureSkipVerify, //nolint:gosec
		},
	}
	netConn, err := dialer.DialContext(dialCtx, "tcp", host)
	if err != nil {
		cs.Status = types.CertUnreachable
		return cs
	}
	conn := netConn.(*tls.Conn)
	defer conn.Close()

	peers := conn.ConnectionState().PeerCertificates
	if len(peers) == 0 {
		cs.Status = types.CertUnreachable
		return cs
	}

	leaf := peers[0]
	daysLeft := leaf.NotAfter.Sub(now).Hours() / 24
	cs.NotAfter = leaf.NotAfter.UTC()
	cs.Issuer = leaf.Issuer.CommonName
	cs.DaysLeft = int(math.Floor(daysLeft))
	cs.Status = classify(daysLeft)
	return cs
}

func classify(daysLeft float64) string {
	switch {
	case daysLeft <= 0:
		return types.CertExpired
	case daysLeft <= expiringDays:
		return types.CertExpiring
	default:
		return types.CertValid
	}
}

// Checker caches one CertStatus per source and re-dials an endpoint only
// once the previous result is older than its interval.
//
// Safe for concurrent use.
type Checker struct {
	interval time.Duration

	mu     sync.Mutex
	cached map[string]*types.CertStatus
}

// NewChecker returns a Checker that refreshes each endpoint every interval.
func NewChecker(interval time.Duration) *Checker {
	return &Checker{interval: interval, cached: make(map[string]*types.CertStatus)}
}

// Status returns the certificate state for src, dialing only when the cached
// result is missing or stale.
func (c *Checker) Status(ctx context.Context, src config.Source, now time.Time) *types.CertStatus {
	c.mu.Lock()
	cs, ok := c.cached[src.ID]
	c.mu.Unlock()
	if ok && (cs == nil || now.Sub(cs.CheckedAt) < c.interval) {
		return cs
	}

	cs = Check(ctx, src, now)
	c.mu.Lock()
	c.cached[src.ID] = cs
	c.mu.Unlock()
	return cs
}
