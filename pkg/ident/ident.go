package ident

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// idLength is the number of hex characters kept from a UUID.
const idLength = 12

// Generator produces opaque identifiers for engine output records.
type Generator interface {
	NewID() string
}

// Clock supplies "now" to the engines.
type Clock interface {
	Now() time.Time
}

// UUIDGenerator returns the first 12 hex characters of a random v4 UUID.
type UUIDGenerator struct{}

// NewID implements Generator.
func (UUIDGenerator) NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

// Sequence yields "<prefix>-1", "<prefix>-2", ... and is safe for concurrent use.
type Sequence struct {
	Prefix string
	n      atomic.Int64
}

// NewID implements Generator.
func (s *Sequence) NewID() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, s.n.Add(1))
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now implements Clock.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// OrDefault returns ids and clock, substituting the production
// implementations for nil values.
func OrDefault(ids Generator, clock Clock) (Generator, Clock) {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return ids, clock
}
