package yield

import "github.com/pharmames/pharmames/pkg/ident"

// Engine binds the yield operations to an identifier source and clock.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	ids   ident.Generator
	clock ident.Clock
}

// New returns an Engine. Nil arguments select the production defaults.
func New(ids ident.Generator, clock ident.Clock) *Engine {
	ids, clock = ident.OrDefault(ids, clock)
	return &Engine{ids: ids, clock: clock}
}
