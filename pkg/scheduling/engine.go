package scheduling

import "github.com/pharmames/pharmames/pkg/ident"

// Engine binds the scheduling operations to an identifier source.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	ids ident.Generator
}

// New returns an Engine. A nil generator selects the production default.
func New(ids ident.Generator) *Engine {
	ids, _ = ident.OrDefault(ids, nil)
	return &Engine{ids: ids}
}
