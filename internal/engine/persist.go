package engine

import (
	"github.com/dop251/goja"

	"unlatex/internal/errs"
)

// Persistent holds a raw engine value outside of a call. Only the engine
// that produced it can turn it back into something useful.
type Persistent struct {
	owner *Engine
	value goja.Value
}

// Owner returns the ID of the engine that produced the value.
func (p *Persistent) Owner() string {
	if p == nil || p.owner == nil {
		return ""
	}
	return p.owner.id
}

func (e *Engine) restore(p *Persistent) (goja.Value, error) {
	if p == nil || p.owner != e {
		return nil, errs.New(errs.UnrelatedContext, "value belongs to engine "+p.Owner()+", not "+e.id)
	}
	return p.value, nil
}
