package normalize

import (
	"github.com/rs/zerolog"

	"github.com/feedkit/calamine/internal/dom"
)

// Filter is a single rule pass over a tree.
type Filter interface {
	// Name returns the name of the pass.
	Name() string

	// Process applies the pass and reports whether the tree changed.
	Process(t *dom.Tree) (hasChanged bool)
}

// A Pipeline is an ordered collection of filters that itself satisfies the
// Filter interface.
type Pipeline struct {
	PipelineName string
	Filters      []Filter
	Logger       zerolog.Logger
}

// Statically check that *Pipeline satisfies the Filter interface.
var _ Filter = (*Pipeline)(nil)

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.PipelineName }

// Process runs a tree through every filter in order.
func (p *Pipeline) Process(t *dom.Tree) (hasChanged bool) {
	for _, f := range p.Filters {
		changed := f.Process(t)
		p.Logger.Debug().Str("pipeline", p.PipelineName).Str("pass", f.Name()).Bool("changed", changed).Msg("normalize pass")
		hasChanged = changed || hasChanged
	}
	return
}

// filterFunc adapts a function to the Filter interface.
type filterFunc struct {
	name string
	fn   func(t *dom.Tree) bool
}

func (f filterFunc) Name() string             { return f.name }
func (f filterFunc) Process(t *dom.Tree) bool { return f.fn(t) }

// NewFilter wraps fn as a named Filter.
func NewFilter(name string, fn func(t *dom.Tree) bool) Filter {
	return filterFunc{name: name, fn: fn}
}
