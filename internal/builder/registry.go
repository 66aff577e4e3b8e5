package builder

import (
	"maps"
	"slices"

	"github.com/peterlsmith/FormAlly/internal/expr"
)

// Constructor builds the value of one call from its already built arguments.
type Constructor func(b *Builder, call *expr.Call, args []any) (any, error)

// Registry maps function names of the graph language to constructors.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// DefaultRegistry returns a new registry holding every built-in function.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// sources
	r.Register("field", buildField)
	r.Register("const", buildConst)
	r.Register("file", buildFile)

	// predicates
	r.Register("true", buildTrue)
	r.Register("false", buildFalse)
	r.Register("func", buildFunc)
	r.Register("equal", buildEqual)
	r.Register("changed", buildChanged)
	r.Register("pattern", buildPattern)
	r.Register("range", buildRange)
	r.Register("exclude", buildExclude)
	r.Register("and", buildAnd)
	r.Register("or", buildOr)
	r.Register("not", buildNot)
	r.Register("validator", buildValidator)

	// actions
	r.Register("all", buildAll)
	r.Register("alt", buildAlt)
	r.Register("debounce", buildDebounce)

	return r
}

// Register adds or replaces the constructor of name.
func (r *Registry) Register(name string, c Constructor) {
	r.constructors[name] = c
}

func (r *Registry) Lookup(name string) (Constructor, bool) {
	c, ok := r.constructors[name]
	return c, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.constructors))
}
