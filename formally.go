// Package formally builds boolean validation graphs over changing values.
//
// Sources announce raw values, predicates turn them into true/false states,
// combinators compose predicates and connectors deliver every state
// transition to a consumer. A Graph and everything built on it belong to the
// goroutine that created it; other goroutines hand work over with Post.
package formally

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/peterlsmith/FormAlly/internal"
	"github.com/peterlsmith/FormAlly/internal/builder"
)

type (
	State     = internal.State
	Source    = internal.Source
	Predicate = internal.Predicate
	Action    = internal.Action
	Connector = internal.Connector
	Debouncer = internal.Debouncer
	Changed   = internal.Changed
	Clock     = internal.Clock
	Option    = internal.Option

	// Env names the fields, functions and actions an expression can refer to.
	Env           = builder.Env
	ActionFactory = builder.ActionFactory
)

const (
	Unset = internal.Unset
	True  = internal.True
	False = internal.False
)

var (
	ErrNilDependency  = internal.ErrNilDependency
	ErrInvalidPattern = internal.ErrInvalidPattern
	ErrInvalidRange   = internal.ErrInvalidRange
	ErrWrongGoroutine = internal.ErrWrongGoroutine
)

func WithLogger(logger zerolog.Logger) Option { return internal.WithLogger(logger) }
func WithRegistry(reg prometheus.Registerer) Option { return internal.WithRegistry(reg) }
func WithNamespace(namespace string) Option { return internal.WithNamespace(namespace) }
func WithTracer(tracer trace.Tracer) Option { return internal.WithTracer(tracer) }
func WithClock(clock Clock) Option { return internal.WithClock(clock) }

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// predicate keeps a failed constructor from returning a typed nil.
func predicate(p Predicate, err error) (Predicate, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Graph owns a set of validators and the goroutine they run on.
type Graph struct {
	rt *internal.Runtime
}

// New creates a graph bound to the calling goroutine.
func New(opts ...Option) *Graph {
	return &Graph{rt: internal.NewRuntime(opts...)}
}

// Gatherer returns the registry the graph metrics can be gathered from.
func (g *Graph) Gatherer() prometheus.Gatherer { return g.rt.Gatherer() }

// Post queues fn to run on the graph goroutine. Safe from any goroutine.
func (g *Graph) Post(fn func()) { g.rt.Post(fn) }

// Drain runs the posted functions, returning how many ran.
func (g *Graph) Drain() int { return g.rt.Drain() }

// Run executes posted functions until ctx is cancelled.
func (g *Graph) Run(ctx context.Context) error {
	return g.rt.Run(ctx)
}

// Adopt makes d part of the graph, destroyed along with it.
func (g *Graph) Adopt(d interface{ Destroy() }) { g.rt.Owner().Adopt(d) }

// OnCleanup registers fn to run when the graph is destroyed.
func (g *Graph) OnCleanup(fn func()) { g.rt.Owner().OnCleanup(fn) }

// FlushDebouncers delivers every pending debounced value now.
func (g *Graph) FlushDebouncers() { g.rt.FlushDebouncers() }

// Destroy tears down every connector, debouncer and adopted node.
// The graph can be built again afterwards.
func (g *Graph) Destroy() { g.rt.Destroy() }

// Var is a typed source whose value is set from Go code.
type Var[T any] struct {
	*internal.Var
}

func NewVar[T any](g *Graph, initial T) *Var[T] {
	return &Var[T]{g.rt.NewVar(initial)}
}

// Get returns the current value.
func (v *Var[T]) Get() T {
	return as[T](v.Var.Value())
}

// Set stores value and announces it to every dependent predicate.
func (v *Var[T]) Set(value T) {
	v.Var.Set(value)
}

func (g *Graph) Constant(value any) Source {
	return g.rt.NewConstantSource(value)
}

// Bound observes a value owned elsewhere. attach registers notify as a change
// listener and returns the function removing it; it may be nil.
func (g *Graph) Bound(read func() any, attach func(notify func()) (detach func())) (*internal.BoundSource, error) {
	return g.rt.NewBoundSource(read, attach)
}

// File is a source announcing the contents of a file, re-read whenever it
// changes on disk. Changes are applied through Post, so the graph goroutine
// must call Run or Drain. The source is destroyed with the graph.
func (g *Graph) File(path string) (*internal.FileSource, error) {
	src, err := g.rt.NewFileSource(path)
	if err != nil {
		return nil, err
	}
	g.rt.Owner().Adopt(src)

	return src, nil
}

// Ref observes a source shared by several predicates without owning it.
func (g *Graph) Ref(target Source) (Source, error) {
	ref, err := g.rt.NewRef(target)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (g *Graph) True() Predicate  { return g.rt.NewTrue() }
func (g *Graph) False() Predicate { return g.rt.NewFalse() }

// Func is true when fn accepts the current values of sources. Values not
// announced yet are passed as nil.
func (g *Graph) Func(fn func(values []any) bool, sources ...Source) (Predicate, error) {
	return predicate(g.rt.NewFunc(fn, sources...))
}

func (g *Graph) Equal(sources ...Source) (Predicate, error) {
	return predicate(g.rt.NewEqual(sources...))
}

// Pattern is true when every source value matches the regular expression.
func (g *Graph) Pattern(expr string, sources ...Source) (Predicate, error) {
	return predicate(g.rt.NewPattern(expr, sources...))
}

// Range is true when every source value is a number within [lo, hi].
func (g *Graph) Range(lo, hi float64, sources ...Source) (Predicate, error) {
	return predicate(g.rt.NewRange(lo, hi, sources...))
}

// Exclude is true when no source value is in blacklist, ignoring case.
func (g *Graph) Exclude(blacklist []string, sources ...Source) (Predicate, error) {
	return predicate(g.rt.NewExclude(blacklist, sources...))
}

// Changed turns true once any source differs from its value at the last reset.
func (g *Graph) Changed(sources ...Source) (*Changed, error) {
	return g.rt.NewChanged(sources...)
}

func (g *Graph) And(children ...Predicate) (Predicate, error) {
	return predicate(g.rt.NewAnd(children...))
}

func (g *Graph) Or(children ...Predicate) (Predicate, error) {
	return predicate(g.rt.NewOr(children...))
}

func (g *Graph) Not(child Predicate) (Predicate, error) {
	return predicate(g.rt.NewNot(child))
}

// Connect delivers every state of the AND of children to consumer.
// Call Reset on the result to evaluate it the first time.
func (g *Graph) Connect(consumer Action, children ...Predicate) (*Connector, error) {
	return g.rt.NewConnector(consumer, children...)
}

// Debounce delays deliveries to consumer until no new value arrived for delay.
// Expired deliveries are posted, so they run under Run or Drain.
func (g *Graph) Debounce(delay time.Duration, consumer Action) (*Debouncer, error) {
	return g.rt.NewDebouncer(delay, consumer)
}

// Compile builds the predicate or connector described by an expression such as
//
//	validator(pattern("^[a-z]+$", field("user")), enable("submit"))
//
// Fields in env are shared: destroying what Compile built leaves them alive.
func (g *Graph) Compile(source string, env Env) (any, error) {
	return builder.New(g.rt, env).Compile(source)
}

// All combines actions into one receiving the same value.
func All(actions ...Action) Action { return internal.All(actions...) }

// Alt inverts the value given to action.
func Alt(action Action) Action { return internal.Alt(action) }
