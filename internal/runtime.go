package internal

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultNamespace prefixes every metric registered by a Runtime.
	DefaultNamespace = "formally"

	tracerName = "github.com/peterlsmith/FormAlly"
)

// Runtime owns one propagation graph: the goroutine it runs on, its
// observability hooks, its timer source and the nodes it must tear down.
type Runtime struct {
	// goroutine that created the runtime, all propagation must happen on it
	gid int64

	log      zerolog.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
	tracer   trace.Tracer
	clock    Clock

	owner *Owner
	tasks *TaskQueue
}

type runtimeConfig struct {
	logger    zerolog.Logger
	registry  prometheus.Registerer
	namespace string
	tracer    trace.Tracer
	clock     Clock
}

// Option configures a Runtime.
type Option func(*runtimeConfig)

// WithLogger sets the logger nodes and debouncers write to (default: disabled).
func WithLogger(logger zerolog.Logger) Option {
	return func(c *runtimeConfig) {
		c.logger = logger
	}
}

// WithRegistry sets the Prometheus registry metrics are registered with.
// Default: a registry private to the runtime.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *runtimeConfig) {
		c.registry = registry
	}
}

// WithNamespace sets the metrics namespace (default: "formally").
func WithNamespace(namespace string) Option {
	return func(c *runtimeConfig) {
		c.namespace = namespace
	}
}

// WithTracer sets the tracer used for connector spans.
// Default: the tracer of the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *runtimeConfig) {
		c.tracer = tracer
	}
}

// WithClock sets the timer source used by debouncers.
func WithClock(clock Clock) Option {
	return func(c *runtimeConfig) {
		c.clock = clock
	}
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		logger:    zerolog.Nop(),
		namespace: DefaultNamespace,
	}
}

// NewRuntime creates a runtime bound to the calling goroutine.
func NewRuntime(opts ...Option) *Runtime {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var gatherer prometheus.Gatherer
	if cfg.registry == nil {
		registry := prometheus.NewRegistry()
		cfg.registry = registry
		gatherer = registry
	} else if g, ok := cfg.registry.(prometheus.Gatherer); ok {
		gatherer = g
	}

	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}
	if cfg.clock == nil {
		cfg.clock = RealClock()
	}

	return &Runtime{
		gid:      getGID(),
		log:      cfg.logger,
		metrics:  NewMetrics(cfg.registry, cfg.namespace),
		gatherer: gatherer,
		tracer:   cfg.tracer,
		clock:    cfg.clock,
		owner:    NewOwner(),
		tasks:    NewTaskQueue(),
	}
}

// Logger returns the runtime logger.
func (r *Runtime) Logger() zerolog.Logger { return r.log }

// Metrics returns the runtime metrics.
func (r *Runtime) Metrics() *Metrics { return r.metrics }

// Gatherer returns the registry metrics can be gathered from, nil if the
// registerer given with WithRegistry is not a Gatherer.
func (r *Runtime) Gatherer() prometheus.Gatherer { return r.gatherer }

// Clock returns the timer source debouncers use.
func (r *Runtime) Clock() Clock { return r.clock }

// Owner returns the owner tearing down the runtime's root nodes.
func (r *Runtime) Owner() *Owner { return r.owner }

// Post queues fn to run on the runtime goroutine. Safe from any goroutine.
func (r *Runtime) Post(fn func()) {
	r.tasks.Enqueue(fn)
}

// Drain runs posted tasks until the queue is empty and returns how many ran.
func (r *Runtime) Drain() int {
	r.checkGoroutine()

	n := 0
	for {
		tasks := r.tasks.Take()
		if len(tasks) == 0 {
			return n
		}

		for _, task := range tasks {
			task()
			n++
		}
	}
}

// Run executes posted tasks as they arrive until ctx is cancelled.
// It must be called on the runtime goroutine.
func (r *Runtime) Run(ctx context.Context) error {
	r.checkGoroutine()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.tasks.Ready():
			r.Drain()
		}
	}
}

// Destroy tears down every node registered with the runtime owner.
func (r *Runtime) Destroy() {
	r.checkGoroutine()
	r.owner.Dispose()
}

func (r *Runtime) checkGoroutine() {
	if getGID() != r.gid {
		panic(ErrWrongGoroutine)
	}
}

func (r *Runtime) startSpan(name string, node *Node) trace.Span {
	_, span := r.tracer.Start(context.Background(), name, trace.WithAttributes(node.attributes()...))
	return span
}
