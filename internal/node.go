package internal

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// State is the tri-state value cached by every boolean node.
type State uint8

const (
	Unset State = iota
	True
	False
)

// StateOf converts a computed boolean into a State.
func StateOf(v bool) State {
	if v {
		return True
	}
	return False
}

// Bool reports whether the state is True.
func (s State) Bool() bool {
	return s == True
}

func (s State) String() string {
	switch s {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}

// Dependency is anything a predicate can depend on: it announces values of
// type T on its channel, can be asked to re-announce them, and can be torn down.
type Dependency[T any] interface {
	Events() *Channel[T]
	Reset()
	Destroy()
}

// Predicate is a boolean node usable as a dependency of combinators and connectors.
type Predicate interface {
	Dependency[bool]

	ID() uuid.UUID
	Kind() string
	State() State
}

// Node is the boolean cell shared by every predicate kind.
type Node struct {
	rt  *Runtime
	log zerolog.Logger

	id   uuid.UUID
	kind string

	state     State
	destroyed bool

	events Channel[bool]
}

func (r *Runtime) NewNode(kind string) *Node {
	id := uuid.New()

	n := &Node{
		rt:   r,
		id:   id,
		kind: kind,
		log: r.log.With().
			Str("component", "node").
			Str("node", id.String()).
			Str("kind", kind).
			Logger(),
	}
	r.metrics.nodeCreated()

	return n
}

func (n *Node) ID() uuid.UUID { return n.id }

func (n *Node) Kind() string { return n.kind }

// State returns the cached state without side effects.
func (n *Node) State() State { return n.state }

// Events returns the channel state transitions are published on.
func (n *Node) Events() *Channel[bool] { return &n.events }

// Destroyed reports whether Destroy already ran.
func (n *Node) Destroyed() bool { return n.destroyed }

// Current returns the cached state as a value, false if still unset.
func (n *Node) Current() (bool, bool) {
	return n.state.Bool(), n.state != Unset
}

// setState is the only place a node notifies its listeners:
// it publishes v iff it differs from the cached state.
func (n *Node) setState(v bool) {
	n.rt.checkGoroutine()

	next := StateOf(v)
	if next == n.state {
		return
	}

	prev := n.state
	n.state = next

	n.log.Debug().Stringer("from", prev).Stringer("to", next).Msg("state changed")
	n.rt.metrics.notified(n.kind)

	n.events.Publish(v)
}

// markDestroyed flags the node as destroyed, false if it already was.
func (n *Node) markDestroyed() bool {
	if n.destroyed {
		return false
	}

	n.destroyed = true
	n.rt.metrics.nodeDestroyed()
	n.log.Debug().Msg("destroyed")

	return true
}

func (n *Node) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("formally.node.id", n.id.String()),
		attribute.String("formally.node.kind", n.kind),
	}
}
