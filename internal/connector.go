package internal

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Connector is an AND over its children that delivers every state
// transition, including the first, to a consumer. It is itself a Predicate,
// so connectors nest.
type Connector struct {
	*Dependent[bool]

	consumer Action
	sub      *Subscriber[bool]
}

// NewConnector builds the connector and registers it with the runtime owner.
func (r *Runtime) NewConnector(consumer Action, children ...Predicate) (*Connector, error) {
	if consumer == nil {
		return nil, fmt.Errorf("connector: nil consumer: %w", ErrNilDependency)
	}

	and, err := newDependent(r, "connector", predicateDeps(children), equalBool, all)
	if err != nil {
		return nil, err
	}

	c := &Connector{
		Dependent: and,
		consumer:  consumer,
	}

	// subscribed first, so the consumer runs before any enclosing predicate recomputes
	c.sub = NewSubscriber(c.deliver)
	c.events.Subscribe(c.sub)

	r.owner.Adopt(c)

	return c, nil
}

func (c *Connector) deliver(v bool) {
	c.log.Debug().Bool("state", v).Msg("delivered")
	c.rt.metrics.delivered(v)

	c.consumer(v)
}

// Reset re-primes the whole subtree. Every resulting delivery happens before it returns.
func (c *Connector) Reset() {
	if c.destroyed {
		return
	}

	span := c.rt.startSpan("formally.connector.reset", c.Node)
	defer span.End()

	c.Dependent.Reset()

	span.SetAttributes(attribute.String("formally.node.state", c.State().String()))
}

// Destroy unbinds the consumer, then tears down the subtree.
func (c *Connector) Destroy() {
	if c.destroyed {
		return
	}

	span := c.rt.startSpan("formally.connector.destroy", c.Node)
	defer span.End()

	c.events.Unsubscribe(c.sub)
	c.Dependent.Destroy()

	c.consumer = nil
	c.sub = nil

	c.rt.owner.Release(c)
}
