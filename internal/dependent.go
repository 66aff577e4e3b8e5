package internal

import (
	"fmt"
	"slices"
)

// Slot is the cached last value of one dependency.
// Set is false until the dependency announced something.
type Slot[T any] struct {
	Value T
	Set   bool
}

// Rule evaluates a predicate over the full cache, one slot per dependency.
// It must not retain or modify the slice.
type Rule[T any] func(slots []Slot[T]) bool

// Dependent is a boolean node derived from N dependencies of the same kind
// (sources or predicates) through a pluggable rule.
type Dependent[T any] struct {
	*Node

	deps  []Dependency[T]
	subs  []*Subscriber[T]
	slots []Slot[T]

	rule  Rule[T]
	equal func(a, b T) bool
}

func newDependent[T any](r *Runtime, kind string, deps []Dependency[T], equal func(a, b T) bool, rule Rule[T]) (*Dependent[T], error) {
	for i, dep := range deps {
		if dep == nil {
			return nil, fmt.Errorf("%s: dependency %d: %w", kind, i, ErrNilDependency)
		}
	}

	d := &Dependent[T]{
		Node:  r.NewNode(kind),
		deps:  slices.Clone(deps),
		subs:  make([]*Subscriber[T], len(deps)),
		slots: make([]Slot[T], len(deps)),
		rule:  rule,
		equal: equal,
	}

	for i, dep := range d.deps {
		d.subs[i] = NewSubscriber(func(v T) { d.receive(i, v) })
		dep.Events().Subscribe(d.subs[i])
	}

	return d, nil
}

// receive updates slot i and recomputes, unless v is already cached.
func (d *Dependent[T]) receive(i int, v T) {
	// a publish snapshot can still reach a node torn down mid propagation
	if d.destroyed {
		return
	}

	if d.slots[i].Set && d.equal(d.slots[i].Value, v) {
		return
	}

	d.slots[i] = Slot[T]{Value: v, Set: true}
	d.rt.metrics.recomputed(d.kind)

	d.setState(d.rule(d.slots))
}

// Reset re-primes every dependency, then evaluates the rule once.
func (d *Dependent[T]) Reset() {
	if d.destroyed {
		return
	}

	for i, dep := range d.deps {
		dep.Reset()

		// a consumer may tear the graph down while it is being primed
		if d.destroyed {
			return
		}

		// an already evaluated predicate does not re-announce an unchanged state
		if !d.slots[i].Set {
			if c, ok := dep.(interface{ Current() (T, bool) }); ok {
				if v, ok := c.Current(); ok {
					d.slots[i] = Slot[T]{Value: v, Set: true}
				}
			}
		}
	}

	d.setState(d.rule(d.slots))
}

// Destroy unsubscribes from every dependency, then destroys them.
func (d *Dependent[T]) Destroy() {
	if !d.markDestroyed() {
		return
	}

	for i, dep := range d.deps {
		dep.Events().Unsubscribe(d.subs[i])
	}

	for _, dep := range d.deps {
		dep.Destroy()
	}

	d.deps = nil
	d.subs = nil
	d.slots = nil
}

// Slots returns a copy of the cache.
func (d *Dependent[T]) Slots() []Slot[T] {
	return slices.Clone(d.slots)
}

// Len returns the number of dependencies.
func (d *Dependent[T]) Len() int {
	return len(d.deps)
}
