package internal

import "slices"

// Subscriber is a callback handle registered on a Channel.
// Its identity (the pointer) is what Unsubscribe matches against.
type Subscriber[T any] struct {
	fn func(T)
}

// NewSubscriber wraps fn in a subscription handle.
func NewSubscriber[T any](fn func(T)) *Subscriber[T] {
	return &Subscriber[T]{fn: fn}
}

// Channel is a per-node publish/subscribe primitive.
// Subscribers are invoked synchronously, in subscription order.
type Channel[T any] struct {
	subs []*Subscriber[T]
}

// Subscribe appends s to the subscriber list.
// Subscribing the same handle twice registers it twice.
func (c *Channel[T]) Subscribe(s *Subscriber[T]) {
	if s == nil || s.fn == nil {
		panic(ErrNilSubscriber)
	}

	c.subs = append(c.subs, s)
}

// Unsubscribe removes every occurrence of s, keeping the order of the others.
func (c *Channel[T]) Unsubscribe(s *Subscriber[T]) {
	c.subs = slices.DeleteFunc(c.subs, func(sub *Subscriber[T]) bool {
		return sub == s
	})
}

// Publish invokes every subscriber with v.
// A panicking subscriber aborts the fan-out and propagates to the caller.
func (c *Channel[T]) Publish(v T) {
	// clonning so subscribers can (un)subscribe while being notified
	subs := slices.Clone(c.subs)

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of registered subscriptions.
func (c *Channel[T]) Len() int {
	return len(c.subs)
}
