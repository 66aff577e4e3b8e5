package internal

import "fmt"

// Source is a leaf dependency announcing a raw external value.
// Reset publishes the current value exactly once; Destroy leaves it inert.
type Source interface {
	Dependency[any]
}

type sourceBase struct {
	rt        *Runtime
	events    Channel[any]
	destroyed bool
}

func (s *sourceBase) Events() *Channel[any] { return &s.events }

// Destroyed reports whether Destroy already ran.
func (s *sourceBase) Destroyed() bool { return s.destroyed }

func (s *sourceBase) publish(v any) {
	if s.destroyed {
		return
	}

	s.rt.checkGoroutine()
	s.events.Publish(v)
}

// ConstantSource always announces the same value.
type ConstantSource struct {
	sourceBase

	value any
}

func (r *Runtime) NewConstantSource(value any) *ConstantSource {
	return &ConstantSource{
		sourceBase: sourceBase{rt: r},
		value:      value,
	}
}

func (s *ConstantSource) Reset() { s.publish(s.value) }

func (s *ConstantSource) Destroy() {
	s.destroyed = true
	s.value = nil
}

// Var is a source whose value is owned by Go code: Set stores and announces it.
type Var struct {
	sourceBase

	value any
}

func (r *Runtime) NewVar(initial any) *Var {
	return &Var{
		sourceBase: sourceBase{rt: r},
		value:      initial,
	}
}

// Value returns the current value.
func (v *Var) Value() any { return v.value }

// Set replaces the value and announces it. Ignored once destroyed.
func (v *Var) Set(value any) {
	if v.destroyed {
		return
	}

	v.value = value
	v.publish(value)
}

func (v *Var) Reset() { v.publish(v.value) }

func (v *Var) Destroy() {
	v.destroyed = true
	v.value = nil
}

// BoundSource observes a value owned elsewhere, such as a form control.
// read returns the current value; attach registers a change listener on the
// external value and returns the function that unregisters it.
type BoundSource struct {
	sourceBase

	read   func() any
	detach func()
}

func (r *Runtime) NewBoundSource(read func() any, attach func(notify func()) (detach func())) (*BoundSource, error) {
	if read == nil {
		return nil, fmt.Errorf("bound source: nil read func: %w", ErrNilDependency)
	}

	s := &BoundSource{
		sourceBase: sourceBase{rt: r},
		read:       read,
	}

	if attach != nil {
		s.detach = attach(s.Notify)
	}

	return s, nil
}

// Notify announces the current external value; call it when the value changed.
func (s *BoundSource) Notify() {
	if s.destroyed {
		return
	}

	s.publish(s.read())
}

func (s *BoundSource) Reset() { s.Notify() }

func (s *BoundSource) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	if s.detach != nil {
		s.detach()
	}
	s.read = nil
	s.detach = nil
}

// Ref forwards the announcements of a shared source without owning it.
// Destroying a Ref detaches it and leaves the target alive, so several
// graphs can observe one source and be torn down independently.
type Ref struct {
	sourceBase

	target Source
	sub    *Subscriber[any]
}

func (r *Runtime) NewRef(target Source) (*Ref, error) {
	if isNil(target) {
		return nil, fmt.Errorf("ref: %w", ErrNilDependency)
	}

	ref := &Ref{
		sourceBase: sourceBase{rt: r},
		target:     target,
	}
	ref.sub = NewSubscriber(ref.publish)
	target.Events().Subscribe(ref.sub)

	return ref, nil
}

// Reset asks the target to re-announce its value. Every observer of the
// target receives it, unchanged values are ignored by their dependents.
func (ref *Ref) Reset() {
	if ref.destroyed {
		return
	}

	ref.target.Reset()
}

func (ref *Ref) Destroy() {
	if ref.destroyed {
		return
	}
	ref.destroyed = true

	ref.target.Events().Unsubscribe(ref.sub)
	ref.target = nil
	ref.sub = nil
}
