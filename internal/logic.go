package internal

import "fmt"

func equalBool(a, b bool) bool { return a == b }

func all(slots []Slot[bool]) bool {
	for _, s := range slots {
		if !s.Set || !s.Value {
			return false
		}
	}
	return true
}

func some(slots []Slot[bool]) bool {
	for _, s := range slots {
		if s.Set && s.Value {
			return true
		}
	}
	return false
}

// NewAnd is true iff every child is true. With no children it is true.
func (r *Runtime) NewAnd(children ...Predicate) (*Dependent[bool], error) {
	return newDependent(r, "and", predicateDeps(children), equalBool, all)
}

// NewOr is true iff at least one child is true. With no children it is false.
func (r *Runtime) NewOr(children ...Predicate) (*Dependent[bool], error) {
	return newDependent(r, "or", predicateDeps(children), equalBool, some)
}

// NewNot inverts a single child. A child that has not evaluated yet counts as false.
func (r *Runtime) NewNot(child Predicate) (*Dependent[bool], error) {
	if isNil(child) {
		return nil, fmt.Errorf("not: %w", ErrNilDependency)
	}

	return newDependent(r, "not", predicateDeps([]Predicate{child}), equalBool, func(slots []Slot[bool]) bool {
		return !(slots[0].Set && slots[0].Value)
	})
}
