package internal

import (
	"fmt"
	"math"
	"reflect"
	"regexp"

	"golang.org/x/text/cases"
)

// Const is a predicate with no dependencies that yields a fixed value on Reset.
type Const = Dependent[any]

func (r *Runtime) NewTrue() *Const {
	d, _ := newDependent[any](r, "true", nil, Equal, func([]Slot[any]) bool { return true })
	return d
}

// NewFalse returns a predicate that always yields false.
func (r *Runtime) NewFalse() *Const {
	d, _ := newDependent[any](r, "false", nil, Equal, func([]Slot[any]) bool { return false })
	return d
}

// NewFunc evaluates fn over the cached source values; unset slots are passed as nil.
func (r *Runtime) NewFunc(fn func(values []any) bool, sources ...Source) (*Dependent[any], error) {
	if fn == nil {
		return nil, fmt.Errorf("func: nil function: %w", ErrNilDependency)
	}

	values := make([]any, len(sources))

	return newDependent(r, "func", sourceDeps(sources), Equal, func(slots []Slot[any]) bool {
		for i, slot := range slots {
			values[i] = slot.Value
		}
		return fn(values)
	})
}

// NewEqual is true iff every cached value equals the first one.
// An unset slot is equal only to another unset slot.
func (r *Runtime) NewEqual(sources ...Source) (*Dependent[any], error) {
	return newDependent(r, "equal", sourceDeps(sources), Equal, func(slots []Slot[any]) bool {
		if len(slots) == 0 {
			return true
		}

		first := slots[0]
		for _, slot := range slots[1:] {
			if slot.Set != first.Set {
				return false
			}
			if slot.Set && !Equal(slot.Value, first.Value) {
				return false
			}
		}

		return true
	})
}

// NewPattern is true iff every cached value, coerced to a string, matches expr.
// The match is unanchored; unset values never match.
func (r *Runtime) NewPattern(expr string, sources ...Source) (*Dependent[any], error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w: %w", expr, ErrInvalidPattern, err)
	}

	return newDependent(r, "pattern", sourceDeps(sources), Equal, func(slots []Slot[any]) bool {
		for _, slot := range slots {
			if !slot.Set || !re.MatchString(ToString(slot.Value)) {
				return false
			}
		}
		return true
	})
}

// NewRange is true iff every cached value parses as a number within [min, max].
// Pass math.Inf(-1) or math.Inf(1) to leave a side unconstrained.
func (r *Runtime) NewRange(min, max float64, sources ...Source) (*Dependent[any], error) {
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return nil, fmt.Errorf("range [%v, %v]: %w", min, max, ErrInvalidRange)
	}

	return newDependent(r, "range", sourceDeps(sources), Equal, func(slots []Slot[any]) bool {
		for _, slot := range slots {
			if !slot.Set {
				return false
			}

			f, ok := ToFloat(slot.Value)
			if !ok || f < min || f > max {
				return false
			}
		}
		return true
	})
}

// NewExclude is true iff no cached value equals a blacklist entry, ignoring case.
// Unset values are never excluded.
func (r *Runtime) NewExclude(blacklist []string, sources ...Source) (*Dependent[any], error) {
	fold := cases.Fold()

	words := make(map[string]struct{}, len(blacklist))
	for _, w := range blacklist {
		words[fold.String(w)] = struct{}{}
	}

	return newDependent(r, "exclude", sourceDeps(sources), Equal, func(slots []Slot[any]) bool {
		for _, slot := range slots {
			if !slot.Set {
				continue
			}

			if _, found := words[fold.String(ToString(slot.Value))]; found {
				return false
			}
		}
		return true
	})
}

// Changed becomes true as soon as any source announces a value different from
// the one it held at the last Reset, and stays true until the next Reset.
type Changed struct {
	*Dependent[any]

	snapshot []Slot[any]
	primed   bool

	// set while Reset re-primes the sources
	resetting bool
	latched   bool
}

func (r *Runtime) NewChanged(sources ...Source) (*Changed, error) {
	c := &Changed{}

	d, err := newDependent(r, "changed", sourceDeps(sources), Equal, c.diverged)
	if err != nil {
		return nil, err
	}
	c.Dependent = d

	return c, nil
}

func (c *Changed) diverged(slots []Slot[any]) bool {
	if c.resetting || !c.primed {
		return false
	}
	if c.latched {
		return true
	}

	for i, slot := range slots {
		prev := c.snapshot[i]
		if slot.Set != prev.Set || (slot.Set && !Equal(slot.Value, prev.Value)) {
			c.latched = true
			return true
		}
	}

	return false
}

// Reset re-primes the sources, takes the snapshot and clears the latch.
func (c *Changed) Reset() {
	if c.destroyed {
		return
	}

	c.latched = false
	c.resetting = true
	c.Dependent.Reset()
	c.resetting = false

	if c.destroyed {
		return
	}

	c.snapshot = c.Slots()
	c.primed = true
}

func (c *Changed) Destroy() {
	c.Dependent.Destroy()
	c.snapshot = nil
}

// sourceDeps widens sources to dependencies; nil entries (including typed nil
// pointers) stay nil so newDependent rejects them.
func sourceDeps(sources []Source) []Dependency[any] {
	deps := make([]Dependency[any], len(sources))
	for i, src := range sources {
		if !isNil(src) {
			deps[i] = src
		}
	}
	return deps
}

func predicateDeps(preds []Predicate) []Dependency[bool] {
	deps := make([]Dependency[bool], len(preds))
	for i, p := range preds {
		if !isNil(p) {
			deps[i] = p
		}
	}
	return deps
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}

	return false
}
