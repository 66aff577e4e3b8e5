package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependent(t *testing.T) {
	t.Run("reset primes the dependencies", func(t *testing.T) {
		log := []string{}

		rt := NewRuntime()
		v := rt.NewVar("abc")

		p, err := rt.NewPattern("^[a-z]+$", v)
		require.NoError(t, err)
		record(p, "pattern", &log)

		assert.Equal(t, Unset, p.State())

		p.Reset()

		assert.Equal(t, []string{"pattern true"}, log)
		assert.Equal(t, True, p.State())
	})

	t.Run("an already cached value does not recompute", func(t *testing.T) {
		log := []string{}
		calls := 0

		rt := NewRuntime()
		v := rt.NewVar("a")

		p, err := rt.NewFunc(func(values []any) bool {
			calls++
			return values[0] == "a"
		}, v)
		require.NoError(t, err)
		record(p, "func", &log)

		p.Reset()
		v.Set("a")
		v.Set("a")
		v.Set("b")
		v.Set("b")

		assert.Equal(t, []string{"func true", "func false"}, log)
		// one on the first announcement, one on the final evaluation of Reset, one for "b"
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2.0, metricValue(t, rt.Gatherer(), "formally_recomputes_total", "kind", "func"))
	})

	t.Run("two recomputes with the same result notify once", func(t *testing.T) {
		log := []string{}

		rt := NewRuntime()
		v := rt.NewVar("a")

		p, err := rt.NewPattern("^[a-z]+$", v)
		require.NoError(t, err)
		record(p, "pattern", &log)

		p.Reset()
		v.Set("b")
		v.Set("c")
		v.Set("1")

		assert.Equal(t, []string{"pattern true", "pattern false"}, log)
	})

	t.Run("a fresh parent learns the state of an evaluated child", func(t *testing.T) {
		log := []string{}

		rt := NewRuntime()
		v := rt.NewVar("abc")

		child, err := rt.NewPattern("b", v)
		require.NoError(t, err)
		child.Reset()

		parent, err := rt.NewAnd(child)
		require.NoError(t, err)
		record(parent, "and", &log)

		parent.Reset()

		assert.Equal(t, []string{"and true"}, log)
	})

	t.Run("rejects nil dependencies", func(t *testing.T) {
		rt := NewRuntime()

		var missing *Var
		_, err := rt.NewEqual(rt.NewVar(1), missing)
		assert.ErrorIs(t, err, ErrNilDependency)

		_, err = rt.NewAnd(rt.NewTrue(), nil)
		assert.ErrorIs(t, err, ErrNilDependency)
	})

	t.Run("destroy unsubscribes and destroys the dependencies", func(t *testing.T) {
		log := []string{}

		rt := NewRuntime()
		v := rt.NewVar("a")

		p, err := rt.NewPattern("a", v)
		require.NoError(t, err)
		record(p, "pattern", &log)

		p.Reset()
		p.Destroy()

		assert.Equal(t, 0, v.Events().Len())
		assert.True(t, v.Destroyed())
		assert.True(t, p.Destroyed())
		assert.Equal(t, 0, p.Len())

		v.Set("b")
		p.Reset()

		assert.Equal(t, []string{"pattern true"}, log)
	})

	t.Run("destroying twice is a no-op", func(t *testing.T) {
		rt := NewRuntime()

		p, err := rt.NewEqual(rt.NewVar(1), rt.NewVar(1))
		require.NoError(t, err)

		p.Destroy()
		assert.NotPanics(t, p.Destroy)
		assert.Equal(t, 0.0, metricValue(t, rt.Gatherer(), "formally_nodes"))
	})

	t.Run("slots are copies", func(t *testing.T) {
		rt := NewRuntime()

		p, err := rt.NewEqual(rt.NewVar(1), rt.NewVar(2))
		require.NoError(t, err)
		p.Reset()

		slots := p.Slots()
		slots[0].Value = 2

		assert.Equal(t, []Slot[any]{{Value: 1, Set: true}, {Value: 2, Set: true}}, p.Slots())
		assert.Equal(t, False, p.State())
	})
}
