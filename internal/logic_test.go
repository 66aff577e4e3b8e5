package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lowercase returns a source and a predicate that is true while it holds a lowercase word.
func lowercase(t *testing.T, rt *Runtime, initial string) (*Var, Predicate) {
	t.Helper()

	v := rt.NewVar(initial)
	p, err := rt.NewPattern("^[a-z]+$", v)
	require.NoError(t, err)

	return v, p
}

func TestAnd(t *testing.T) {
	t.Run("conjunction of the children", func(t *testing.T) {
		log := []string{}

		rt := NewRuntime()
		a, pa := lowercase(t, rt, "x")
		b, pb := lowercase(t, rt, "Y")

		and, err := rt.NewAnd(pa, pb)
		require.NoError(t, err)
		record(and, "and", &log)

		and.Reset()
		b.Set("y")
		a.Set("X")

		assert.Equal(t, []string{
			"and false",
			"and true",
			"and false",
		}, log)
	})

	t.Run("an unevaluated child counts as false", func(t *testing.T) {
		rt := NewRuntime()
		a, pa := lowercase(t, rt, "x")
		_, pb := lowercase(t, rt, "y")

		and, err := rt.NewAnd(pa, pb)
		require.NoError(t, err)

		a.Set("z")

		assert.Equal(t, False, and.State())
	})

	t.Run("no children is true", func(t *testing.T) {
		rt := NewRuntime()

		and, err := rt.NewAnd()
		require.NoError(t, err)
		and.Reset()

		assert.Equal(t, True, and.State())
	})
}

func TestOr(t *testing.T) {
	t.Run("disjunction of the children", func(t *testing.T) {
		log := []string{}

		rt := NewRuntime()
		a, pa := lowercase(t, rt, "X")
		b, pb := lowercase(t, rt, "Y")

		or, err := rt.NewOr(pa, pb)
		require.NoError(t, err)
		record(or, "or", &log)

		or.Reset()
		b.Set("y")
		a.Set("x")
		b.Set("Y")
		a.Set("X")

		assert.Equal(t, []string{
			"or false",
			"or true",
			"or false",
		}, log)
	})

	t.Run("no children is false", func(t *testing.T) {
		rt := NewRuntime()

		or, err := rt.NewOr()
		require.NoError(t, err)
		or.Reset()

		assert.Equal(t, False, or.State())
	})
}

func TestNot(t *testing.T) {
	t.Run("inverts its child", func(t *testing.T) {
		rt := NewRuntime()
		v, p := lowercase(t, rt, "x")

		not, err := rt.NewNot(p)
		require.NoError(t, err)
		not.Reset()

		for _, value := range []string{"X", "y", "y", "1", "z"} {
			v.Set(value)
			assert.Equal(t, !p.State().Bool(), not.State().Bool(), value)
		}
	})

	t.Run("an unevaluated child counts as false", func(t *testing.T) {
		rt := NewRuntime()
		p := rt.NewTrue()

		not, err := rt.NewNot(p)
		require.NoError(t, err)

		assert.Equal(t, Unset, not.State())

		not.Reset()
		assert.Equal(t, False, not.State())
	})

	t.Run("double negation", func(t *testing.T) {
		rt := NewRuntime()
		v, p := lowercase(t, rt, "x")

		inner, err := rt.NewNot(p)
		require.NoError(t, err)
		outer, err := rt.NewNot(inner)
		require.NoError(t, err)

		outer.Reset()
		assert.Equal(t, True, outer.State())

		v.Set("X")
		assert.Equal(t, False, outer.State())
	})

	t.Run("rejects a nil child", func(t *testing.T) {
		rt := NewRuntime()

		_, err := rt.NewNot(nil)
		assert.ErrorIs(t, err, ErrNilDependency)
	})
}
