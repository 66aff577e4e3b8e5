package internal

import (
	"math"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesEqual(t *testing.T) {
	t.Run("nil is only equal to nil", func(t *testing.T) {
		assert.True(t, Equal(nil, nil))
		assert.False(t, Equal(nil, ""))
		assert.False(t, Equal(0, nil))
	})

	t.Run("compares comparable values of the same type", func(t *testing.T) {
		assert.True(t, Equal("a", "a"))
		assert.False(t, Equal("a", "b"))
		assert.True(t, Equal(1.5, 1.5))
	})

	t.Run("different types are never equal", func(t *testing.T) {
		assert.False(t, Equal(1, int64(1)))
		assert.False(t, Equal("1", 1))
		assert.False(t, Equal([]byte("a"), "a"))
	})

	t.Run("compares byte slices by contents", func(t *testing.T) {
		assert.True(t, Equal([]byte("abc"), []byte("abc")))
		assert.False(t, Equal([]byte("abc"), []byte("abd")))
	})

	t.Run("compares other values deeply", func(t *testing.T) {
		assert.True(t, Equal([]string{"a", "b"}, []string{"a", "b"}))
		assert.False(t, Equal([]string{"a"}, []string{"a", "b"}))
		assert.True(t, Equal(map[string]int{"a": 1}, map[string]int{"a": 1}))
	})

	t.Run("structs holding slices behind interfaces", func(t *testing.T) {
		assert.NotPanics(t, func() {
			assert.True(t, Equal(box{V: []int{1}}, box{V: []int{1}}))
			assert.False(t, Equal(box{V: []int{1}}, box{V: []int{2}}))
			assert.False(t, Equal(box{V: 1}, box{V: []int{1}}))
			assert.True(t, Equal([1]any{"a"}, [1]any{"a"}))
		})
	})

	t.Run("dedupes such values in a predicate", func(t *testing.T) {
		log := []string{}

		rt := NewRuntime()
		v := rt.NewVar(box{V: []int{1}})

		p, err := rt.NewFunc(func(values []any) bool {
			b, _ := values[0].(box)
			s, _ := b.V.([]int)
			return len(s) == 1 && s[0] == 2
		}, v)
		require.NoError(t, err)
		record(p, "func", &log)

		p.Reset()
		v.Set(box{V: []int{2}})
		v.Set(box{V: []int{2}})

		assert.Equal(t, []string{"func false", "func true"}, log)
		assert.Equal(t, 2.0, metricValue(t, rt.Gatherer(), "formally_recomputes_total", "kind", "func"))
	})
}

type box struct {
	V any
}

func TestValuesToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "10.0.0.1", ToString(netip.MustParseAddr("10.0.0.1")))
	assert.Equal(t, "42", ToString(42))
	assert.Equal(t, "true", ToString(true))
}

func TestValuesToFloat(t *testing.T) {
	t.Run("numbers", func(t *testing.T) {
		f, ok := ToFloat(int32(-3))
		assert.True(t, ok)
		assert.Equal(t, -3.0, f)

		f, ok = ToFloat(float32(0.5))
		assert.True(t, ok)
		assert.Equal(t, 0.5, f)
	})

	t.Run("strings", func(t *testing.T) {
		f, ok := ToFloat(" 2.5\n")
		assert.True(t, ok)
		assert.Equal(t, 2.5, f)

		f, ok = ToFloat([]byte("1e3"))
		assert.True(t, ok)
		assert.Equal(t, 1000.0, f)
	})

	t.Run("non numeric values", func(t *testing.T) {
		for _, v := range []any{nil, "", "abc", "1,5", math.NaN(), "NaN", true} {
			_, ok := ToFloat(v)
			assert.False(t, ok, "%v", v)
		}
	})
}
