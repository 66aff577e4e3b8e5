package formally

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterlsmith/FormAlly/internal/clocktest"
)

func Example() {
	g := New()
	defer g.Destroy()

	user := NewVar(g, "")
	pass := NewVar(g, "")

	userOK, _ := g.Pattern(`^[a-z]+$`, user)
	passOK, _ := g.Func(func(values []any) bool {
		s, _ := values[0].(string)
		return len(s) >= 8
	}, pass)

	submit, _ := g.Connect(func(valid bool) {
		fmt.Println("submit enabled:", valid)
	}, userOK, passOK)
	submit.Reset()

	user.Set("bob")
	pass.Set("hunter22")

	// Output:
	// submit enabled: false
	// submit enabled: true
}

func ExampleGraph_Debounce() {
	clock := clocktest.New()

	g := New(WithClock(clock))
	defer g.Destroy()

	name := NewVar(g, "")
	filled, _ := g.Pattern(`\S`, name)

	d, _ := g.Debounce(300*time.Millisecond, func(valid bool) {
		fmt.Println("valid:", valid)
	})
	c, _ := g.Connect(d.Action(), filled)
	c.Reset()

	name.Set("a")
	name.Set("")
	name.Set("al")
	clock.Advance(300 * time.Millisecond)
	g.Drain()

	// Output:
	// valid: true
}

func ExampleGraph_Compile() {
	g := New()
	defer g.Destroy()

	age := NewVar(g, "17")

	v, _ := g.Compile(`validator(range(18, null, field("age")), print("adult"))`, Env{
		Fields: map[string]Source{"age": age},
		Actions: map[string]ActionFactory{
			"print": func(args []any) (Action, error) {
				label := args[0].(string)
				return func(valid bool) { fmt.Printf("%s: %t\n", label, valid) }, nil
			},
		},
	})
	v.(*Connector).Reset()

	age.Set("21")

	// Output:
	// adult: false
	// adult: true
}

func TestGraph(t *testing.T) {
	t.Run("combinators", func(t *testing.T) {
		g := New()
		defer g.Destroy()

		a := NewVar(g, 1)
		b := NewVar(g, 1)

		same, err := g.Equal(a, b)
		require.NoError(t, err)
		small, err := g.Range(math.Inf(-1), 10, a)
		require.NoError(t, err)
		different, err := g.Not(same)
		require.NoError(t, err)
		either, err := g.Or(different, small)
		require.NoError(t, err)

		log := []string{}
		c, err := g.Connect(func(v bool) { log = append(log, fmt.Sprint(v)) }, either)
		require.NoError(t, err)

		c.Reset()
		assert.Equal(t, []string{"true"}, log)

		a.Set(20)
		assert.Equal(t, []string{"true"}, log, "different keeps the or true")
		assert.Equal(t, 20, a.Get())

		b.Set(20)
		assert.Equal(t, []string{"true", "false"}, log)
	})

	t.Run("typed nil errors", func(t *testing.T) {
		g := New()
		defer g.Destroy()

		p, err := g.Pattern("(", NewVar(g, ""))
		assert.ErrorIs(t, err, ErrInvalidPattern)
		assert.Nil(t, p)

		p, err = g.Range(2, 1)
		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.Nil(t, p)

		p, err = g.Not(nil)
		assert.ErrorIs(t, err, ErrNilDependency)
		assert.Nil(t, p)

		s, err := g.Ref(nil)
		assert.ErrorIs(t, err, ErrNilDependency)
		assert.Nil(t, s)
	})

	t.Run("exclude and changed", func(t *testing.T) {
		g := New()
		defer g.Destroy()

		name := NewVar(g, "Alice")
		allowed, err := g.Exclude([]string{"admin", "root"}, name)
		require.NoError(t, err)
		changed, err := g.Changed(name)
		require.NoError(t, err)

		log := []string{}
		c, err := g.Connect(func(v bool) { log = append(log, fmt.Sprint(v)) }, allowed, changed)
		require.NoError(t, err)

		c.Reset()
		name.Set("bob")
		name.Set("ROOT")
		name.Set("carol")

		assert.Equal(t, []string{"false", "true", "false", "true"}, log)

		c.Reset()
		assert.Equal(t, []string{"false", "true", "false", "true", "false"}, log)
	})

	t.Run("bound source", func(t *testing.T) {
		g := New()
		defer g.Destroy()

		value := ""
		var notify func()

		src, err := g.Bound(func() any { return value }, func(n func()) func() {
			notify = n
			return func() { notify = nil }
		})
		require.NoError(t, err)

		filled, err := g.Pattern(`.`, src)
		require.NoError(t, err)

		log := []string{}
		c, err := g.Connect(func(v bool) { log = append(log, fmt.Sprint(v)) }, filled)
		require.NoError(t, err)
		c.Reset()

		value = "x"
		notify()
		assert.Equal(t, []string{"false", "true"}, log)

		g.Destroy()
		assert.Nil(t, notify)
	})

	t.Run("shared refs", func(t *testing.T) {
		g := New()
		defer g.Destroy()

		shared := NewVar(g, "a")
		ref, err := g.Ref(shared)
		require.NoError(t, err)

		p, err := g.Pattern("^a$", ref)
		require.NoError(t, err)

		log := []string{}
		c, err := g.Connect(func(v bool) { log = append(log, fmt.Sprint(v)) }, p)
		require.NoError(t, err)
		c.Reset()

		g.Destroy()

		assert.False(t, shared.Destroyed())
		shared.Set("b")
		assert.Equal(t, []string{"true"}, log)
	})

	t.Run("file source", func(t *testing.T) {
		g := New()
		defer g.Destroy()

		path := filepath.Join(t.TempDir(), "value")
		require.NoError(t, os.WriteFile(path, []byte("42\n"), 0o600))

		src, err := g.File(path)
		require.NoError(t, err)

		p, err := g.Range(0, 100, src)
		require.NoError(t, err)

		log := []string{}
		c, err := g.Connect(func(v bool) { log = append(log, fmt.Sprint(v)) }, p)
		require.NoError(t, err)
		c.Reset()

		assert.Equal(t, []string{"true"}, log)
		assert.Equal(t, "42", src.Value())

		g.Destroy()
		assert.True(t, src.Destroyed())
	})

	t.Run("cleanups and flush", func(t *testing.T) {
		clock := clocktest.New()
		g := New(WithClock(clock))

		log := []string{}
		g.OnCleanup(func() { log = append(log, "cleanup") })

		d, err := g.Debounce(time.Second, func(v bool) { log = append(log, fmt.Sprint(v)) })
		require.NoError(t, err)

		All(d.Action(), Alt(func(v bool) { log = append(log, fmt.Sprint("alt ", v)) }))(true)
		assert.Equal(t, []string{"alt false"}, log)

		g.FlushDebouncers()
		assert.Equal(t, []string{"alt false", "true"}, log)

		g.Destroy()
		assert.Equal(t, []string{"alt false", "true", "cleanup"}, log)
	})

	t.Run("post and drain", func(t *testing.T) {
		g := New()
		defer g.Destroy()

		v := NewVar(g, 0)

		done := make(chan struct{})
		go func() {
			g.Post(func() { v.Set(1) })
			close(done)
		}()
		<-done

		assert.Equal(t, 1, g.Drain())
		assert.Equal(t, 1, v.Get())
	})

	t.Run("metrics", func(t *testing.T) {
		g := New()
		defer g.Destroy()

		c, err := g.Connect(func(bool) {}, g.False())
		require.NoError(t, err)
		c.Reset()

		families, err := g.Gatherer().Gather()
		require.NoError(t, err)

		names := []string{}
		for _, f := range families {
			names = append(names, f.GetName())
		}
		assert.Contains(t, names, "formally_deliveries_total")
		assert.Contains(t, names, "formally_nodes")
	})
}
