package internal

import "slices"

// Disposable is anything an Owner can tear down.
type Disposable interface {
	Destroy()
}

// Owner tears down the root nodes of a graph, newest first,
// then runs its cleanup functions in registration order.
type Owner struct {
	children []Disposable

	// cleanup functions to be called when the owner is disposed
	cleanups []func()
}

func NewOwner() *Owner {
	return &Owner{
		children: make([]Disposable, 0),
		cleanups: make([]func(), 0),
	}
}

// Adopt registers d to be destroyed by Dispose.
func (o *Owner) Adopt(d Disposable) {
	o.children = append(o.children, d)
}

// Release forgets d without destroying it, used by nodes destroyed on their own.
func (o *Owner) Release(d Disposable) {
	o.children = slices.DeleteFunc(o.children, func(child Disposable) bool { return child == d })
}

func (o *Owner) OnCleanup(fn func()) {
	o.cleanups = append(o.cleanups, fn)
}

// Len returns the number of adopted children.
func (o *Owner) Len() int {
	return len(o.children)
}

// Dispose destroys every child and runs the cleanups. The owner is empty
// afterwards and can be reused.
func (o *Owner) Dispose() {
	children := o.children
	cleanups := o.cleanups
	o.children = make([]Disposable, 0)
	o.cleanups = make([]func(), 0)

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Destroy()
	}

	for i := 0; i < len(cleanups); i++ {
		cleanups[i]()
	}
}
