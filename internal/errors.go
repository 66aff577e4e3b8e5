package internal

import "errors"

var (
	// ErrNilSubscriber is raised when a nil handle or callback is subscribed to a Channel.
	ErrNilSubscriber = errors.New("formally: nil subscriber")

	// ErrNilDependency is returned when a predicate is built over a nil source or predicate.
	ErrNilDependency = errors.New("formally: nil dependency")

	// ErrInvalidPattern is returned when a pattern predicate gets an expression that does not compile.
	ErrInvalidPattern = errors.New("formally: invalid pattern")

	// ErrInvalidRange is returned for NaN bounds or a minimum above the maximum.
	ErrInvalidRange = errors.New("formally: invalid range")

	// ErrWrongGoroutine is raised when a graph is driven from a goroutine other than its owner.
	// Cross-goroutine input must go through Runtime.Post.
	ErrWrongGoroutine = errors.New("formally: graph used outside its owning goroutine")

	// ErrDestroyed is returned when an operation needs a node that was already destroyed.
	ErrDestroyed = errors.New("formally: node destroyed")
)
