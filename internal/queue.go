package internal

import "sync"

// TaskQueue collects work posted from other goroutines until the runtime
// goroutine takes it.
type TaskQueue struct {
	mu    sync.Mutex
	tasks []func()

	// holds one token while tasks are pending
	ready chan struct{}
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{
		tasks: make([]func(), 0),
		ready: make(chan struct{}, 1),
	}
}

func (q *TaskQueue) Enqueue(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready receives a token whenever tasks were enqueued since the last Take.
func (q *TaskQueue) Ready() <-chan struct{} {
	return q.ready
}

// Take removes and returns every pending task.
func (q *TaskQueue) Take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()

	tasks := q.tasks
	q.tasks = make([]func(), 0)

	return tasks
}

func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}
