package tickpipe

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
)

// Executor runs delivery loops in a bounded goroutine pool. Each running pipeline holds one worker until its loop exits.
type Executor struct {
	pool *ants.Pool
}

// NewExecutorWithOptions builds an executor able to run size delivery loops at the same time.
//
// By default, submitting a loop to a busy executor blocks until a worker is available. Use ants.WithNonblocking to fail instead.
func NewExecutorWithOptions(size int, opts ...ants.Option) (*Executor, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: executor size must be positive (got %d)", ErrConfiguration, size)
	}
	pool, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, err
	}
	return &Executor{pool: pool}, nil
}

// NewExecutor builds an executor with default options.
func NewExecutor(size int) (*Executor, error) {
	return NewExecutorWithOptions(size)
}

// Release releases the underlying pool. Loops still running are not stopped: pause their pipelines first.
func (e *Executor) Release() {
	if e == nil || e.pool == nil {
		return
	}
	e.pool.Release()
}

// Running returns the number of delivery loops currently holding a worker.
func (e *Executor) Running() int {
	if e == nil || e.pool == nil {
		return 0
	}
	return e.pool.Running()
}

// Cap returns the number of loops the executor can run at the same time.
func (e *Executor) Cap() int {
	if e == nil || e.pool == nil {
		return 0
	}
	return e.pool.Cap()
}

// submit runs the task in the pool. A nil executor runs it in a fresh goroutine.
func (e *Executor) submit(task func()) error {
	if e == nil || e.pool == nil {
		go task()
		return nil
	}
	return e.pool.Submit(task)
}
