package tickpipe

import (
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// Pool returns the underlying pool
func (e *Executor) Pool() *ants.Pool {
	if e == nil {
		return nil
	}
	return e.pool
}

// Executor returns the executor running the loops of the pipeline, and whether the pipeline owns it
func (p *Pipeline[T]) Executor() (*Executor, bool) {
	return p.executor, p.ownsExecutor
}

// Interval exposes the wait between two deliveries for a given rate
var Interval = interval

// Supersede swaps in a new loop handle without stopping the running loop, as a racing Resume would.
// The returned function waits for the superseded loop to exit and leaves the pipeline paused.
func (p *Pipeline[T]) Supersede() func() {
	h := &handle{id: uuid.New(), stop: make(chan struct{}), done: make(chan struct{})}
	old := p.current.Swap(h)
	return func() {
		if old != nil {
			<-old.done
		}
		p.current.CompareAndSwap(h, nil)
	}
}
