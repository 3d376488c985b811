package tickpipe

import (
	"errors"
)

var (
	// ErrConfiguration is returned when a pipeline is not set up to run, e.g. no sink is bound when calling Resume.
	ErrConfiguration = errors.New("invalid pipeline configuration")
	// ErrExhausted is returned by a Generator which has no more values. It is fatal to the delivery loop.
	ErrExhausted = errors.New("generator exhausted")
	// ErrNoGenerator is returned when a tick is pulled from a pipeline without generator.
	ErrNoGenerator = errors.New("no generator")
	// ErrGeneratorPanic wraps a panic raised by a Generator.
	ErrGeneratorPanic = errors.New("generator panicked")
	// ErrSinkDelivery wraps a failure of a Sink to accept a single tick.
	ErrSinkDelivery = errors.New("sink delivery failed")
	// ErrClosed is returned when resuming a closed pipeline.
	ErrClosed = errors.New("pipeline closed")
)

// Generator produces ticks one at a time. The sequence is expected to be infinite: a Generator which runs out of values returns ErrExhausted.
type Generator[T any] interface {
	Next() (T, error)
}

// GeneratorFunc adapts a function to a Generator.
type GeneratorFunc[T any] func() (T, error)

// Next calls f.
func (f GeneratorFunc[T]) Next() (T, error) { return f() }

// Sink receives the ticks delivered by a pipeline. Accept is called by the delivery loop, one tick at a time:
// it must not call Pause, Resume or Close on the pipeline delivering to it.
type Sink[T any] interface {
	Accept(T) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc[T any] func(T) error

// Accept calls f.
func (f SinkFunc[T]) Accept(v T) error { return f(v) }
