package tickpipe

import (
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Process defines a basic function which update a tick and return the updated tick
type Process[T any] func(T) T

// Link merge several Process to one, applied in order
func Link[T any](procs ...Process[T]) Process[T] {
	return func(t T) T {
		return lo.Reduce(procs, func(val T, proc Process[T], _ int) T { return proc(val) }, t)
	}
}

// Map decorates a Generator, so that each tick goes through procs before being returned. Errors are returned untouched.
func Map[T any](gen Generator[T], procs ...Process[T]) Generator[T] {
	proc := Link(procs...)
	return GeneratorFunc[T](func() (T, error) {
		v, err := gen.Next()
		if err != nil {
			return v, err
		}
		return proc(v), nil
	})
}

// FromSlice generates the values in order, then ErrExhausted. It is not safe for concurrent use.
func FromSlice[T any](values []T) Generator[T] {
	i := 0
	return GeneratorFunc[T](func() (v T, err error) {
		if i >= len(values) {
			return v, ErrExhausted
		}
		v = values[i]
		i++
		return v, nil
	})
}

// Take limits gen to its n first ticks, then returns ErrExhausted. It is not safe for concurrent use.
func Take[T any](gen Generator[T], n int) Generator[T] {
	taken := 0
	return GeneratorFunc[T](func() (v T, err error) {
		if taken >= n {
			return v, ErrExhausted
		}
		if v, err = gen.Next(); err != nil {
			return v, err
		}
		taken++
		return v, nil
	})
}

// Synchronized makes gen safe to use concurrently, e.g. from Pipeline.Next while the delivery loop runs.
// Each tick is still returned once.
func Synchronized[T any](gen Generator[T]) Generator[T] {
	var mu sync.Mutex
	return GeneratorFunc[T](func() (T, error) {
		mu.Lock()
		defer mu.Unlock()
		return gen.Next()
	})
}

// Tee delivers each tick to all sinks in order, even when some of them fail. Failures are joined.
func Tee[T any](sinks ...Sink[T]) Sink[T] {
	sinks = lo.Filter(sinks, func(s Sink[T], _ int) bool { return s != nil })
	return SinkFunc[T](func(v T) error {
		errs := lo.FilterMap(sinks, func(s Sink[T], i int) (error, bool) {
			err := s.Accept(v)
			if err != nil {
				err = fmt.Errorf("sink %d: %w", i, err)
			}
			return err, err != nil
		})
		return errors.Join(errs...)
	})
}
