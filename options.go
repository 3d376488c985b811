package tickpipe

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultRate is the rate of a pipeline built without WithRate, in ticks per second.
const DefaultRate = 1.0

type options struct {
	rate     float64
	logger   zerolog.Logger
	executor *Executor
	onStop   func(loopID uuid.UUID, err error)
}

// Option configures a Pipeline.
type Option func(*options)

func defaultOptions() options {
	return options{
		rate:   DefaultRate,
		logger: log.Logger,
	}
}

// WithRate sets the number of ticks delivered per second. 0 means no delay between deliveries.
func WithRate(rate float64) Option {
	return func(o *options) { o.rate = rate }
}

// WithLogger sets the logger used by the delivery loop.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithExecutor runs the delivery loop in a shared executor. The pipeline won't release it on Close.
func WithExecutor(executor *Executor) Option {
	return func(o *options) { o.executor = executor }
}

// WithOnStop registers a callback called each time a delivery loop exits, with the loop identifier and the error
// which stopped it (nil when stopped by Pause).
//
// The callback runs on the loop goroutine before Pause returns: it must not call Pause, Resume or Close on the same pipeline.
func WithOnStop(fn func(loopID uuid.UUID, err error)) Option {
	return func(o *options) { o.onStop = fn }
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return fmt.Errorf("%w: rate must be a finite non-negative number (got %v)", ErrConfiguration, rate)
	}
	return nil
}
