package tickpipe

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Pipeline.
type State int

const (
	StatePaused State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// handle identifies one delivery loop instance.
type handle struct {
	id   uuid.UUID
	stop chan struct{} // closed by Pause
	done chan struct{} // closed by the loop on exit
}

// Stats is a snapshot of pipeline counters.
type Stats struct {
	// LoopID identifies the running loop, uuid.Nil when paused.
	LoopID uuid.UUID
	State  State
	// Delivered counts ticks accepted by the sink.
	Delivered uint64
	// Failed counts ticks the sink failed to accept.
	Failed uint64
	// Pulled counts ticks returned by Next.
	Pulled uint64
	// Loops counts delivery loops started.
	Loops uint64
}

// Pipeline pulls ticks from a Generator and pushes them to a Sink in a background loop, at a bounded rate.
// A Pipeline always starts paused.
type Pipeline[T any] struct {
	lifecycle sync.Mutex // serializes Resume, Pause and Close
	closed    bool

	bindings  sync.RWMutex
	generator Generator[T]
	sink      Sink[T]

	rate    atomic.Uint64 // float64 bits
	current atomic.Pointer[handle]

	executor     *Executor
	ownsExecutor bool
	logger       zerolog.Logger
	onStop       func(uuid.UUID, error)

	errMu sync.Mutex
	err   error

	delivered atomic.Uint64
	failed    atomic.Uint64
	pulled    atomic.Uint64
	loops     atomic.Uint64
}

// New builds a paused pipeline. Both gen and sink may be nil and bound later, but a sink is required to Resume.
//
// Unless WithExecutor is given, the pipeline owns a single worker executor, released by Close.
func New[T any](gen Generator[T], sink Sink[T], opts ...Option) (*Pipeline[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateRate(o.rate); err != nil {
		return nil, err
	}

	p := &Pipeline[T]{
		generator: gen,
		sink:      sink,
		executor:  o.executor,
		logger:    o.logger.With().Str("component", "tickpipe").Logger(),
		onStop:    o.onStop,
	}
	p.rate.Store(math.Float64bits(o.rate))

	if p.executor == nil {
		executor, err := NewExecutor(1)
		if err != nil {
			return nil, err
		}
		p.executor = executor
		p.ownsExecutor = true
	}
	return p, nil
}

// Resume starts a new delivery loop and returns immediately. A running loop is paused first.
//
// It fails with ErrConfiguration when no sink is bound, leaving the pipeline paused.
func (p *Pipeline[T]) Resume() error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.pause()

	p.bindings.RLock()
	gen, sink := p.generator, p.sink
	p.bindings.RUnlock()
	if sink == nil {
		return fmt.Errorf("%w: cannot start delivery loop without sink", ErrConfiguration)
	}

	h := &handle{
		id:   uuid.New(),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	prevErr := p.Err()
	p.setErr(nil)
	p.current.Store(h)
	if err := p.executor.submit(func() { p.loop(h, gen, sink) }); err != nil {
		p.current.Store(nil)
		p.setErr(prevErr) // no loop started
		return fmt.Errorf("submit delivery loop: %w", err)
	}
	p.loops.Add(1)
	return nil
}

// Pause stops the delivery loop and waits for it to exit: once Pause returns, the sink receives nothing until the next Resume.
// Pausing a paused pipeline is a no-op.
//
// Pause may wait for a delivery in progress, but never for a full rate interval.
func (p *Pipeline[T]) Pause() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.pause()
}

func (p *Pipeline[T]) pause() {
	h := p.current.Swap(nil)
	if h == nil {
		return
	}
	close(h.stop)
	<-h.done
}

// Close pauses the pipeline and releases the executor it owns. A closed pipeline can't be resumed, Next still works.
func (p *Pipeline[T]) Close() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	p.pause()
	if p.closed {
		return
	}
	p.closed = true
	if p.ownsExecutor {
		p.executor.Release()
	}
}

// Next pulls one tick straight from the generator, bypassing the delivery loop. It returns ErrNoGenerator if none is bound.
//
// Next does not synchronize with a running loop: concurrent use requires a generator safe for it.
func (p *Pipeline[T]) Next() (T, error) {
	p.bindings.RLock()
	gen := p.generator
	p.bindings.RUnlock()

	v, err := pull(gen)
	if err == nil {
		p.pulled.Add(1)
	}
	return v, err
}

// Paused reports whether no delivery loop is running.
func (p *Pipeline[T]) Paused() bool {
	return p.current.Load() == nil
}

// State returns the current lifecycle state.
func (p *Pipeline[T]) State() State {
	if p.Paused() {
		return StatePaused
	}
	return StateRunning
}

// Err returns the error which stopped the last delivery loop by itself, e.g. ErrExhausted. It is reset by Resume.
func (p *Pipeline[T]) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

func (p *Pipeline[T]) setErr(err error) {
	p.errMu.Lock()
	p.err = err
	p.errMu.Unlock()
}

// SetGenerator binds a generator. A running loop keeps the previous one until the next Resume.
func (p *Pipeline[T]) SetGenerator(gen Generator[T]) {
	p.bindings.Lock()
	p.generator = gen
	p.bindings.Unlock()
}

// SetSink binds a sink. A running loop keeps the previous one until the next Resume.
func (p *Pipeline[T]) SetSink(sink Sink[T]) {
	p.bindings.Lock()
	p.sink = sink
	p.bindings.Unlock()
}

// Rate returns the number of ticks delivered per second, 0 meaning unbounded.
func (p *Pipeline[T]) Rate() float64 {
	return math.Float64frombits(p.rate.Load())
}

// SetRate changes the rate. A running loop uses it from its next wait.
func (p *Pipeline[T]) SetRate(rate float64) error {
	if err := validateRate(rate); err != nil {
		return err
	}
	p.rate.Store(math.Float64bits(rate))
	return nil
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline[T]) Stats() Stats {
	s := Stats{
		State:     StatePaused,
		Delivered: p.delivered.Load(),
		Failed:    p.failed.Load(),
		Pulled:    p.pulled.Load(),
		Loops:     p.loops.Load(),
	}
	if h := p.current.Load(); h != nil {
		s.LoopID = h.id
		s.State = StateRunning
	}
	return s
}

// loop delivers ticks until h is stopped or superseded, or the generator fails.
func (p *Pipeline[T]) loop(h *handle, gen Generator[T], sink Sink[T]) {
	logger := p.logger.With().Str("loop_id", h.id.String()).Logger()

	var err error
	defer func() {
		// a loop stopped by the generator pauses the pipeline itself
		p.current.CompareAndSwap(h, nil)
		close(h.done)
	}()
	defer func() {
		if err != nil {
			p.setErr(err)
			logger.Error().Err(err).Msg("delivery loop failed")
		} else {
			logger.Debug().Msg("delivery loop stopped")
		}
		p.notifyStop(logger, h.id, err)
	}()

	logger.Debug().Float64("rate", p.Rate()).Msg("delivery loop started")
	for {
		if cur := p.current.Load(); cur != h {
			if cur != nil {
				logger.Warn().Str("newer_loop_id", cur.id.String()).Msg("found a newer delivery loop, stopping current")
			}
			return
		}
		select {
		case <-h.stop:
			return
		default:
		}

		var v T
		if v, err = pull(gen); err != nil {
			return
		}
		p.deliver(logger, sink, v)

		if !p.wait(h) {
			return
		}
	}
}

// notifyStop calls the OnStop callback. A panic in the callback is logged, it never leaves the loop unjoinable.
func (p *Pipeline[T]) notifyStop(logger zerolog.Logger, id uuid.UUID, err error) {
	if p.onStop == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("stop callback panicked")
		}
	}()
	p.onStop(id, err)
}

func (p *Pipeline[T]) deliver(logger zerolog.Logger, sink Sink[T], v T) {
	if err := accept(sink, v); err != nil {
		n := p.failed.Add(1)
		logger.Error().Err(err).Uint64("failures", n).Msg("failed to deliver tick")
		return
	}
	p.delivered.Add(1)
}

// wait sleeps for one rate interval. It returns false if h was stopped meanwhile.
func (p *Pipeline[T]) wait(h *handle) bool {
	interval := interval(p.Rate())
	if interval <= 0 {
		select {
		case <-h.stop:
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-h.stop:
		return false
	case <-timer.C:
		return true
	}
}

func interval(rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	d := float64(time.Second) / rate
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

func pull[T any](gen Generator[T]) (v T, err error) {
	if gen == nil {
		return v, ErrNoGenerator
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrGeneratorPanic, r)
		}
	}()
	return gen.Next()
}

func accept[T any](sink Sink[T], v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrSinkDelivery, r)
		}
	}()
	if err := sink.Accept(v); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkDelivery, err)
	}
	return nil
}
