// Package sim drives a telemetry source at a fixed tick period and hands
// every sample to a sink.
package sim

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

// DefaultPeriod is the tick period of every loop.
const DefaultPeriod = 100 * time.Millisecond

// ErrAlreadyRunning is returned by Run when another run of the same loop is active.
var ErrAlreadyRunning = errors.New("sim: loop already running")

// Source produces one sample per call. *telemetry.Generator satisfies it.
type Source interface {
	Tick() telemetry.Sample
}

// Sink consumes samples. Publish must not retain the caller's goroutine for
// long; the loop calls it synchronously on every tick.
type Sink interface {
	Publish(s telemetry.Sample)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(s telemetry.Sample)

func (f SinkFunc) Publish(s telemetry.Sample) { f(s) }

// Fanout publishes each sample to every sink in order.
type Fanout []Sink

func (f Fanout) Publish(s telemetry.Sample) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(s)
		}
	}
}

// StopFunc is polled once per tick, before the sample is produced.
// Returning true ends the loop.
type StopFunc func() bool

// Any stops as soon as one of the conditions does.
func Any(conds ...StopFunc) StopFunc {
	return func() bool {
		for _, c := range conds {
			if c != nil && c() {
				return true
			}
		}
		return false
	}
}

// Loop owns a Source and ticks it at a fixed period. At most one run of a
// Loop is active at a time.
type Loop struct {
	source Source
	sink   Sink
	period time.Duration

	active atomic.Bool
	ticks  atomic.Uint64
}

// New creates a loop ticking at DefaultPeriod.
func New(source Source, sink Sink) *Loop {
	return &Loop{
		source: source,
		sink:   sink,
		period: DefaultPeriod,
	}
}

// WithPeriod changes the tick period. Call it before the first run.
func (l *Loop) WithPeriod(d time.Duration) *Loop {
	if d > 0 {
		l.period = d
	}
	return l
}

// Active reports whether a run is in progress.
func (l *Loop) Active() bool { return l.active.Load() }

// Ticks returns the number of samples published across all runs.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Run ticks on the calling goroutine until stop returns true or ctx is done.
// It returns nil when stopped by the condition and ctx.Err() on cancellation.
func (l *Loop) Run(ctx context.Context, stop StopFunc) error {
	if !l.active.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.active.Store(false)
	return l.run(ctx, stop)
}

// Start runs the loop on a new goroutine. It returns false without starting
// anything if a run is already active. The returned channel is closed after
// the run has ended and Active reports false.
func (l *Loop) Start(ctx context.Context, stop StopFunc) (<-chan struct{}, bool) {
	if !l.active.CompareAndSwap(false, true) {
		return nil, false
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer l.active.Store(false)
		_ = l.run(ctx, stop)
	}()
	return done, true
}

func (l *Loop) run(ctx context.Context, stop StopFunc) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if stop != nil && stop() {
			return nil
		}

		s := l.source.Tick()
		l.sink.Publish(s)
		l.ticks.Add(1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
