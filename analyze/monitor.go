package analyze

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Clock abstracts time for the Monitor so tests can drive the loop
// deterministically.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// systemClock is the production Clock backed by the time package.
type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// StepSource supplies the current step list and workflow name on each
// monitoring tick. Implementations typically read from whatever system of
// record the caller owns.
type StepSource func(ctx context.Context) ([]WorkflowStep, string, error)

// Monitor re-analyzes a workflow on a fixed interval.
//
// Monitor is an explicit, injectable background task with a start/stop
// lifecycle and an injected clock; there is no package-level timer or
// process-wide mutable queue. Callers that want continuous quality
// monitoring construct one per workflow, start it, and stop it when done:
//
//	mon := analyze.NewMonitor(engine, source, time.Minute, onReport)
//	if err := mon.Start(ctx); err != nil { ... }
//	defer mon.Stop()
//
// Each tick is a fresh, independent analysis run; there is no incremental
// recomputation.
type Monitor struct {
	engine   *Engine
	source   StepSource
	interval time.Duration
	clock    Clock
	onReport func(*ComprehensiveAnalysis)

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithClock injects an alternative clock, used by tests to drive ticks
// without real time passing.
func WithClock(c Clock) MonitorOption {
	return func(m *Monitor) {
		m.clock = c
	}
}

// NewMonitor creates a Monitor that analyzes the steps from source every
// interval and hands each report to onReport.
func NewMonitor(engine *Engine, source StepSource, interval time.Duration, onReport func(*ComprehensiveAnalysis), opts ...MonitorOption) *Monitor {
	m := &Monitor{
		engine:   engine,
		source:   source,
		interval: interval,
		clock:    systemClock{},
		onReport: onReport,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the monitoring loop. Returns an error if the monitor is
// already running or misconfigured. The loop exits when Stop is called or
// ctx is canceled.
func (m *Monitor) Start(ctx context.Context) error {
	if m.interval <= 0 {
		return errors.New("monitor interval must be positive")
	}
	if m.source == nil {
		return errors.New("monitor requires a step source")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("monitor already started")
	}
	m.started = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go m.loop(ctx, m.stop, m.done)
	return nil
}

// Stop halts the monitoring loop and waits for it to exit. Safe to call
// once after a successful Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	<-done
}

func (m *Monitor) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-m.clock.After(m.interval):
		}

		steps, name, err := m.source(ctx)
		if err != nil {
			// Source failures skip the tick; the next tick retries.
			continue
		}

		report := m.engine.Analyze(ctx, steps, name)
		if m.onReport != nil {
			m.onReport(report)
		}
	}
}
