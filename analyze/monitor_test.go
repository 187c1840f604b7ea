package analyze

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock drives the monitor loop from the test instead of real time.
type fakeClock struct {
	tick chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{tick: make(chan time.Time)}
}

func (f *fakeClock) Now() time.Time                       { return time.Unix(0, 0) }
func (f *fakeClock) After(time.Duration) <-chan time.Time { return f.tick }

func TestMonitorLifecycle(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Run("requires a positive interval", func(t *testing.T) {
		mon := NewMonitor(engine, func(context.Context) ([]WorkflowStep, string, error) {
			return nil, "", nil
		}, 0, nil)
		if err := mon.Start(context.Background()); err == nil {
			t.Error("Start accepted a zero interval")
		}
	})

	t.Run("requires a step source", func(t *testing.T) {
		mon := NewMonitor(engine, nil, time.Minute, nil)
		if err := mon.Start(context.Background()); err == nil {
			t.Error("Start accepted a nil source")
		}
	})

	t.Run("double start is rejected", func(t *testing.T) {
		clock := newFakeClock()
		mon := NewMonitor(engine, func(context.Context) ([]WorkflowStep, string, error) {
			return nil, "", nil
		}, time.Minute, nil, WithClock(clock))

		if err := mon.Start(context.Background()); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer mon.Stop()

		if err := mon.Start(context.Background()); err == nil {
			t.Error("second Start should fail while running")
		}
	})

	t.Run("stop before any tick is clean", func(t *testing.T) {
		clock := newFakeClock()
		mon := NewMonitor(engine, func(context.Context) ([]WorkflowStep, string, error) {
			return nil, "", nil
		}, time.Minute, nil, WithClock(clock))

		if err := mon.Start(context.Background()); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		mon.Stop()
		mon.Stop() // idempotent
	})
}

func TestMonitorTicks(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Run("each tick produces a fresh report", func(t *testing.T) {
		clock := newFakeClock()
		reports := make(chan *ComprehensiveAnalysis, 2)

		source := func(context.Context) ([]WorkflowStep, string, error) {
			return NormalizeSteps([]string{"Receive the order", "Ship the order"}), "orders", nil
		}
		mon := NewMonitor(engine, source, time.Minute, func(r *ComprehensiveAnalysis) {
			reports <- r
		}, WithClock(clock))

		if err := mon.Start(context.Background()); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer mon.Stop()

		for i := 0; i < 2; i++ {
			clock.tick <- time.Unix(0, 0)
			select {
			case r := <-reports:
				if r.WorkflowName != "orders" {
					t.Errorf("tick %d workflow = %q", i, r.WorkflowName)
				}
				if r.Error != "" {
					t.Errorf("tick %d error: %s", i, r.Error)
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("tick %d never produced a report", i)
			}
		}
	})

	t.Run("source failure skips the tick", func(t *testing.T) {
		clock := newFakeClock()
		reports := make(chan *ComprehensiveAnalysis, 2)

		calls := 0
		source := func(context.Context) ([]WorkflowStep, string, error) {
			calls++
			if calls == 1 {
				return nil, "", errors.New("source unavailable")
			}
			return NormalizeSteps([]string{"Receive the order"}), "recovered", nil
		}
		mon := NewMonitor(engine, source, time.Minute, func(r *ComprehensiveAnalysis) {
			reports <- r
		}, WithClock(clock))

		if err := mon.Start(context.Background()); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer mon.Stop()

		clock.tick <- time.Unix(0, 0) // failing tick, skipped
		clock.tick <- time.Unix(0, 0) // recovering tick

		select {
		case r := <-reports:
			if r.WorkflowName != "recovered" {
				t.Errorf("workflow = %q, want recovered", r.WorkflowName)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("recovering tick never produced a report")
		}

		if len(reports) != 0 {
			t.Error("failing tick should not have produced a report")
		}
	})
}
