package animation

import (
	"context"
	"fmt"
	"log"
)

// Launcher starts one isolated worker unit.
type Launcher interface {
	// Launch starts the unit rendering a and returns without waiting for it.
	// An error means the unit never started.
	Launch(ctx context.Context, job Job, a Assignment) (Handle, error)
}

// Handle is a started worker unit.
type Handle interface {
	// Wait blocks until the unit terminates. A nil error means normal
	// termination; anything else is abnormal termination.
	Wait() error

	// Kill asks the unit to stop. It does not wait; call Wait to reap.
	Kill() error
}

// GoroutineLauncher runs each unit in its own goroutine. The unit receives
// a copy of the Job and builds its own scheduler, encoder and ledger client,
// so no mutable state is shared between units. A panic in a unit is
// recovered and reported as abnormal termination.
type GoroutineLauncher struct {
	run func(ctx context.Context, job Job, a Assignment) (*UnitResult, error)
}

// NewGoroutineLauncher returns a launcher running units in-process.
func NewGoroutineLauncher() *GoroutineLauncher {
	return &GoroutineLauncher{run: RunUnit}
}

// Launch implements Launcher.
func (l *GoroutineLauncher) Launch(ctx context.Context, job Job, a Assignment) (Handle, error) {
	run := l.run
	if run == nil {
		run = RunUnit
	}

	h := &goroutineHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer func() {
			if p := recover(); p != nil {
				log.Printf("[Worker %d] Panic: %v", a.Unit, p)
				h.err = fmt.Errorf("unit %d panicked: %v", a.Unit, p)
			}
		}()
		_, h.err = run(ctx, job, a)
	}()
	return h, nil
}

type goroutineHandle struct {
	done chan struct{}
	err  error
}

func (h *goroutineHandle) Wait() error {
	<-h.done
	return h.err
}

// Kill is a no-op: a goroutine cannot be stopped from outside, and rendering
// has no cancellation point. Wait still returns once the unit finishes.
func (h *goroutineHandle) Kill() error { return nil }
