// Package clock provides owned, cancellable periodic tasks and a manual clock
// for driving them deterministically in tests.
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task is a running periodic callback. Stop is idempotent.
type Task interface {
	Stop()
}

// Clock schedules periodic tasks.
type Clock interface {
	Now() time.Time
	// Every calls fn once per interval until the returned task is stopped.
	Every(interval time.Duration, fn func()) Task
}

// Real returns a Clock backed by the runtime timers.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Every(interval time.Duration, fn func()) Task {
	t := &realTask{done: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				if t.stopped.Load() {
					return
				}
				fn()
			}
		}
	}()
	return t
}

// realTask stops its goroutine on Stop. A callback already running when Stop
// is called completes; no further callbacks start.
type realTask struct {
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

func (t *realTask) Stop() {
	t.once.Do(func() {
		t.stopped.Store(true)
		close(t.done)
	})
}
