package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Callbacks run synchronously inside
// Advance, in deadline order.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*fakeTask
}

// NewFake returns a Fake clock reading start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

type fakeTask struct {
	clock    *Fake
	interval time.Duration
	next     time.Time
	fn       func()
	stopped  bool
}

func (t *fakeTask) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Every schedules fn at now+interval, now+2*interval and so on.
func (f *Fake) Every(interval time.Duration, fn func()) Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if interval <= 0 {
		interval = time.Nanosecond
	}
	t := &fakeTask{clock: f, interval: interval, next: f.now.Add(interval), fn: fn}
	f.tasks = append(f.tasks, t)
	return t
}

// Advance moves the clock forward by d and fires every tick that falls due.
// It returns the number of callbacks run.
func (f *Fake) Advance(d time.Duration) int {
	f.mu.Lock()
	target := f.now.Add(d)
	fired := 0
	for {
		t := f.nextDueLocked(target)
		if t == nil {
			break
		}
		f.now = t.next
		t.next = t.next.Add(t.interval)
		f.mu.Unlock()
		t.fn()
		fired++
		f.mu.Lock()
	}
	f.now = target
	f.mu.Unlock()
	return fired
}

// Active returns the number of scheduled tasks not yet stopped.
func (f *Fake) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruneLocked()
	return len(f.tasks)
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTask {
	f.pruneLocked()
	var due *fakeTask
	for _, t := range f.tasks {
		if t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) {
			due = t
		}
	}
	return due
}

func (f *Fake) pruneLocked() {
	live := f.tasks[:0]
	for _, t := range f.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	clear(f.tasks[len(live):])
	f.tasks = live
}
