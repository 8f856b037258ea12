package toast

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules auto-dismiss timers. Tests substitute a ManualClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock {
	return realClock{}
}

// ManualClock is a Clock that only moves when Advance is called. Callbacks
// run synchronously on the goroutine calling Advance, in deadline order.
type ManualClock struct {
	now    time.Time
	timers []*manualTimer
	mu     sync.Mutex
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Time
	f       func()
	stopped bool
}

// NewManualClock creates a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f at Now()+d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every timer now due, including
// timers scheduled by callbacks that fall inside the window.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at.Before(c.timers[j].at) })

		var next *manualTimer
		for i, t := range c.timers {
			if t.stopped {
				continue
			}
			if !t.at.After(target) {
				next = t
				c.timers = append(c.timers[:i], c.timers[i+1:]...)
			}
			break
		}
		if next == nil {
			c.now = target
			c.timers = pruneStopped(c.timers)
			c.mu.Unlock()
			return
		}
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of timers not yet fired or stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true
	for _, pending := range t.clock.timers {
		if pending == t {
			return true
		}
	}
	return false
}

func pruneStopped(timers []*manualTimer) []*manualTimer {
	out := timers[:0]
	for _, t := range timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// Loop is a Clock whose callbacks run on the goroutine that drains it.
// Timers fire on the base clock but only queue their callback; Flush runs
// the queue. Components that share a document schedule through one Loop so
// every mutation happens on the owner's goroutine.
type Loop struct {
	base   Clock
	queue  []*loopTimer
	notify chan struct{}
	mu     sync.Mutex
}

type loopTimer struct {
	loop *Loop
	base Timer
	f    func()
	done bool
}

// NewLoop wraps base. A nil base uses RealClock.
func NewLoop(base Clock) *Loop {
	if base == nil {
		base = RealClock()
	}
	return &Loop{base: base, notify: make(chan struct{}, 1)}
}

// Now reads the base clock.
func (l *Loop) Now() time.Time {
	return l.base.Now()
}

// AfterFunc queues f once d has elapsed on the base clock.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{loop: l, f: f}
	base := l.base.AfterFunc(d, func() { l.post(t) })

	l.mu.Lock()
	t.base = base
	l.mu.Unlock()
	return t
}

// Ready signals that callbacks are queued. Receive from it, then call Flush.
func (l *Loop) Ready() <-chan struct{} {
	return l.notify
}

// Flush runs every queued callback on the calling goroutine and returns how
// many ran. Callbacks queued while flushing run in the same call.
func (l *Loop) Flush() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		t := l.queue[0]
		l.queue = l.queue[1:]
		skip := t.done
		t.done = true
		l.mu.Unlock()

		if !skip {
			t.f()
			n++
		}
	}
}

// Queued returns the number of callbacks waiting for Flush.
func (l *Loop) Queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) post(t *loopTimer) {
	l.mu.Lock()
	if t.done {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, t)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

func (t *loopTimer) Stop() bool {
	l := t.loop
	l.mu.Lock()
	if t.done {
		l.mu.Unlock()
		return false
	}
	t.done = true
	base := t.base
	queued := false
	for i, q := range l.queue {
		if q == t {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			queued = true
			break
		}
	}
	l.mu.Unlock()

	if queued {
		return true
	}
	if base != nil {
		base.Stop()
	}
	return true
}
