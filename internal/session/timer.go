package session

import (
	"context"
	"sync"
	"time"
)

// DefaultTick is the clock cadence used when none is configured.
const DefaultTick = 100 * time.Millisecond

// Timer is the recurring tick handle owned by a running session. It is
// created on every transition into StateRunning and stopped on every exit.
type Timer struct {
	id       uint64
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

func newTimer(id uint64, interval time.Duration) *Timer {
	if interval <= 0 {
		interval = DefaultTick
	}
	return &Timer{id: id, interval: interval, done: make(chan struct{})}
}

// ID identifies the timer; ticks carrying another id are ignored.
func (t *Timer) ID() uint64 {
	return t.id
}

// Interval returns the tick period.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// Stop cancels the recurrence. Safe to call more than once.
func (t *Timer) Stop() {
	t.once.Do(func() { close(t.done) })
}

// Done is closed once the timer is stopped.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

// Stopped reports whether Stop has been called.
func (t *Timer) Stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Scheduler arranges for a timer's ticks to reach Session.Tick on the
// goroutine that owns the session.
type Scheduler interface {
	Schedule(t *Timer)
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(t *Timer)

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(t *Timer) {
	f(t)
}

// TickerScheduler runs each timer on a time.Ticker and hands every tick to
// Post until the timer is stopped or Context is done.
type TickerScheduler struct {
	Context context.Context
	Post    func(id uint64)
}

// Schedule implements Scheduler.
func (s TickerScheduler) Schedule(t *Timer) {
	ctx := s.Context
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		ticker := time.NewTicker(t.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-t.Done():
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if t.Stopped() {
					return
				}
				s.Post(t.ID())
			}
		}
	}()
}
