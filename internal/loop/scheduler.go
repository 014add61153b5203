package loop

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cancel revokes a pending scheduled tick. Safe to call more than once.
type Cancel func()

// Scheduler hands out per-frame callbacks. It stands in for the host's
// native frame clock: the controller asks for the next tick, the scheduler
// decides when it runs.
type Scheduler interface {
	Schedule(fn func()) Cancel
}

// TickerScheduler paces callbacks at a fixed frame rate using a token
// bucket. Ticks chain one at a time, so callbacks never overlap.
type TickerScheduler struct {
	limiter *rate.Limiter
}

// NewTickerScheduler creates a scheduler targeting fps frames per second.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
	}
}

// Schedule runs fn once the pacer allows the next frame.
func (ts *TickerScheduler) Schedule(fn func()) Cancel {
	r := ts.limiter.Reserve()
	timer := time.AfterFunc(r.Delay(), fn)
	return func() {
		if !timer.Stop() {
			return
		}
		r.Cancel()
	}
}

// ManualScheduler is a deterministic scheduler for tests and one-shot
// batch rendering. Callbacks queue up and run only when stepped.
type ManualScheduler struct {
	mu        sync.Mutex
	queue     []*manualEntry
	scheduled int
}

type manualEntry struct {
	fn func()
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule enqueues fn without running it.
func (ms *ManualScheduler) Schedule(fn func()) Cancel {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.scheduled++
	entry := &manualEntry{fn: fn}
	ms.queue = append(ms.queue, entry)
	return func() {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		entry.fn = nil
	}
}

// Step runs the oldest pending callback. Returns false when none remain.
func (ms *ManualScheduler) Step() bool {
	ms.mu.Lock()
	var fn func()
	for len(ms.queue) > 0 {
		entry := ms.queue[0]
		ms.queue = ms.queue[1:]
		if entry.fn != nil {
			fn = entry.fn
			break
		}
	}
	ms.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Scheduled reports how many callbacks have ever been enqueued.
func (ms *ManualScheduler) Scheduled() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.scheduled
}
