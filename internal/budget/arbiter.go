// Package budget tracks elapsed frames and wall-clock time against
// configurable ceilings and decides how the animation loop responds once a
// ceiling is crossed.
//
// Budget violations are not errors. They are a first-class state
// transition with an explicit reason code and a single notification per
// loop session. The arbiter never throws and bounds cumulative cost only;
// a single pathological tick is outside its reach.
package budget

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sketchkit/preview/internal/logging"
	"github.com/sketchkit/preview/internal/monitoring"
	"github.com/sketchkit/preview/internal/types"
)

// Defaults for the budget ceilings.
const (
	DefaultMaxFrames = 1800
	DefaultMaxTime   = 5 * time.Minute
	DefaultStride    = 2
)

// Decision tells the loop controller what to do with the current tick.
type Decision int

const (
	// Proceed: within budget, draw normally.
	Proceed Decision = iota
	// Halt: budget exceeded with stop behavior; the loop must not draw
	// again until restarted.
	Halt
	// Degrade: budget exceeded with degrade behavior; keep ticking but
	// only draw every Stride-th tick.
	Degrade
)

// Config holds one loop session's ceilings and exceeded response.
type Config struct {
	MaxFrames  int
	MaxTime    time.Duration
	Behavior   types.BudgetBehavior
	Stride     int
	OnExceeded func(types.BudgetInfo)
}

// DefaultConfig returns the process default budget.
func DefaultConfig() Config {
	return Config{
		MaxFrames: DefaultMaxFrames,
		MaxTime:   DefaultMaxTime,
		Behavior:  types.BehaviorStop,
		Stride:    DefaultStride,
	}
}

// Arbiter is the per-renderer budget state machine:
// Idle -> Running -> {Exceeded(stop) -> Idle, Exceeded(degrade) ->
// Running(degraded)}; Running -> Idle on manual stop.
//
// All state sits behind one mutex: the loop goroutine mutates it each tick
// while stats readers sample it from arbitrary goroutines.
type Arbiter struct {
	cfg Config
	log *logging.Logger

	mu             sync.Mutex
	now            func() time.Time
	running        bool
	start          time.Time
	framesRendered int
	stride         int
	exceededReason types.Reason
	notified       bool

	// Last observed elapsed, kept so stats stay readable after Stop.
	lastElapsed time.Duration
}

// New creates an arbiter. A nil logger is replaced with a nop. Invalid
// ceilings are kept as-is: MaxFrames <= 0 simply degenerates to "budget
// exceeded on the first check", which is acceptable.
func New(cfg Config, log *logging.Logger) *Arbiter {
	if log == nil {
		log = logging.NewNop()
	}
	if cfg.Stride < 2 {
		cfg.Stride = DefaultStride
	}
	return &Arbiter{
		cfg:    cfg,
		log:    log,
		now:    time.Now,
		stride: 1,
	}
}

// SetClock injects a time source. Tests use this to cross the time ceiling
// without waiting.
func (a *Arbiter) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
}

// Start begins a loop session, fully resetting the budget state.
func (a *Arbiter) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = true
	a.start = a.now()
	a.framesRendered = 0
	a.stride = 1
	a.exceededReason = ""
	a.notified = false
	a.lastElapsed = 0
}

// Stop ends the session. Stats keep their last known values.
func (a *Arbiter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		a.lastElapsed = a.now().Sub(a.start)
	}
	a.running = false
}

// Running reports whether a session is active.
func (a *Arbiter) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Check evaluates the ceilings for the current tick. The first crossing
// fires the exceeded notification exactly once per session; subsequent
// checks are idempotent until the next Start. The notification callback
// runs outside the lock so it may freely read stats.
func (a *Arbiter) Check() Decision {
	a.mu.Lock()

	if !a.running {
		a.mu.Unlock()
		return Halt
	}

	elapsed := a.now().Sub(a.start)
	a.lastElapsed = elapsed

	var reason types.Reason
	switch {
	case a.framesRendered >= a.cfg.MaxFrames:
		reason = types.ReasonFrameLimit
	case elapsed >= a.cfg.MaxTime:
		reason = types.ReasonTimeLimit
	default:
		a.mu.Unlock()
		return Proceed
	}

	if a.exceededReason == "" {
		a.exceededReason = reason
		monitoring.Get().BudgetExceeded.WithLabelValues(string(reason)).Inc()
		a.log.Info("budget exceeded",
			zap.String("reason", string(reason)),
			zap.Int("frames", a.framesRendered),
			zap.Duration("elapsed", elapsed))
	}

	notify := !a.notified
	a.notified = true
	info := types.BudgetInfo{
		Reason:    reason,
		Frames:    a.framesRendered,
		ElapsedMs: float64(elapsed.Milliseconds()),
	}

	var decision Decision
	if a.cfg.Behavior == types.BehaviorDegrade {
		a.stride = a.cfg.Stride
		decision = Degrade
	} else {
		a.running = false
		decision = Halt
	}

	a.mu.Unlock()

	if notify && a.cfg.OnExceeded != nil {
		a.cfg.OnExceeded(info)
	}
	return decision
}

// RecordFrame counts one completed draw call.
func (a *Arbiter) RecordFrame() {
	a.mu.Lock()
	a.framesRendered++
	a.mu.Unlock()
	monitoring.Get().FramesRendered.Inc()
}

// FramesRendered returns the number of completed draw calls this session.
func (a *Arbiter) FramesRendered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.framesRendered
}

// Stride returns the current draw stride; 1 unless degraded.
func (a *Arbiter) Stride() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stride
}

// ExceededReason returns the first ceiling crossed, if any.
func (a *Arbiter) ExceededReason() types.Reason {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exceededReason
}

// Elapsed returns wall time since session start, or the last known value
// after Stop. Zero before the first Start.
func (a *Arbiter) Elapsed() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return a.now().Sub(a.start)
	}
	return a.lastElapsed
}
