// Package loop drives the per-frame scheduling discipline that ties the
// sandbox, the budget arbiter, and the drawing surface together.
//
// The one locked invariant: on a live loop the next tick is always
// scheduled before any budget check or draw call runs. Gates decide
// whether this tick draws, never whether the next tick exists. Gating the
// scheduling instead makes the loop silently die the first time a gate is
// false, which looks like "animation freezes after one frame" to the
// caller. Liveness is the sole exception: a straggler tick whose timer had
// already fired when Stop ran exits without a successor, otherwise a
// stopped controller would keep the timer chain alive forever.
package loop

import (
	"sync"

	"github.com/sketchkit/preview/internal/budget"
	"github.com/sketchkit/preview/internal/logging"
	"github.com/sketchkit/preview/internal/monitoring"
	"github.com/sketchkit/preview/internal/sandbox"
	"github.com/sketchkit/preview/internal/scale"
	"github.com/sketchkit/preview/internal/surface"
	"github.com/sketchkit/preview/internal/types"
)

// Controller owns one animation loop over one surface.
// States: Idle -> Running -> Idle (stop/destroy); Destroyed is terminal.
type Controller struct {
	sched Scheduler
	arb   *budget.Arbiter
	sb    *sandbox.Sandbox
	ctx   *sandbox.RuntimeContext
	sf    *surface.Surface
	log   *logging.Logger

	// Overlay is drawn once when the budget halts the loop, badge after
	// every drawn frame. Either may be nil.
	Overlay func(reason types.Reason)
	Badge   func()

	mu        sync.Mutex
	running   bool
	destroyed bool
	tickCount int
	cancel    Cancel
}

// NewController wires a controller. All collaborators are required except
// the logger.
func NewController(sched Scheduler, arb *budget.Arbiter, sb *sandbox.Sandbox, ctx *sandbox.RuntimeContext, sf *surface.Surface, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.NewNop()
	}
	return &Controller{
		sched: sched,
		arb:   arb,
		sb:    sb,
		ctx:   ctx,
		sf:    sf,
		log:   log,
	}
}

// Start begins the loop: resets budget state, runs setup once, schedules
// the first tick. No-op if already running or destroyed.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.destroyed {
		return
	}

	c.running = true
	c.tickCount = 0
	c.arb.Start()

	c.ctx.SetFrame(0)
	c.sb.CallSetup()

	c.cancel = c.sched.Schedule(c.tick)
	monitoring.Get().TicksScheduled.Inc()
}

// Stop halts the loop and cancels the pending tick. An in-flight tick
// already past its liveness check runs to completion.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Destroy stops the loop and makes the controller unusable.
func (c *Controller) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.destroyed = true
}

// Running reports whether the loop is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// TickCount returns the number of ticks that passed the liveness check.
func (c *Controller) TickCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickCount
}

// RenderStatic performs a single synchronous pass with frame index 0:
// refresh time fields, clear, setup + draw. No scheduling is involved.
func (c *Controller) RenderStatic() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return
	}

	c.ctx.SetFrame(0)
	scale.ClearIgnoringTransform(c.sf)
	c.sb.CallSetup()
	if c.sb.CallDraw() || c.sb.HasDraw() {
		c.arb.RecordFrame()
	}
}

func (c *Controller) stopLocked() {
	c.running = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.arb.Stop()
}

// tick is one pass of the scheduling discipline. Order is load-bearing;
// see the package comment.
func (c *Controller) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// (1) Liveness gate. A tick that fired before Stop's cancel landed
	// still gets here; scheduling from it would resurrect the chain.
	if !c.running || c.destroyed {
		return
	}

	// (2) Schedule the next tick before any budget gate or draw runs.
	c.cancel = c.sched.Schedule(c.tick)
	monitoring.Get().TicksScheduled.Inc()

	// (3) Advance the tick counter.
	c.tickCount++

	// (4) Budget decision.
	switch c.arb.Check() {
	case budget.Halt:
		c.stopLocked()
		if c.Overlay != nil {
			c.Overlay(c.arb.ExceededReason())
		}
		return
	case budget.Degrade:
		// (5) Stride gate: skipped ticks keep their pixels.
		if c.tickCount%c.arb.Stride() != 0 {
			monitoring.Get().TicksSkipped.Inc()
			return
		}
	}

	// (6) Refresh the live time fields.
	c.ctx.SetFrame(c.tickCount)

	// (7) Clear the whole physical buffer regardless of transform.
	scale.ClearIgnoringTransform(c.sf)

	// (8) Draw. A throw inside draw means this frame contributes no new
	// pixels; the loop continues on the next tick.
	if c.sb.CallDraw() || c.sb.HasDraw() {
		c.arb.RecordFrame()
	}

	// (9) Debug badge on top of the frame.
	if c.Badge != nil {
		c.Badge()
	}
}
