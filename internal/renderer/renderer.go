// Package renderer assembles the preview runtime: it owns one runtime
// context, one scaled geometry, one budget state, and the single active
// loop registration per drawing surface.
package renderer

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sketchkit/preview/internal/budget"
	"github.com/sketchkit/preview/internal/config"
	"github.com/sketchkit/preview/internal/logging"
	"github.com/sketchkit/preview/internal/loop"
	"github.com/sketchkit/preview/internal/monitoring"
	"github.com/sketchkit/preview/internal/sandbox"
	"github.com/sketchkit/preview/internal/scale"
	"github.com/sketchkit/preview/internal/surface"
	"github.com/sketchkit/preview/internal/types"
)

// Options mirrors the construction input handed over by the validation
// layer. Zero values fall back to process-wide defaults.
type Options struct {
	Script      string
	Mode        types.Mode
	Width       int
	Height      int
	Seed        int64
	VarInputs   []float64
	TotalFrames int

	OnBudgetExceeded func(types.BudgetInfo)
	BudgetBehavior   types.BudgetBehavior
	ShowOverlay      bool
	ShowBadge        bool
	MaxFrames        int
	MaxTimeMs        int

	// MaxDimension caps the longest buffer side; 0 means process default.
	MaxDimension int
	// FPS for the loop scheduler; 0 means process default.
	FPS int

	// Scheduler overrides the ticker scheduler. Tests use a manual one.
	Scheduler loop.Scheduler
	Logger    *logging.Logger
}

// Renderer is the caller-facing handle over one compiled script and one
// drawing surface.
type Renderer struct {
	id  string
	log *logging.Logger

	sf   *surface.Surface
	geom scale.Geometry
	ctx  *sandbox.RuntimeContext
	sb   *sandbox.Sandbox
	arb  *budget.Arbiter
	ctl  *loop.Controller

	reg  *Registry
	opts Options

	mu        sync.Mutex
	destroyed bool
}

// New constructs a renderer with its own surface, registered in the
// default registry.
func New(opts Options) (*Renderer, error) {
	return NewWithRegistry(DefaultRegistry(), nil, opts)
}

// NewWithRegistry constructs a renderer in reg, drawing onto sf. A nil sf
// creates a fresh surface. Any prior renderer active on the same surface
// is forcibly destroyed first: only one loop may run per surface.
func NewWithRegistry(reg *Registry, sf *surface.Surface, opts Options) (*Renderer, error) {
	cfg := config.LoadOrDefault()

	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.TotalFrames == 0 {
		opts.TotalFrames = cfg.Render.TotalFrames
	}
	if opts.TotalFrames < 0 {
		return nil, fmt.Errorf("totalFrames must be positive, got %d", opts.TotalFrames)
	}
	if opts.MaxDimension == 0 {
		opts.MaxDimension = cfg.Render.MaxDimension
	}
	if opts.MaxFrames == 0 {
		opts.MaxFrames = cfg.Budget.MaxFrames
	}
	if opts.MaxTimeMs == 0 {
		opts.MaxTimeMs = cfg.Budget.MaxTimeMs
	}
	if opts.BudgetBehavior == "" {
		opts.BudgetBehavior = types.BudgetBehavior(cfg.Budget.Behavior)
	}
	if opts.Mode == "" {
		opts.Mode = types.ModeStatic
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}

	if sf == nil {
		sf = surface.New(opts.Width, opts.Height)
	}

	geom := scale.Compute(opts.Width, opts.Height, opts.MaxDimension)
	if err := scale.Apply(sf, geom); err != nil {
		return nil, fmt.Errorf("failed to apply geometry: %w", err)
	}
	scale.ReapplyTransform(sf, geom)

	ctx, err := sandbox.NewRuntimeContext(sf, opts.Width, opts.Height, opts.Seed, opts.VarInputs, opts.TotalFrames)
	if err != nil {
		return nil, err
	}

	sb := sandbox.Compile(opts.Script, ctx, log)

	arb := budget.New(budget.Config{
		MaxFrames:  opts.MaxFrames,
		MaxTime:    time.Duration(opts.MaxTimeMs) * time.Millisecond,
		Behavior:   opts.BudgetBehavior,
		Stride:     cfg.Budget.Stride,
		OnExceeded: opts.OnBudgetExceeded,
	}, log)

	sched := opts.Scheduler
	if sched == nil {
		fps := opts.FPS
		if fps == 0 {
			fps = cfg.Render.FPS
		}
		sched = loop.NewTickerScheduler(fps)
	}

	r := &Renderer{
		id:   uuid.NewString(),
		log:  log,
		sf:   sf,
		geom: geom,
		ctx:  ctx,
		sb:   sb,
		arb:  arb,
		reg:  reg,
		opts: opts,
	}

	r.ctl = loop.NewController(sched, arb, sb, ctx, sf, log)
	if opts.ShowOverlay {
		r.ctl.Overlay = r.drawOverlay
	}
	if opts.ShowBadge {
		r.ctl.Badge = r.drawBadge
	}

	reg.register(sf.ID(), r)
	monitoring.Get().RenderersTotal.Inc()
	monitoring.Get().ActiveRenderers.Inc()

	log.Debug("renderer constructed",
		zap.String("renderer", r.id),
		zap.String("surface", sf.ID()),
		zap.Float64("scale", geom.Scale),
		zap.Bool("was_scaled", geom.WasScaled))

	return r, nil
}

// ID returns the renderer's identity.
func (r *Renderer) ID() string { return r.id }

// Surface exposes the drawing surface, mainly for snapshot extraction.
func (r *Renderer) Surface() *surface.Surface { return r.sf }

// ScaleFactor returns the semantic-to-buffer scale, 1 when unscaled.
func (r *Renderer) ScaleFactor() float64 { return r.geom.Scale }

// RenderStatic runs a single synchronous frame with frame index 0. The
// returned error is non-nil only for the zero-output invariant violation:
// a compiled draw ran but painted nothing, which points at a broken
// compile pipeline upstream, not at the script.
func (r *Renderer) RenderStatic() (types.RenderResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()

	if r.destroyed {
		return types.RenderResult{
			Success:         false,
			TerminatedEarly: true,
			Reason:          types.ReasonError,
			ErrorMessage:    "renderer destroyed",
		}, nil
	}

	if !r.sb.HasDraw() && !r.sb.HasSetup() {
		// Compile failure or empty script: blank frame, no crash.
		return types.RenderResult{
			Success:         false,
			ExecutionTimeMs: msSince(start),
			Reason:          types.ReasonError,
			ErrorMessage:    "script registered no functions",
		}, nil
	}

	r.sf.ResetPaintCalls()
	r.arb.Start()
	r.ctl.RenderStatic()
	r.arb.Stop()

	result := types.RenderResult{
		Success:         true,
		FramesRendered:  r.arb.FramesRendered(),
		ExecutionTimeMs: msSince(start),
	}

	if r.sb.HasDraw() && r.sf.PaintCalls() == 0 {
		err := fmt.Errorf("draw executed but produced no visual output")
		result.Success = false
		result.Reason = types.ReasonError
		result.ErrorMessage = err.Error()
		return result, err
	}

	return result, nil
}

// StartLoop begins loop-mode rendering. Restarting fully resets the
// budget state.
func (r *Renderer) StartLoop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return fmt.Errorf("renderer destroyed")
	}
	r.ctl.Start()
	return nil
}

// StopLoop halts the loop, discards the pending tick, and reports the
// finished session. A loop the caller cut short carries ReasonUserStop; a
// loop the budget already ended keeps its budget reason.
func (r *Renderer) StopLoop() types.RenderResult {
	wasRunning := r.ctl.Running()
	r.ctl.Stop()

	reason := r.arb.ExceededReason()
	if reason == "" && wasRunning {
		reason = types.ReasonUserStop
	}
	return types.RenderResult{
		Success:         true,
		FramesRendered:  r.arb.FramesRendered(),
		ExecutionTimeMs: float64(r.arb.Elapsed().Milliseconds()),
		TerminatedEarly: reason == types.ReasonUserStop,
		Reason:          reason,
	}
}

// IsRendering reports whether the loop is active.
func (r *Renderer) IsRendering() bool {
	return r.ctl.Running()
}

// Destroy stops the loop, interrupts any in-flight script, and releases
// the surface registration. Stats remain readable afterwards.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	r.mu.Unlock()

	r.ctl.Destroy()
	r.sb.Interrupt()
	r.reg.unregister(r.sf.ID(), r)
	monitoring.Get().ActiveRenderers.Dec()

	r.log.Debug("renderer destroyed", zap.String("renderer", r.id))
}

// Stats returns a snapshot of the current counters. Safe at any time:
// before the loop starts elapsed is zero, after destroy the last known
// values persist.
func (r *Renderer) Stats() types.StatsSnapshot {
	return types.StatsSnapshot{
		Scale:          r.geom.Scale,
		SemanticWidth:  r.geom.SemanticWidth,
		SemanticHeight: r.geom.SemanticHeight,
		BufferWidth:    r.geom.BufferWidth,
		BufferHeight:   r.geom.BufferHeight,
		Frames:         r.arb.FramesRendered(),
		Stride:         r.arb.Stride(),
		TotalTimeMs:    float64(r.arb.Elapsed().Milliseconds()),
		ExceededReason: r.arb.ExceededReason(),
	}
}

// drawOverlay paints a one-time translucent notice over the frame when
// the budget halts the loop.
func (r *Renderer) drawOverlay(reason types.Reason) {
	w := float64(r.geom.SemanticWidth)
	h := float64(r.geom.SemanticHeight)

	r.sf.Push()
	r.sf.SetFill(gg.RGBA2(0, 0, 0, 0.6))
	r.sf.NoStroke()
	r.sf.Rect(0, h/2-h/12, w, h/6)
	r.sf.SetFill(gg.RGB(1, 1, 1))
	r.sf.Text(fmt.Sprintf("preview stopped: %s", reason), w/2-60, h/2)
	r.sf.Pop()
}

// drawBadge marks the corner of degraded or scaled frames so reduced
// fidelity is visible during development.
func (r *Renderer) drawBadge() {
	if !r.geom.WasScaled && r.arb.Stride() == 1 {
		return
	}
	r.sf.Push()
	r.sf.SetFill(gg.RGBA2(1, 0.6, 0, 0.8))
	r.sf.NoStroke()
	r.sf.Rect(4, 4, 10, 10)
	r.sf.Pop()
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
