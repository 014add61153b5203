package sandbox

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/sketchkit/preview/internal/logging"
	"github.com/sketchkit/preview/internal/monitoring"
)

// registerEpilogue captures the script's conventionally named top-level
// functions through a two-argument callback that exists only during
// compilation.
const registerEpilogue = `
;__register(
	typeof setup === 'function' ? setup : undefined,
	typeof draw === 'function' ? draw : undefined
);`

// Sandbox holds one compiled script bound to its runtime context.
type Sandbox struct {
	vm  *goja.Runtime
	ctx *RuntimeContext
	log *logging.Logger

	setupFn goja.Callable
	drawFn  goja.Callable
}

// Compile builds a VM around ctx and runs the script through it. It never
// fails: any compile-time error (syntax error, thrown top-level statement)
// is logged and yields a sandbox with neither function registered, which
// downstream treats as an empty setup/draw pair.
func Compile(script string, ctx *RuntimeContext, log *logging.Logger) *Sandbox {
	if log == nil {
		log = logging.NewNop()
	}

	s := &Sandbox{
		vm:  goja.New(),
		ctx: ctx,
		log: log,
	}

	s.scrubGlobals()
	s.installConsole()
	s.installStatics()
	s.installLive()

	if err := s.vm.Set("__register", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			if fn, ok := goja.AssertFunction(call.Arguments[0]); ok {
				s.setupFn = fn
			}
		}
		if len(call.Arguments) > 1 {
			if fn, ok := goja.AssertFunction(call.Arguments[1]); ok {
				s.drawFn = fn
			}
		}
		return goja.Undefined()
	}); err != nil {
		log.Error("failed to expose registration callback", zap.Error(err))
		return s
	}

	prog, err := goja.Compile("sketch.js", script+registerEpilogue, false)
	if err != nil {
		log.Warn("script failed to compile", zap.Error(err))
		monitoring.Get().ScriptErrors.WithLabelValues("compile").Inc()
		s.vm.Set("__register", goja.Undefined())
		return s
	}

	if _, err := s.vm.RunProgram(prog); err != nil {
		log.Warn("script threw during compilation", zap.Error(err))
		monitoring.Get().ScriptErrors.WithLabelValues("compile").Inc()
		s.setupFn = nil
		s.drawFn = nil
	}

	// Registration window is over.
	s.vm.Set("__register", goja.Undefined())

	return s
}

// HasSetup reports whether the script registered a setup function.
func (s *Sandbox) HasSetup() bool { return s.setupFn != nil }

// HasDraw reports whether the script registered a draw function.
func (s *Sandbox) HasDraw() bool { return s.drawFn != nil }

// CallSetup invokes the script's setup function once. Returns false when
// no function is registered or the call threw.
func (s *Sandbox) CallSetup() bool {
	return s.call(s.setupFn, "setup")
}

// CallDraw invokes the script's draw function for the current frame. A
// throw inside draw is caught and logged; the frame simply contributes no
// new pixels and the loop continues.
func (s *Sandbox) CallDraw() bool {
	return s.call(s.drawFn, "draw")
}

// Global exports a script global by name, or nil when absent. Used for
// diagnostics and tests; scripts own their globals.
func (s *Sandbox) Global(name string) interface{} {
	v := s.vm.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}

// Interrupt aborts any in-flight script execution. Used as a destroy-time
// safety valve, not a per-tick timeout.
func (s *Sandbox) Interrupt() {
	s.vm.Interrupt("renderer destroyed")
}

func (s *Sandbox) call(fn goja.Callable, name string) bool {
	if fn == nil {
		return false
	}
	if _, err := fn(goja.Undefined()); err != nil {
		s.log.Warn("script function threw",
			zap.String("function", name),
			zap.Int("frame", s.ctx.FrameIndex),
			zap.Error(err))
		monitoring.Get().ScriptErrors.WithLabelValues(name).Inc()
		return false
	}
	return true
}

// scrubGlobals removes host-environment escape hatches. Timers become
// no-ops: the loop controller is the only clock scripts get.
func (s *Sandbox) scrubGlobals() {
	s.vm.Set("require", goja.Undefined())
	s.vm.Set("process", goja.Undefined())
	s.vm.Set("module", goja.Undefined())
	s.vm.Set("exports", goja.Undefined())
	s.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	s.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
}

// installConsole routes script console output into the runtime logger.
func (s *Sandbox) installConsole() {
	console := s.vm.NewObject()
	console.Set("log", s.makeConsoleFunc(func(msg string) { s.log.Info(msg, zap.String("source", "script")) }))
	console.Set("info", s.makeConsoleFunc(func(msg string) { s.log.Info(msg, zap.String("source", "script")) }))
	console.Set("warn", s.makeConsoleFunc(func(msg string) { s.log.Warn(msg, zap.String("source", "script")) }))
	console.Set("error", s.makeConsoleFunc(func(msg string) { s.log.Error(msg, zap.String("source", "script")) }))
	s.vm.Set("console", console)
}

func (s *Sandbox) makeConsoleFunc(emit func(string)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}
		emit(msg)
		return goja.Undefined()
	}
}

// installLive defines accessor properties for the time-varying fields.
// Reading any of these from script always hits the RuntimeContext, so tick
// N observes exactly N rather than a value frozen at compile time.
func (s *Sandbox) installLive() {
	global := s.vm.GlobalObject()

	frame := s.vm.ToValue(func() int { return s.ctx.FrameIndex })
	phase := s.vm.ToValue(func() float64 { return s.ctx.Phase() })
	total := s.vm.ToValue(func() int { return s.ctx.TotalFrames })

	// frameIndex plus its script-ergonomics aliases.
	for _, name := range []string{"frameIndex", "frame", "frameCount"} {
		global.DefineAccessorProperty(name, frame, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	for _, name := range []string{"phase", "t", "progress"} {
		global.DefineAccessorProperty(name, phase, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	global.DefineAccessorProperty("totalFrames", total, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
}
