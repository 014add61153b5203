package sandbox

import (
	"math"

	"github.com/dop251/goja"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mathext"
)

// vectorPrelude defines the script-side vector helper. Kept in script form
// so vectors behave like plain JS objects with methods, not host wrappers.
const vectorPrelude = `
function createVector(x, y) {
	return {
		x: x || 0,
		y: y || 0,
		add: function(v) { return createVector(this.x + v.x, this.y + v.y); },
		sub: function(v) { return createVector(this.x - v.x, this.y - v.y); },
		mult: function(s) { return createVector(this.x * s, this.y * s); },
		div: function(s) { return createVector(this.x / s, this.y / s); },
		mag: function() { return Math.sqrt(this.x * this.x + this.y * this.y); },
		normalize: function() {
			var m = this.mag();
			return m === 0 ? createVector(0, 0) : this.div(m);
		},
		dot: function(v) { return this.x * v.x + this.y * v.y; },
		dist: function(v) {
			var dx = this.x - v.x, dy = this.y - v.y;
			return Math.sqrt(dx * dx + dy * dy);
		},
		heading: function() { return Math.atan2(this.y, this.x); },
		rotate: function(a) {
			var c = Math.cos(a), s = Math.sin(a);
			return createVector(this.x * c - this.y * s, this.x * s + this.y * c);
		},
		copy: function() { return createVector(this.x, this.y); }
	};
}
`

// installStatics captures the static member set once per compilation:
// drawing primitives, math and easing helpers, color utilities, constants,
// semantic dimensions, and the input vector.
func (s *Sandbox) installStatics() {
	s.installConstants()
	s.installDrawing()
	s.installMath()
	s.installEasing()
	s.installColors()

	// Semantic dimensions, never the scaled buffer dimensions.
	s.vm.Set("width", s.ctx.Width)
	s.vm.Set("height", s.ctx.Height)

	// The input vector is read-only: a frozen JS array behind a
	// non-writable global, so scripts can neither mutate slots nor shadow
	// later reads.
	vals := make([]interface{}, VarInputCount)
	for i, v := range s.ctx.VarInputs {
		vals[i] = v
	}
	if err := s.vm.GlobalObject().DefineDataProperty("varInputs",
		s.vm.NewArray(vals...), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		s.log.Error("failed to bind input vector", zap.Error(err))
	}
	if _, err := s.vm.RunString("Object.freeze(varInputs);"); err != nil {
		s.log.Error("failed to freeze input vector", zap.Error(err))
	}

	if _, err := s.vm.RunString(vectorPrelude); err != nil {
		s.log.Error("vector prelude failed", zap.Error(err))
	}
}

func (s *Sandbox) installConstants() {
	s.vm.Set("PI", math.Pi)
	s.vm.Set("TWO_PI", 2*math.Pi)
	s.vm.Set("TAU", 2*math.Pi)
	s.vm.Set("HALF_PI", math.Pi/2)
	s.vm.Set("QUARTER_PI", math.Pi/4)

	s.vm.Set("CENTER", "center")
	s.vm.Set("CORNER", "corner")
	s.vm.Set("LEFT", "left")
	s.vm.Set("RIGHT", "right")
	s.vm.Set("TOP", "top")
	s.vm.Set("BOTTOM", "bottom")
	s.vm.Set("CLOSE", "close")
}

func (s *Sandbox) installDrawing() {
	sf := s.ctx.Surface

	s.vm.Set("background", func(call goja.FunctionCall) goja.Value {
		sf.Background(s.parseColor(call.Arguments))
		return goja.Undefined()
	})
	s.vm.Set("fill", func(call goja.FunctionCall) goja.Value {
		sf.SetFill(s.parseColor(call.Arguments))
		return goja.Undefined()
	})
	s.vm.Set("noFill", func(call goja.FunctionCall) goja.Value {
		sf.NoFill()
		return goja.Undefined()
	})
	s.vm.Set("stroke", func(call goja.FunctionCall) goja.Value {
		sf.SetStroke(s.parseColor(call.Arguments))
		return goja.Undefined()
	})
	s.vm.Set("noStroke", func(call goja.FunctionCall) goja.Value {
		sf.NoStroke()
		return goja.Undefined()
	})
	s.vm.Set("strokeWeight", func(w float64) {
		sf.StrokeWeight(w)
	})

	s.vm.Set("circle", func(x, y, d float64) {
		sf.Circle(x, y, d)
	})
	s.vm.Set("ellipse", func(x, y, w, h float64) {
		sf.Ellipse(x, y, w, h)
	})
	s.vm.Set("rect", func(x, y, w, h float64) {
		sf.Rect(x, y, w, h)
	})
	s.vm.Set("square", func(x, y, side float64) {
		sf.Rect(x, y, side, side)
	})
	s.vm.Set("line", func(x1, y1, x2, y2 float64) {
		sf.Line(x1, y1, x2, y2)
	})
	s.vm.Set("triangle", func(x1, y1, x2, y2, x3, y3 float64) {
		sf.Triangle(x1, y1, x2, y2, x3, y3)
	})
	s.vm.Set("quad", func(x1, y1, x2, y2, x3, y3, x4, y4 float64) {
		sf.Quad(x1, y1, x2, y2, x3, y3, x4, y4)
	})
	s.vm.Set("arc", func(x, y, w, h, start, stop float64) {
		sf.EllipticalArc(x, y, w, h, start, stop)
	})
	s.vm.Set("point", func(x, y float64) {
		sf.Point(x, y)
	})

	s.vm.Set("beginShape", func(call goja.FunctionCall) goja.Value {
		sf.BeginShape()
		return goja.Undefined()
	})
	s.vm.Set("vertex", func(x, y float64) {
		sf.Vertex(x, y)
	})
	s.vm.Set("endShape", func(call goja.FunctionCall) goja.Value {
		closePath := len(call.Arguments) > 0 && call.Arguments[0].String() == "close"
		sf.EndShape(closePath)
		return goja.Undefined()
	})

	s.vm.Set("push", func(call goja.FunctionCall) goja.Value {
		sf.Push()
		return goja.Undefined()
	})
	s.vm.Set("pop", func(call goja.FunctionCall) goja.Value {
		sf.Pop()
		return goja.Undefined()
	})
	s.vm.Set("translate", func(x, y float64) {
		sf.Translate(x, y)
	})
	s.vm.Set("rotate", func(a float64) {
		sf.Rotate(a)
	})
	s.vm.Set("scale", func(call goja.FunctionCall) goja.Value {
		switch len(call.Arguments) {
		case 0:
		case 1:
			f := call.Arguments[0].ToFloat()
			sf.ScaleBy(f, f)
		default:
			sf.ScaleBy(call.Arguments[0].ToFloat(), call.Arguments[1].ToFloat())
		}
		return goja.Undefined()
	})

	s.vm.Set("text", func(str string, x, y float64) {
		sf.Text(str, x, y)
	})

	// set(x, y, color): single-pixel noise in semantic coordinates.
	s.vm.Set("set", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 3 {
			return goja.Undefined()
		}
		x := call.Arguments[0].ToFloat()
		y := call.Arguments[1].ToFloat()
		sf.Pixel(x, y, s.parseColor(call.Arguments[2:]))
		return goja.Undefined()
	})
}

func (s *Sandbox) installMath() {
	s.vm.Set("lerp", func(a, b, t float64) float64 {
		return a + (b-a)*t
	})
	s.vm.Set("map", func(v, inMin, inMax, outMin, outMax float64) float64 {
		if inMax == inMin {
			return outMin
		}
		return outMin + (v-inMin)/(inMax-inMin)*(outMax-outMin)
	})
	s.vm.Set("constrain", func(v, lo, hi float64) float64 {
		return math.Min(math.Max(v, lo), hi)
	})
	s.vm.Set("dist", func(x1, y1, x2, y2 float64) float64 {
		return math.Hypot(x2-x1, y2-y1)
	})
	s.vm.Set("mag", func(x, y float64) float64 {
		return math.Hypot(x, y)
	})
	s.vm.Set("norm", func(v, lo, hi float64) float64 {
		if hi == lo {
			return 0
		}
		return (v - lo) / (hi - lo)
	})
	s.vm.Set("radians", func(deg float64) float64 { return deg * math.Pi / 180 })
	s.vm.Set("degrees", func(rad float64) float64 { return rad * 180 / math.Pi })

	s.vm.Set("abs", math.Abs)
	s.vm.Set("floor", math.Floor)
	s.vm.Set("ceil", math.Ceil)
	s.vm.Set("round", math.Round)
	s.vm.Set("sqrt", math.Sqrt)
	s.vm.Set("pow", math.Pow)
	s.vm.Set("min", math.Min)
	s.vm.Set("max", math.Max)
	s.vm.Set("sin", math.Sin)
	s.vm.Set("cos", math.Cos)
	s.vm.Set("tan", math.Tan)
	s.vm.Set("atan2", math.Atan2)
	s.vm.Set("exp", math.Exp)
	s.vm.Set("log", math.Log)

	s.vm.Set("gamma", math.Gamma)
	s.vm.Set("lgamma", func(x float64) float64 {
		v, _ := math.Lgamma(x)
		return v
	})
	s.vm.Set("erf", math.Erf)
	s.vm.Set("erfc", math.Erfc)
	s.vm.Set("beta", mathext.Beta)

	// random() / random(max) / random(min, max), all from the seeded source.
	s.vm.Set("random", func(call goja.FunctionCall) goja.Value {
		v := s.ctx.Random()
		switch len(call.Arguments) {
		case 0:
			return s.vm.ToValue(v)
		case 1:
			return s.vm.ToValue(v * call.Arguments[0].ToFloat())
		default:
			lo := call.Arguments[0].ToFloat()
			hi := call.Arguments[1].ToFloat()
			return s.vm.ToValue(lo + v*(hi-lo))
		}
	})
	s.vm.Set("randomSeed", func(seed int64) {
		s.ctx.Reseed(seed)
	})

	noise := newNoiseField(s.ctx.Seed)
	s.vm.Set("noise", func(call goja.FunctionCall) goja.Value {
		var x, y float64
		if len(call.Arguments) > 0 {
			x = call.Arguments[0].ToFloat()
		}
		if len(call.Arguments) > 1 {
			y = call.Arguments[1].ToFloat()
		}
		return s.vm.ToValue(noise.At(x, y))
	})
	s.vm.Set("noiseSeed", func(seed int64) {
		noise.Reseed(seed)
	})
}

// installEasing binds the gween curve set, normalized to f(t) over [0,1].
func (s *Sandbox) installEasing() {
	curves := map[string]ease.TweenFunc{
		"easeLinear":       ease.Linear,
		"easeInQuad":       ease.InQuad,
		"easeOutQuad":      ease.OutQuad,
		"easeInOutQuad":    ease.InOutQuad,
		"easeInCubic":      ease.InCubic,
		"easeOutCubic":     ease.OutCubic,
		"easeInOutCubic":   ease.InOutCubic,
		"easeInQuart":      ease.InQuart,
		"easeOutQuart":     ease.OutQuart,
		"easeInOutQuart":   ease.InOutQuart,
		"easeInQuint":      ease.InQuint,
		"easeOutQuint":     ease.OutQuint,
		"easeInOutQuint":   ease.InOutQuint,
		"easeInSine":       ease.InSine,
		"easeOutSine":      ease.OutSine,
		"easeInOutSine":    ease.InOutSine,
		"easeInExpo":       ease.InExpo,
		"easeOutExpo":      ease.OutExpo,
		"easeInOutExpo":    ease.InOutExpo,
		"easeInCirc":       ease.InCirc,
		"easeOutCirc":      ease.OutCirc,
		"easeInOutCirc":    ease.InOutCirc,
		"easeInBack":       ease.InBack,
		"easeOutBack":      ease.OutBack,
		"easeInOutBack":    ease.InOutBack,
		"easeInElastic":    ease.InElastic,
		"easeOutElastic":   ease.OutElastic,
		"easeInOutElastic": ease.InOutElastic,
		"easeInBounce":     ease.InBounce,
		"easeOutBounce":    ease.OutBounce,
		"easeInOutBounce":  ease.InOutBounce,
	}
	for name, fn := range curves {
		curve := fn
		s.vm.Set(name, func(t float64) float64 {
			return float64(curve(float32(t), 0, 1, 1))
		})
	}
}
