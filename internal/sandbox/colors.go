package sandbox

import (
	"fmt"

	"github.com/dop251/goja"
	"github.com/gogpu/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// parseColor interprets p5-style color arguments:
//
//	fill(128)            gray 0-255
//	fill(128, 200)       gray + alpha
//	fill(r, g, b)        channels 0-255
//	fill(r, g, b, a)     channels + alpha 0-255
//	fill("#ff5733")      hex string
//	fill(c)              value produced by color()/hsb()/lerpColor()
func (s *Sandbox) parseColor(args []goja.Value) gg.RGBA {
	if len(args) == 0 {
		return gg.RGB(0, 0, 0)
	}

	first := args[0]

	if str, ok := first.Export().(string); ok {
		return gg.Hex(str)
	}

	// Object form {r, g, b, a} from the color helpers.
	if m, ok := first.Export().(map[string]interface{}); ok {
		return gg.RGBA2(
			channel(m["r"]),
			channel(m["g"]),
			channel(m["b"]),
			channelDefault(m["a"], 1),
		)
	}

	switch len(args) {
	case 1:
		v := first.ToFloat() / 255
		return gg.RGB(v, v, v)
	case 2:
		v := first.ToFloat() / 255
		return gg.RGBA2(v, v, v, args[1].ToFloat()/255)
	case 3:
		return gg.RGB(
			first.ToFloat()/255,
			args[1].ToFloat()/255,
			args[2].ToFloat()/255,
		)
	default:
		return gg.RGBA2(
			first.ToFloat()/255,
			args[1].ToFloat()/255,
			args[2].ToFloat()/255,
			args[3].ToFloat()/255,
		)
	}
}

// installColors binds the color construction utilities. They all return the
// plain {r, g, b, a} object form that parseColor accepts, with channels in
// [0, 1].
func (s *Sandbox) installColors() {
	s.vm.Set("color", func(call goja.FunctionCall) goja.Value {
		return s.colorObject(s.parseColor(call.Arguments))
	})

	// hsb(h 0-360, s 0-100, b 0-100)
	s.vm.Set("hsb", func(h, sat, bri float64) goja.Value {
		c := colorful.Hsv(h, sat/100, bri/100)
		return s.colorObject(gg.RGB(c.R, c.G, c.B))
	})

	// hsl(h 0-360, s 0-100, l 0-100)
	s.vm.Set("hsl", func(h, sat, lig float64) goja.Value {
		c := colorful.Hsl(h, sat/100, lig/100)
		return s.colorObject(gg.RGB(c.R, c.G, c.B))
	})

	s.vm.Set("lerpColor", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 3 {
			return goja.Undefined()
		}
		a := s.parseColor(call.Arguments[:1])
		b := s.parseColor(call.Arguments[1:2])
		t := call.Arguments[2].ToFloat()
		return s.colorObject(a.Lerp(b, t))
	})

	s.vm.Set("hex", func(call goja.FunctionCall) goja.Value {
		c := s.parseColor(call.Arguments)
		return s.vm.ToValue(fmt.Sprintf("#%02x%02x%02x",
			int(clamp01(c.R)*255+0.5),
			int(clamp01(c.G)*255+0.5),
			int(clamp01(c.B)*255+0.5)))
	})
}

func (s *Sandbox) colorObject(c gg.RGBA) goja.Value {
	obj := s.vm.NewObject()
	obj.Set("r", c.R)
	obj.Set("g", c.G)
	obj.Set("b", c.B)
	obj.Set("a", c.A)
	return obj
}

func channel(v interface{}) float64 {
	return channelDefault(v, 0)
}

func channelDefault(v interface{}, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return clamp01(n)
	case int64:
		return clamp01(float64(n))
	default:
		return def
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
