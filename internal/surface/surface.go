// Package surface adapts the gg software canvas to the preview runtime.
// A Surface owns the physical pixel buffer plus the semantic display size,
// and exposes the p5-style primitive set the script sandbox binds to.
//
// Paint state (fill/stroke colors, stroke weight) and the transform stack
// persist across calls within a frame; everything else is stateless.
package surface

import (
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/google/uuid"
)

// Surface wraps a gg drawing context with semantic-size bookkeeping.
type Surface struct {
	dc *gg.Context
	id string

	// Display (semantic) size as seen by the viewer and by script math.
	displayW int
	displayH int

	fillColor   gg.RGBA
	strokeColor gg.RGBA
	doFill      bool
	doStroke    bool

	shapeOpen bool

	// paintCalls counts operations that mutated pixels this frame.
	paintCalls int
}

// New creates a surface whose buffer and display size both match w x h.
// The resolution scaler may later shrink the buffer while the display
// size stays put.
func New(w, h int) *Surface {
	return &Surface{
		dc:          gg.NewContext(w, h),
		id:          uuid.NewString(),
		displayW:    w,
		displayH:    h,
		fillColor:   gg.RGB(1, 1, 1),
		strokeColor: gg.RGB(0, 0, 0),
		doFill:      true,
		doStroke:    false,
	}
}

// ID returns the surface identity used by the active-renderer registry.
func (s *Surface) ID() string { return s.id }

// Context exposes the underlying gg context. The resolution scaler uses it
// for buffer resizes and transform resets; scripts never see it.
func (s *Surface) Context() *gg.Context { return s.dc }

// BufferWidth returns the physical buffer width in pixels.
func (s *Surface) BufferWidth() int { return s.dc.Width() }

// BufferHeight returns the physical buffer height in pixels.
func (s *Surface) BufferHeight() int { return s.dc.Height() }

// DisplayWidth returns the semantic on-page width.
func (s *Surface) DisplayWidth() int { return s.displayW }

// DisplayHeight returns the semantic on-page height.
func (s *Surface) DisplayHeight() int { return s.displayH }

// SetDisplaySize records the semantic size shown to the viewer.
func (s *Surface) SetDisplaySize(w, h int) {
	s.displayW = w
	s.displayH = h
}

// Resize reallocates the physical buffer. The coordinate transform must be
// re-established by the caller afterwards; see the scale package.
func (s *Surface) Resize(w, h int) error {
	return s.dc.Resize(w, h)
}

// PaintCalls reports how many pixel-mutating operations ran since the last
// ResetPaintCalls. The renderer uses it for the zero-output guard.
func (s *Surface) PaintCalls() int { return s.paintCalls }

// ResetPaintCalls zeroes the paint counter. Called before each frame.
func (s *Surface) ResetPaintCalls() { s.paintCalls = 0 }

// --- paint state ---

// SetFill enables filling with the given color.
func (s *Surface) SetFill(c gg.RGBA) {
	s.fillColor = c
	s.doFill = true
}

// NoFill disables filling.
func (s *Surface) NoFill() { s.doFill = false }

// SetStroke enables stroking with the given color.
func (s *Surface) SetStroke(c gg.RGBA) {
	s.strokeColor = c
	s.doStroke = true
}

// NoStroke disables stroking.
func (s *Surface) NoStroke() { s.doStroke = false }

// StrokeWeight sets the stroke line width in semantic units.
func (s *Surface) StrokeWeight(w float64) { s.dc.SetLineWidth(w) }

// --- transforms ---

// Push saves the current transform and paint state.
func (s *Surface) Push() { s.dc.Push() }

// Pop restores the most recently pushed state.
func (s *Surface) Pop() { s.dc.Pop() }

// Translate moves the origin by (x, y) semantic units.
func (s *Surface) Translate(x, y float64) { s.dc.Translate(x, y) }

// Rotate rotates subsequent drawing by angle radians.
func (s *Surface) Rotate(angle float64) { s.dc.Rotate(angle) }

// ScaleBy scales subsequent drawing.
func (s *Surface) ScaleBy(x, y float64) { s.dc.Scale(x, y) }

// Identity resets the transform to the identity matrix.
func (s *Surface) Identity() { s.dc.Identity() }

// --- primitives ---

// Background fills the entire physical buffer, ignoring the transform.
func (s *Surface) Background(c gg.RGBA) {
	s.dc.ClearWithColor(c)
	s.paintCalls++
}

// Clear wipes the buffer to transparent, ignoring the transform.
func (s *Surface) Clear() {
	s.dc.Clear()
}

// Circle draws a circle with center (x, y) and diameter d.
func (s *Surface) Circle(x, y, d float64) {
	s.dc.DrawCircle(x, y, d/2)
	s.finishShape()
}

// Ellipse draws an ellipse centered at (x, y) with diameters w and h.
func (s *Surface) Ellipse(x, y, w, h float64) {
	s.dc.DrawEllipse(x, y, w/2, h/2)
	s.finishShape()
}

// Rect draws a rectangle with top-left corner (x, y).
func (s *Surface) Rect(x, y, w, h float64) {
	s.dc.DrawRectangle(x, y, w, h)
	s.finishShape()
}

// RoundedRect draws a rectangle with rounded corners of radius r.
func (s *Surface) RoundedRect(x, y, w, h, r float64) {
	s.dc.DrawRoundedRectangle(x, y, w, h, r)
	s.finishShape()
}

// Line draws a stroked segment regardless of the noStroke flag; an
// invisible line is never what a script means.
func (s *Surface) Line(x1, y1, x2, y2 float64) {
	s.dc.SetColor(s.strokeColor.Color())
	s.dc.DrawLine(x1, y1, x2, y2)
	if err := s.dc.Stroke(); err == nil {
		s.paintCalls++
	}
	s.dc.ClearPath()
}

// Triangle draws a triangle through three points.
func (s *Surface) Triangle(x1, y1, x2, y2, x3, y3 float64) {
	s.dc.MoveTo(x1, y1)
	s.dc.LineTo(x2, y2)
	s.dc.LineTo(x3, y3)
	s.dc.ClosePath()
	s.finishShape()
}

// Quad draws a quadrilateral through four points.
func (s *Surface) Quad(x1, y1, x2, y2, x3, y3, x4, y4 float64) {
	s.dc.MoveTo(x1, y1)
	s.dc.LineTo(x2, y2)
	s.dc.LineTo(x3, y3)
	s.dc.LineTo(x4, y4)
	s.dc.ClosePath()
	s.finishShape()
}

// Arc draws a circular arc centered at (x, y) with diameter d between
// angles a1 and a2 (radians).
func (s *Surface) Arc(x, y, d, a1, a2 float64) {
	s.dc.DrawArc(x, y, d/2, a1, a2)
	s.finishShape()
}

// EllipticalArc draws an arc of the ellipse centered at (x, y) with
// diameters w and h between angles a1 and a2 (radians).
func (s *Surface) EllipticalArc(x, y, w, h, a1, a2 float64) {
	s.dc.DrawEllipticalArc(x, y, w/2, h/2, a1, a2)
	s.finishShape()
}

// Point draws a dot one stroke-weight wide.
func (s *Surface) Point(x, y float64) {
	s.dc.SetColor(s.strokeColor.Color())
	s.dc.DrawPoint(x, y, math.Max(s.lineWidth()/2, 0.5))
	if err := s.dc.Fill(); err == nil {
		s.paintCalls++
	}
	s.dc.ClearPath()
}

// BeginShape starts an explicit vertex path.
func (s *Surface) BeginShape() {
	s.dc.ClearPath()
	s.shapeOpen = false
}

// Vertex appends a point to the open shape path.
func (s *Surface) Vertex(x, y float64) {
	if !s.shapeOpen {
		s.dc.MoveTo(x, y)
		s.shapeOpen = true
		return
	}
	s.dc.LineTo(x, y)
}

// EndShape closes (optionally) and paints the open path.
func (s *Surface) EndShape(closePath bool) {
	if closePath {
		s.dc.ClosePath()
	}
	s.shapeOpen = false
	s.finishShape()
}

// Text draws a string at (x, y). Requires a font face to have been loaded
// on the context; without one this is a no-op.
func (s *Surface) Text(str string, x, y float64) {
	if s.dc.Font() == nil {
		return
	}
	s.dc.SetColor(s.fillColor.Color())
	s.dc.DrawString(str, x, y)
	s.paintCalls++
}

// LoadFont loads a TTF font face for subsequent Text calls.
func (s *Surface) LoadFont(path string, points float64) error {
	return s.dc.LoadFontFace(path, points)
}

// Pixel sets a single pixel given in semantic coordinates; the active
// transform maps it into the buffer.
func (s *Surface) Pixel(x, y float64, c gg.RGBA) {
	bx, by := s.dc.TransformPoint(x, y)
	s.dc.SetPixel(int(bx), int(by), c)
	s.paintCalls++
}

// --- snapshot / sampling ---

// Image returns the current buffer contents.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// PixelAt samples the physical buffer at buffer coordinates.
func (s *Surface) PixelAt(x, y int) gg.RGBA {
	return s.dc.ResizeTarget().GetPixel(x, y)
}

// EncodePNG writes the buffer as PNG.
func (s *Surface) EncodePNG(w io.Writer) error { return s.dc.EncodePNG(w) }

// SavePNG writes the buffer to a PNG file.
func (s *Surface) SavePNG(path string) error { return s.dc.SavePNG(path) }

// finishShape paints the pending path with the current fill/stroke state
// and clears it.
func (s *Surface) finishShape() {
	painted := false
	if s.doFill {
		s.dc.SetColor(s.fillColor.Color())
		if err := s.dc.FillPreserve(); err == nil {
			painted = true
		}
	}
	if s.doStroke {
		s.dc.SetColor(s.strokeColor.Color())
		if err := s.dc.StrokePreserve(); err == nil {
			painted = true
		}
	}
	if painted {
		s.paintCalls++
	}
	s.dc.ClearPath()
}

func (s *Surface) lineWidth() float64 {
	return s.dc.GetStroke().Width
}
