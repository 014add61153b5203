package surface

import (
	"bytes"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatchesBufferAndDisplay(t *testing.T) {
	s := New(640, 480)

	assert.Equal(t, 640, s.BufferWidth())
	assert.Equal(t, 480, s.BufferHeight())
	assert.Equal(t, 640, s.DisplayWidth())
	assert.Equal(t, 480, s.DisplayHeight())
	assert.NotEmpty(t, s.ID())
}

func TestResizeKeepsDisplaySize(t *testing.T) {
	s := New(2000, 1000)
	require.NoError(t, s.Resize(1000, 500))

	assert.Equal(t, 1000, s.BufferWidth())
	assert.Equal(t, 500, s.BufferHeight())
	assert.Equal(t, 2000, s.DisplayWidth())
	assert.Equal(t, 1000, s.DisplayHeight())
}

func TestBackgroundIgnoresTransform(t *testing.T) {
	s := New(100, 100)
	s.ScaleBy(0.1, 0.1)
	s.Background(gg.RGB(0, 0, 1))

	// Under the shrink transform a transform-aware fill would only touch
	// the top-left 10x10 region.
	px := s.PixelAt(95, 95)
	assert.Greater(t, px.B, 0.9)
	assert.Equal(t, 1, s.PaintCalls())
}

func TestFilledCircleSetsPixels(t *testing.T) {
	s := New(100, 100)
	s.Background(gg.RGB(1, 1, 1))
	s.SetFill(gg.RGB(1, 0, 0))
	s.NoStroke()
	s.Circle(50, 50, 40)

	center := s.PixelAt(50, 50)
	assert.Greater(t, center.R, 0.9)
	assert.Less(t, center.G, 0.1)

	outside := s.PixelAt(5, 5)
	assert.Greater(t, outside.G, 0.9, "outside the circle stays white")
}

func TestPaintCallCounting(t *testing.T) {
	s := New(100, 100)
	assert.Equal(t, 0, s.PaintCalls())

	s.Background(gg.RGB(0, 0, 0))
	s.SetFill(gg.RGB(1, 0, 0))
	s.Rect(10, 10, 20, 20)
	s.Line(0, 0, 50, 50)
	s.Point(30, 30)
	assert.Equal(t, 4, s.PaintCalls())

	s.ResetPaintCalls()
	assert.Equal(t, 0, s.PaintCalls())

	// Neither fill nor stroke enabled: the shape paints nothing.
	s.NoFill()
	s.NoStroke()
	s.Circle(50, 50, 10)
	assert.Equal(t, 0, s.PaintCalls())
}

func TestVertexShape(t *testing.T) {
	s := New(100, 100)
	s.Background(gg.RGB(1, 1, 1))
	s.SetFill(gg.RGB(0, 0, 1))
	s.NoStroke()

	s.BeginShape()
	s.Vertex(10, 10)
	s.Vertex(90, 10)
	s.Vertex(90, 90)
	s.Vertex(10, 90)
	s.EndShape(true)

	inside := s.PixelAt(50, 50)
	assert.Greater(t, inside.B, 0.9)
}

func TestTriangleAndQuad(t *testing.T) {
	s := New(100, 100)
	s.Background(gg.RGB(1, 1, 1))
	s.SetFill(gg.RGB(0, 0, 0))
	s.NoStroke()

	s.Triangle(10, 90, 50, 10, 90, 90)
	px := s.PixelAt(50, 60)
	assert.Less(t, px.R, 0.1, "triangle interior painted")

	s.Quad(0, 0, 20, 0, 20, 20, 0, 20)
	px = s.PixelAt(10, 10)
	assert.Less(t, px.R, 0.1, "quad interior painted")
}

func TestPixelMapsThroughTransform(t *testing.T) {
	s := New(100, 100)
	s.ScaleBy(0.5, 0.5)
	s.Pixel(80, 80, gg.RGB(0, 1, 0))

	// Semantic (80, 80) lands at buffer (40, 40).
	px := s.PixelAt(40, 40)
	assert.Greater(t, px.G, 0.9)
}

func TestPushPopRestoresTransform(t *testing.T) {
	s := New(100, 100)
	s.Push()
	s.Translate(50, 50)
	s.Pop()

	s.Pixel(10, 10, gg.RGB(1, 0, 0))
	px := s.PixelAt(10, 10)
	assert.Greater(t, px.R, 0.9, "transform restored to identity")
}

func TestTextWithoutFontIsNoop(t *testing.T) {
	s := New(100, 100)
	s.Text("hello", 10, 10)
	assert.Equal(t, 0, s.PaintCalls())
}

func TestEncodePNG(t *testing.T) {
	s := New(16, 16)
	s.Background(gg.RGB(1, 0, 1))

	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, buf.Bytes()[:4])
}
