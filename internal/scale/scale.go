// Package scale computes and applies the resolution-scaling geometry that
// lets oversized sketches render into a capped pixel buffer while script
// math keeps operating on the original semantic dimensions.
package scale

import (
	"math"

	"github.com/sketchkit/preview/internal/surface"
)

// Geometry describes the semantic-to-buffer mapping for one surface.
// Scale is uniform on both axes; aspect ratio is always preserved.
type Geometry struct {
	SemanticWidth  int
	SemanticHeight int
	BufferWidth    int
	BufferHeight   int
	Scale          float64
	WasScaled      bool
}

// Compute derives the render-buffer geometry for a requested semantic size
// under the given maximum-dimension cap. Pure arithmetic, no error path.
func Compute(width, height, maxDimension int) Geometry {
	longest := width
	if height > longest {
		longest = height
	}

	if maxDimension <= 0 || longest <= maxDimension {
		return Geometry{
			SemanticWidth:  width,
			SemanticHeight: height,
			BufferWidth:    width,
			BufferHeight:   height,
			Scale:          1,
			WasScaled:      false,
		}
	}

	factor := float64(maxDimension) / float64(longest)
	return Geometry{
		SemanticWidth:  width,
		SemanticHeight: height,
		BufferWidth:    int(math.Round(float64(width) * factor)),
		BufferHeight:   int(math.Round(float64(height) * factor)),
		Scale:          factor,
		WasScaled:      true,
	}
}

// Apply sets the surface's physical buffer to the buffer dimensions and its
// on-page display size to the semantic dimensions. Must be followed by
// exactly one ReapplyTransform.
func Apply(s *surface.Surface, g Geometry) error {
	if err := s.Resize(g.BufferWidth, g.BufferHeight); err != nil {
		return err
	}
	s.SetDisplaySize(g.SemanticWidth, g.SemanticHeight)
	return nil
}

// ReapplyTransform re-establishes the semantic coordinate system after a
// buffer resize: identity first, then the uniform shrink factor. Without
// this, semantic-coordinate drawing lands in the wrong part of the buffer.
func ReapplyTransform(s *surface.Surface, g Geometry) {
	s.Identity()
	if g.WasScaled {
		s.ScaleBy(g.Scale, g.Scale)
	}
}

// ClearIgnoringTransform wipes the entire physical buffer. A clear issued
// in semantic coordinates under a shrink transform would only cover a
// sub-region and leave stale pixels at the edges.
func ClearIgnoringTransform(s *surface.Surface) {
	s.Clear()
}

// DisplaySize returns the on-page display size for a geometry, which is
// always the semantic size regardless of scaling.
func DisplaySize(g Geometry) (w, h int) {
	return g.SemanticWidth, g.SemanticHeight
}
