package sandbox

import (
	"fmt"
	"math/rand"

	"github.com/sketchkit/preview/internal/surface"
)

// VarInputCount is the fixed length of the script-visible input vector.
const VarInputCount = 10

// DefaultTotalFrames is the loop length scripts see unless overridden.
const DefaultTotalFrames = 120

// RuntimeContext is the live object scripts execute against. The static
// members derived from it are captured once at compile time; the
// time-varying fields are mutated externally by the loop controller and
// read fresh on every script access, never by the script itself.
type RuntimeContext struct {
	Surface *surface.Surface

	// Semantic dimensions: always the caller's requested size, never the
	// scaled buffer size. Script math like width/2 depends on this.
	Width  int
	Height int

	Seed        int64
	VarInputs   [VarInputCount]float64
	TotalFrames int

	// FrameIndex is monotonic, starts at 0, incremented once per executed
	// draw tick by the loop controller.
	FrameIndex int

	rng *rand.Rand
}

// NewRuntimeContext builds the context for one compilation. varInputs may
// hold fewer than VarInputCount values; missing slots are zero. Values are
// clamped to [0, 100]. A non-positive totalFrames is a configuration
// error: it would make the phase calculation divide by zero.
func NewRuntimeContext(s *surface.Surface, width, height int, seed int64, varInputs []float64, totalFrames int) (*RuntimeContext, error) {
	if totalFrames <= 0 {
		return nil, fmt.Errorf("totalFrames must be positive, got %d", totalFrames)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	ctx := &RuntimeContext{
		Surface:     s,
		Width:       width,
		Height:      height,
		Seed:        seed,
		TotalFrames: totalFrames,
		rng:         rand.New(rand.NewSource(seed)),
	}

	for i, v := range varInputs {
		if i >= VarInputCount {
			break
		}
		if v < 0 {
			v = 0
		} else if v > 100 {
			v = 100
		}
		ctx.VarInputs[i] = v
	}

	return ctx, nil
}

// Phase returns the normalized [0,1) loop progress for the current frame.
func (c *RuntimeContext) Phase() float64 {
	return float64(c.FrameIndex%c.TotalFrames) / float64(c.TotalFrames)
}

// SetFrame updates the frame index. Only the loop controller calls this.
func (c *RuntimeContext) SetFrame(n int) {
	c.FrameIndex = n
}

// Random returns the next value from the seeded source.
func (c *RuntimeContext) Random() float64 {
	return c.rng.Float64()
}

// Reseed resets the random source, used by the script's randomSeed().
func (c *RuntimeContext) Reseed(seed int64) {
	c.rng = rand.New(rand.NewSource(seed))
}
