package renderer

import (
	"github.com/bytedance/sonic"

	"github.com/sketchkit/preview/internal/sandbox"
	"github.com/sketchkit/preview/internal/types"
)

// Handoff builds the one-way record the canonical engine consumes. The
// preview runtime only produces this shape; nothing comes back.
func (r *Renderer) Handoff() types.HandoffRecord {
	inputs := make([]float64, sandbox.VarInputCount)
	copy(inputs, r.ctx.VarInputs[:])

	return types.HandoffRecord{
		Seed:      r.opts.Seed,
		VarInputs: inputs,
		Script:    r.opts.Script,
		Settings: types.HandoffSettings{
			Width:       r.geom.SemanticWidth,
			Height:      r.geom.SemanticHeight,
			Mode:        r.opts.Mode,
			TotalFrames: r.ctx.TotalFrames,
		},
		Source:  types.HandoffSource,
		Version: types.HandoffVersion,
	}
}

// EncodeHandoff serializes the handoff record as JSON.
func (r *Renderer) EncodeHandoff() ([]byte, error) {
	return sonic.Marshal(r.Handoff())
}

// EncodeStats serializes the current stats snapshot as JSON.
func (r *Renderer) EncodeStats() ([]byte, error) {
	return sonic.Marshal(r.Stats())
}
