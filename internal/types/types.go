// Package types holds the data shapes shared across the preview runtime:
// render results, stats snapshots, termination reasons, and the one-way
// handoff record consumed by the canonical engine.
package types

// Reason identifies why a render session ended or was curtailed.
type Reason string

const (
	ReasonFrameLimit Reason = "frame_limit"
	ReasonTimeLimit  Reason = "time_limit"
	ReasonUserStop   Reason = "user_stop"
	ReasonError      Reason = "error"
)

// Mode selects between a single synchronous frame and a scheduled loop.
type Mode string

const (
	ModeStatic Mode = "static"
	ModeLoop   Mode = "loop"
)

// BudgetBehavior selects the response to a crossed budget ceiling.
type BudgetBehavior string

const (
	// BehaviorStop halts the loop; no further draw calls until restart.
	BehaviorStop BudgetBehavior = "stop"
	// BehaviorDegrade keeps the loop alive but draws only every Nth tick.
	BehaviorDegrade BudgetBehavior = "degrade"
)

// RenderResult reports the outcome of a static render or a finished loop.
type RenderResult struct {
	Success         bool    `json:"success"`
	FramesRendered  int     `json:"frames_rendered"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	TerminatedEarly bool    `json:"terminated_early"`
	Reason          Reason  `json:"termination_reason,omitempty"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// StatsSnapshot is a pure read of the renderer's current counters. Safe to
// take at any time, including before the loop starts and after destroy.
type StatsSnapshot struct {
	Scale          float64 `json:"scale"`
	SemanticWidth  int     `json:"semantic_width"`
	SemanticHeight int     `json:"semantic_height"`
	BufferWidth    int     `json:"buffer_width"`
	BufferHeight   int     `json:"buffer_height"`
	Frames         int     `json:"frames"`
	Stride         int     `json:"stride"`
	TotalTimeMs    float64 `json:"total_time_ms"`
	ExceededReason Reason  `json:"exceeded_reason,omitempty"`
}

// HandoffSettings is the settings block of the canonical handoff record.
type HandoffSettings struct {
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	Mode        Mode `json:"mode"`
	TotalFrames int  `json:"totalFrames"`
}

// HandoffRecord is the one-way bridge to the canonical engine. The preview
// runtime only produces this shape; it never expects a response.
type HandoffRecord struct {
	Seed      int64           `json:"seed"`
	VarInputs []float64       `json:"varInputs"`
	Script    string          `json:"script"`
	Settings  HandoffSettings `json:"settings"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
}

// HandoffSource is the fixed source tag stamped on every handoff record.
const HandoffSource = "preview"

// HandoffVersion is the current handoff record schema version.
const HandoffVersion = "1"

// BudgetInfo is passed to the budget-exceeded notification callback.
type BudgetInfo struct {
	Reason    Reason  `json:"reason"`
	Frames    int     `json:"frames"`
	ElapsedMs float64 `json:"elapsed_ms"`
}
