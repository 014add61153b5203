package renderer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchkit/preview/internal/loop"
	"github.com/sketchkit/preview/internal/types"
)

func TestRenderStaticPaintsCircleAtSemanticCenter(t *testing.T) {
	// Script math targets semantic (975, 1200); with a 900 cap the pixels
	// must land at the scaled buffer coordinate.
	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script: `function draw() {
			background(255);
			noStroke();
			fill(255, 0, 0);
			circle(width / 2, height / 2, 100);
		}`,
		Mode:         types.ModeStatic,
		Width:        1950,
		Height:       2400,
		MaxDimension: 900,
	})
	require.NoError(t, err)
	defer r.Destroy()

	result, err := r.RenderStatic()
	require.NoError(t, err)
	require.True(t, result.Success, "error: %s", result.ErrorMessage)
	assert.Equal(t, 1, result.FramesRendered)

	sf := r.Surface()
	assert.Equal(t, 731, sf.BufferWidth())
	assert.Equal(t, 900, sf.BufferHeight())

	scaleFactor := r.ScaleFactor()
	cx := int(math.Round(975 * scaleFactor))
	cy := int(math.Round(1200 * scaleFactor))

	center := sf.PixelAt(cx, cy)
	assert.Greater(t, center.R, 0.9, "circle center should be red")
	assert.Less(t, center.G, 0.1)

	corner := sf.PixelAt(5, 5)
	assert.Greater(t, corner.R, 0.9, "background should be white")
	assert.Greater(t, corner.G, 0.9)
}

func TestSemanticStability(t *testing.T) {
	// Script-visible dimensions never equal the buffer dimensions when
	// scaling occurred.
	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script:       `function draw() { background(0); }`,
		Width:        1950,
		Height:       2400,
		MaxDimension: 900,
	})
	require.NoError(t, err)
	defer r.Destroy()

	stats := r.Stats()
	assert.Equal(t, 1950, stats.SemanticWidth)
	assert.Equal(t, 2400, stats.SemanticHeight)
	assert.NotEqual(t, stats.SemanticWidth, stats.BufferWidth)
	assert.NotEqual(t, stats.SemanticHeight, stats.BufferHeight)
	assert.InDelta(t, 0.375, stats.Scale, 0.001)
}

func TestLoopStopFreezesAtFrameLimit(t *testing.T) {
	sched := loop.NewManualScheduler()
	exceeded := 0

	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script:           `function draw() { background(0); }`,
		Mode:             types.ModeLoop,
		Width:            200,
		Height:           200,
		MaxFrames:        5,
		BudgetBehavior:   types.BehaviorStop,
		Scheduler:        sched,
		OnBudgetExceeded: func(types.BudgetInfo) { exceeded++ },
	})
	require.NoError(t, err)
	defer r.Destroy()

	require.NoError(t, r.StartLoop())
	for i := 0; i < 10 && sched.Step(); i++ {
	}

	stats := r.Stats()
	assert.Equal(t, 5, stats.Frames, "frames frozen at the ceiling")
	assert.Equal(t, types.ReasonFrameLimit, stats.ExceededReason)
	assert.Equal(t, 1, exceeded)
	assert.False(t, r.IsRendering())
}

func TestLoopDegradeHalvesDrawRate(t *testing.T) {
	sched := loop.NewManualScheduler()

	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script: `
			var drawn = 0;
			function draw() { drawn++; background(drawn % 255); }
		`,
		Mode:           types.ModeLoop,
		Width:          100,
		Height:         100,
		MaxFrames:      4,
		BudgetBehavior: types.BehaviorDegrade,
		Scheduler:      sched,
	})
	require.NoError(t, err)
	defer r.Destroy()

	require.NoError(t, r.StartLoop())
	for i := 0; i < 24; i++ {
		require.True(t, sched.Step())
	}

	stats := r.Stats()
	assert.Equal(t, 2, stats.Stride)
	assert.Equal(t, types.ReasonFrameLimit, stats.ExceededReason)
	assert.True(t, r.IsRendering(), "degrade keeps the loop alive")

	// 4 normal draws, then half of the remaining 20 ticks.
	assert.Equal(t, 14, stats.Frames)
}

func TestRestartResetsBudget(t *testing.T) {
	sched := loop.NewManualScheduler()
	exceeded := 0

	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script:           `function draw() { background(0); }`,
		Mode:             types.ModeLoop,
		Width:            100,
		Height:           100,
		MaxFrames:        3,
		BudgetBehavior:   types.BehaviorStop,
		Scheduler:        sched,
		OnBudgetExceeded: func(types.BudgetInfo) { exceeded++ },
	})
	require.NoError(t, err)
	defer r.Destroy()

	require.NoError(t, r.StartLoop())
	for sched.Step() {
	}
	assert.Equal(t, 1, exceeded)

	// Restart: full budget reset, notification can fire again.
	require.NoError(t, r.StartLoop())
	for sched.Step() {
	}
	assert.Equal(t, 2, exceeded)
}

func TestStopLoopReportsUserStop(t *testing.T) {
	sched := loop.NewManualScheduler()

	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script:    `function draw() { background(0); }`,
		Mode:      types.ModeLoop,
		Width:     100,
		Height:    100,
		Scheduler: sched,
	})
	require.NoError(t, err)
	defer r.Destroy()

	require.NoError(t, r.StartLoop())
	for i := 0; i < 3; i++ {
		require.True(t, sched.Step())
	}

	result := r.StopLoop()
	assert.True(t, result.Success)
	assert.True(t, result.TerminatedEarly)
	assert.Equal(t, types.ReasonUserStop, result.Reason)
	assert.Equal(t, 3, result.FramesRendered)
	assert.False(t, r.IsRendering())

	// Stopping an already-stopped loop reports no user stop.
	again := r.StopLoop()
	assert.False(t, again.TerminatedEarly)
	assert.NotEqual(t, types.ReasonUserStop, again.Reason)
}

func TestCompileFailureYieldsBlankResult(t *testing.T) {
	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script: `function draw( {`,
		Width:  100,
		Height: 100,
	})
	require.NoError(t, err, "compile failures must not fail construction")
	defer r.Destroy()

	result, err := r.RenderStatic()
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.ReasonError, result.Reason)
	assert.Equal(t, 0, result.FramesRendered)
}

func TestZeroOutputGuard(t *testing.T) {
	// A registered draw that paints nothing points at a broken compile
	// pipeline upstream; this is the one error-surfacing path.
	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script: `function draw() { var x = 1 + 1; }`,
		Width:  100,
		Height: 100,
	})
	require.NoError(t, err)
	defer r.Destroy()

	result, err := r.RenderStatic()
	assert.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.ReasonError, result.Reason)
}

func TestRejectsInvalidConstruction(t *testing.T) {
	cases := []Options{
		{Script: "function draw(){}", Width: 0, Height: 100},
		{Script: "function draw(){}", Width: 100, Height: -5},
		{Script: "function draw(){}", Width: 100, Height: 100, TotalFrames: -1},
	}
	for i, opts := range cases {
		if _, err := NewWithRegistry(NewRegistry(), nil, opts); err == nil {
			t.Errorf("case %d: construction should fail", i)
		}
	}
}

func TestStatsSafeBeforeLoopAndAfterDestroy(t *testing.T) {
	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script: `function draw() { background(0); }`,
		Width:  300,
		Height: 300,
	})
	require.NoError(t, err)

	before := r.Stats()
	assert.Equal(t, 0, before.Frames)
	assert.Equal(t, float64(0), before.TotalTimeMs)
	assert.Equal(t, 1.0, before.Scale)

	_, err = r.RenderStatic()
	require.NoError(t, err)
	r.Destroy()

	after := r.Stats()
	assert.Equal(t, 1, after.Frames, "last known values persist")
	assert.Equal(t, 300, after.SemanticWidth)
}

func TestHandoffRecord(t *testing.T) {
	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script:      `function draw() { background(0); }`,
		Mode:        types.ModeLoop,
		Width:       1950,
		Height:      2400,
		Seed:        99,
		VarInputs:   []float64{10, 20},
		TotalFrames: 240,
	})
	require.NoError(t, err)
	defer r.Destroy()

	rec := r.Handoff()
	assert.Equal(t, int64(99), rec.Seed)
	assert.Len(t, rec.VarInputs, 10)
	assert.Equal(t, 10.0, rec.VarInputs[0])
	assert.Equal(t, 0.0, rec.VarInputs[9])
	assert.Equal(t, 1950, rec.Settings.Width)
	assert.Equal(t, types.ModeLoop, rec.Settings.Mode)
	assert.Equal(t, 240, rec.Settings.TotalFrames)
	assert.Equal(t, "preview", rec.Source)

	data, err := r.EncodeHandoff()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source":"preview"`)
}

func TestDestroyedRendererRefusesWork(t *testing.T) {
	r, err := NewWithRegistry(NewRegistry(), nil, Options{
		Script: `function draw() { background(0); }`,
		Width:  100,
		Height: 100,
	})
	require.NoError(t, err)

	r.Destroy()
	r.Destroy() // idempotent

	assert.Error(t, r.StartLoop())
	result, _ := r.RenderStatic()
	assert.False(t, result.Success)
}
