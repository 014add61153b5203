package budget

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchkit/preview/internal/types"
)

func TestProceedWithinBudget(t *testing.T) {
	a := New(Config{MaxFrames: 10, MaxTime: time.Minute, Behavior: types.BehaviorStop}, nil)
	a.Start()

	for i := 0; i < 9; i++ {
		assert.Equal(t, Proceed, a.Check())
		a.RecordFrame()
	}
	assert.Equal(t, 9, a.FramesRendered())
	assert.Empty(t, a.ExceededReason())
}

func TestFrameLimitStops(t *testing.T) {
	// maxFrames=5, run 10 ticks: frames frozen at 5, reason frame_limit.
	a := New(Config{MaxFrames: 5, MaxTime: time.Minute, Behavior: types.BehaviorStop}, nil)
	a.Start()

	drawn := 0
	for i := 0; i < 10; i++ {
		if a.Check() == Proceed {
			a.RecordFrame()
			drawn++
		}
	}

	assert.Equal(t, 5, drawn)
	assert.Equal(t, 5, a.FramesRendered())
	assert.Equal(t, types.ReasonFrameLimit, a.ExceededReason())
	assert.False(t, a.Running())
}

func TestTimeLimit(t *testing.T) {
	now := time.Now()
	a := New(Config{MaxFrames: 1000, MaxTime: time.Second, Behavior: types.BehaviorStop}, nil)
	a.SetClock(func() time.Time { return now })
	a.Start()

	assert.Equal(t, Proceed, a.Check())

	now = now.Add(2 * time.Second)
	assert.Equal(t, Halt, a.Check())
	assert.Equal(t, types.ReasonTimeLimit, a.ExceededReason())
}

func TestNotificationFiresExactlyOnce(t *testing.T) {
	// Even when both ceilings are crossed at once and checks repeat.
	now := time.Now()
	fired := 0
	var info types.BudgetInfo

	a := New(Config{
		MaxFrames: 2,
		MaxTime:   time.Second,
		Behavior:  types.BehaviorDegrade,
		Stride:    2,
		OnExceeded: func(i types.BudgetInfo) {
			fired++
			info = i
		},
	}, nil)
	a.SetClock(func() time.Time { return now })
	a.Start()

	a.RecordFrame()
	a.RecordFrame()
	now = now.Add(5 * time.Second)

	for i := 0; i < 20; i++ {
		a.Check()
	}

	assert.Equal(t, 1, fired)
	assert.Equal(t, types.ReasonFrameLimit, info.Reason, "frame limit checked first")
	assert.Equal(t, 2, info.Frames)
}

func TestNotificationResetsPerSession(t *testing.T) {
	fired := 0
	a := New(Config{MaxFrames: 1, MaxTime: time.Minute, Behavior: types.BehaviorStop,
		OnExceeded: func(types.BudgetInfo) { fired++ }}, nil)

	for session := 0; session < 3; session++ {
		a.Start()
		a.RecordFrame()
		a.Check()
		a.Check()
	}

	assert.Equal(t, 3, fired, "one notification per loop session")
}

func TestDegradeSetsStrideAndKeepsRunning(t *testing.T) {
	a := New(Config{MaxFrames: 3, MaxTime: time.Minute, Behavior: types.BehaviorDegrade, Stride: 2}, nil)
	a.Start()

	assert.Equal(t, 1, a.Stride())
	a.RecordFrame()
	a.RecordFrame()
	a.RecordFrame()

	require.Equal(t, Degrade, a.Check())
	assert.Equal(t, 2, a.Stride())
	assert.True(t, a.Running(), "degrade does not halt")
	assert.Equal(t, types.ReasonFrameLimit, a.ExceededReason())
}

func TestInvalidConfigExceedsOnFirstCheck(t *testing.T) {
	// maxFrames <= 0 degenerates to "budget exceeded on tick 1". The
	// arbiter must not throw.
	a := New(Config{MaxFrames: 0, MaxTime: time.Minute, Behavior: types.BehaviorStop}, nil)
	a.Start()

	assert.Equal(t, Halt, a.Check())
	assert.Equal(t, types.ReasonFrameLimit, a.ExceededReason())
	assert.Equal(t, 0, a.FramesRendered())
}

func TestStatsSafeBeforeStartAndAfterStop(t *testing.T) {
	now := time.Now()
	a := New(DefaultConfig(), nil)
	a.SetClock(func() time.Time { return now })

	// Before the first Start.
	assert.Equal(t, time.Duration(0), a.Elapsed())
	assert.Equal(t, 0, a.FramesRendered())
	assert.Equal(t, 1, a.Stride())

	a.Start()
	a.RecordFrame()
	now = now.Add(750 * time.Millisecond)
	a.Stop()

	// Last known values persist after stop.
	assert.Equal(t, 750*time.Millisecond, a.Elapsed())
	assert.Equal(t, 1, a.FramesRendered())
}

func TestStatsReadableDuringSession(t *testing.T) {
	// Stats getters race against the loop goroutine's Check/RecordFrame;
	// every access must go through the arbiter's mutex.
	a := New(Config{MaxFrames: 1 << 20, MaxTime: time.Hour, Behavior: types.BehaviorStop}, nil)
	a.Start()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			a.Check()
			a.RecordFrame()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			_ = a.FramesRendered()
			_ = a.Stride()
			_ = a.Elapsed()
			_ = a.ExceededReason()
			_ = a.Running()
		}
	}()
	wg.Wait()

	assert.Equal(t, 5000, a.FramesRendered())
}

func TestRestartResetsState(t *testing.T) {
	a := New(Config{MaxFrames: 1, MaxTime: time.Minute, Behavior: types.BehaviorDegrade, Stride: 3}, nil)

	a.Start()
	a.RecordFrame()
	a.Check()
	assert.Equal(t, 3, a.Stride())
	assert.NotEmpty(t, a.ExceededReason())

	a.Start()
	assert.Equal(t, 1, a.Stride())
	assert.Empty(t, a.ExceededReason())
	assert.Equal(t, 0, a.FramesRendered())
}
