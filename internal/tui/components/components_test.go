package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/pinmap/internal/engine/sheet"
	"github.com/rendis/pinmap/internal/notify"
)

func tick(l *FrameLoop) bool {
	return l.Handle(FrameMsg{Loop: l.id})
}

func TestFrameLoopArmsOnlyWhenQueued(t *testing.T) {
	l := NewFrameLoop(60)
	assert.Nil(t, l.Cmd())

	ran := 0
	l.RequestFrame(func() { ran++ })
	require.NotNil(t, l.Cmd())
	assert.Nil(t, l.Cmd(), "one tick in flight")

	assert.True(t, tick(l))
	assert.Equal(t, 1, ran)
	assert.Nil(t, l.Cmd())
}

func TestFrameLoopRequeueRunsNextFrame(t *testing.T) {
	l := NewFrameLoop(60)
	frames := 0
	var again func()
	again = func() {
		frames++
		if frames < 3 {
			l.RequestFrame(again)
		}
	}
	l.RequestFrame(again)

	for range 5 {
		l.Cmd()
		tick(l)
	}
	assert.Equal(t, 3, frames)
	assert.Zero(t, l.Pending())
}

func TestFrameLoopCancelAndStop(t *testing.T) {
	l := NewFrameLoop(60)
	ran := 0
	id := l.RequestFrame(func() { ran++ })
	l.CancelFrame(id)
	tick(l)
	assert.Zero(t, ran)

	l.RequestFrame(func() { ran++ })
	l.Stop()
	assert.Nil(t, l.Cmd())
	tick(l)
	l.RequestFrame(func() { ran++ })
	tick(l)
	assert.Zero(t, ran)
}

func TestFrameLoopIgnoresForeignTicks(t *testing.T) {
	a, b := NewFrameLoop(60), NewFrameLoop(60)
	ran := 0
	a.RequestFrame(func() { ran++ })
	assert.False(t, a.Handle(FrameMsg{Loop: b.id}))
	assert.Zero(t, ran)
}

func runUntilIdle(t *testing.T, l *FrameLoop) int {
	t.Helper()
	n := 0
	for l.Pending() > 0 {
		tick(l)
		n++
		require.Less(t, n, 1000, "animation did not settle")
	}
	return n
}

func TestSheetVisualSpringSettles(t *testing.T) {
	l := NewFrameLoop(60)
	v := NewSheetVisual(l, 60)
	v.SetTransition(true)

	done := 0
	v.AnimateTo(480, func() { done++ })
	assert.True(t, v.Animating())

	frames := runUntilIdle(t, l)
	assert.Greater(t, frames, 1)
	assert.Equal(t, 1, done)
	assert.Equal(t, 480.0, v.Offset())
	assert.False(t, v.Animating())
}

func TestSheetVisualNoTransitionJumps(t *testing.T) {
	l := NewFrameLoop(60)
	v := NewSheetVisual(l, 60)
	done := 0
	v.AnimateTo(200, func() { done++ })
	assert.Equal(t, 1, done)
	assert.Equal(t, 200.0, v.Offset())
	assert.Zero(t, l.Pending())
}

func TestSheetVisualCancel(t *testing.T) {
	l := NewFrameLoop(60)
	v := NewSheetVisual(l, 60)
	v.SetTransition(true)

	done := 0
	cancel := v.AnimateTo(400, func() { done++ })
	tick(l)
	cancel()
	runUntilIdle(t, l)
	assert.Zero(t, done)
	assert.Less(t, v.Offset(), 400.0)

	// ApplyOffset during an animation also stops it.
	v.AnimateTo(0, func() { done++ })
	v.ApplyOffset(123)
	runUntilIdle(t, l)
	assert.Zero(t, done)
	assert.Equal(t, 123.0, v.Offset())
}

// The gesture engine driving the real visual and loop.
func TestSheetEngineWithVisual(t *testing.T) {
	l := NewFrameLoop(60)
	v := NewSheetVisual(l, 60)
	e := sheet.New(v, l, 800, sheet.Full)

	e.PointerDown(0)
	assert.True(t, v.Compositing())
	assert.False(t, v.ListScroll())
	e.PointerMove(300)
	e.PointerMove(420)
	assert.Equal(t, 1, l.Pending())
	tick(l)
	assert.Equal(t, 420.0, v.Offset())

	e.PointerUp()
	assert.Equal(t, sheet.Half, e.Snap())
	assert.True(t, v.ListScroll())
	runUntilIdle(t, l)
	assert.Equal(t, sheet.Idle, e.State())
	assert.False(t, v.Compositing())
	assert.Equal(t, 400.0, v.Offset())
}

func TestSheetDragMidSettleStartsFromSpring(t *testing.T) {
	l := NewFrameLoop(60)
	v := NewSheetVisual(l, 60)
	e := sheet.New(v, l, 1000, sheet.Peek)

	e.SnapTo(sheet.Full)
	for i := 0; i < 120 && v.Offset() > 700; i++ {
		tick(l)
	}
	live := v.Offset()
	require.True(t, v.Animating(), "still springing toward full")
	require.Greater(t, live, 100.0)
	require.LessOrEqual(t, live, 700.0)

	e.PointerDown(live)
	assert.False(t, v.Animating())
	assert.Equal(t, live, v.Offset(), "grabbing the handle must not move the sheet")

	e.PointerMove(live + 10)
	tick(l)
	assert.InDelta(t, live+10, v.Offset(), 1e-9)
	assert.InDelta(t, live+10, e.Offset(), 1e-9)

	e.PointerUp()
	assert.Equal(t, sheet.Resolve(live+10, 1000), e.Snap())
}

func TestToasts(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ts := NewToasts(time.Second)
	ts.Push([]notify.Message{
		{Level: notify.LevelInfo, Text: "one"},
		{Level: notify.LevelError, Text: "two"},
	}, now)
	assert.Equal(t, 2, ts.Len())

	view := ts.View(40)
	assert.Contains(t, view, "one")
	assert.Contains(t, view, "two")
	assert.Len(t, strings.Split(view, "\n"), 2)

	assert.True(t, ts.Expire(now.Add(500*time.Millisecond)))
	assert.False(t, ts.Expire(now.Add(time.Second)))
	assert.Empty(t, ts.View(40))
}

func TestToastsKeepNewest(t *testing.T) {
	ts := NewToasts(0)
	now := time.Now()
	for _, s := range []string{"a", "b", "c", "d"} {
		ts.Push([]notify.Message{{Text: s}}, now)
	}
	assert.Equal(t, maxToasts, ts.Len())
	assert.NotContains(t, ts.View(20), "a")
}
