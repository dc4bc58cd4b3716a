package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rendis/pinmap/internal/engine/sheet"
)

var loopIDs atomic.Int64

// FrameMsg is one display frame of a FrameLoop.
type FrameMsg struct {
	Loop int64
}

// FrameLoop schedules frame callbacks on bubbletea ticks. At most one tick is
// in flight, and only while callbacks are queued. It must only be used from
// the Update loop.
type FrameLoop struct {
	id       int64
	interval time.Duration
	next     sheet.FrameID
	queued   map[sheet.FrameID]func()
	order    []sheet.FrameID
	ticking  bool
	stopped  bool
}

var _ sheet.FrameScheduler = (*FrameLoop)(nil)

func NewFrameLoop(fps int) *FrameLoop {
	if fps <= 0 {
		fps = 60
	}
	return &FrameLoop{
		id:       loopIDs.Add(1),
		interval: time.Second / time.Duration(fps),
		queued:   make(map[sheet.FrameID]func()),
	}
}

func (l *FrameLoop) RequestFrame(fn func()) sheet.FrameID {
	l.next++
	if l.stopped {
		return l.next
	}
	l.queued[l.next] = fn
	l.order = append(l.order, l.next)
	return l.next
}

func (l *FrameLoop) CancelFrame(id sheet.FrameID) {
	delete(l.queued, id)
}

// Pending is the number of queued callbacks.
func (l *FrameLoop) Pending() int {
	return len(l.queued)
}

// Cmd arms the next tick if one is needed.
func (l *FrameLoop) Cmd() tea.Cmd {
	if l.stopped || l.ticking || len(l.queued) == 0 {
		return nil
	}
	l.ticking = true
	id := l.id
	return tea.Tick(l.interval, func(time.Time) tea.Msg {
		return FrameMsg{Loop: id}
	})
}

// Handle runs the callbacks queued before this frame. Callbacks requested
// while running wait for the next frame. It reports false for ticks of
// another loop.
func (l *FrameLoop) Handle(msg FrameMsg) bool {
	if msg.Loop != l.id {
		return false
	}
	l.ticking = false

	order := l.order
	l.order = nil
	for _, id := range order {
		fn, ok := l.queued[id]
		if !ok {
			continue
		}
		delete(l.queued, id)
		fn()
	}
	return true
}

// Stop drops every queued callback; later requests are ignored.
func (l *FrameLoop) Stop() {
	l.stopped = true
	l.queued = make(map[sheet.FrameID]func())
	l.order = nil
}
