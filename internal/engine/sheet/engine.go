package sheet

// State is the gesture state of the engine.
type State int

const (
	Idle State = iota
	Dragging
	Settling
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

// Visual is the imperative side channel to the rendered sheet.
type Visual interface {
	// ApplyOffset moves the sheet immediately, honoring the transition flag.
	ApplyOffset(px float64)
	SetTransition(enabled bool)
	// SetCompositing toggles the "moving layer" hint on the drag handle.
	SetCompositing(on bool)
	SetListScroll(enabled bool)
	// AnimateTo moves the sheet to px and calls done when it arrives.
	// cancel stops the animation without calling done.
	AnimateTo(px float64, done func()) (cancel func())
	// Offset is where the sheet is drawn right now, mid-animation included.
	Offset() float64
}

// FrameID identifies a requested frame callback.
type FrameID int

// FrameScheduler runs callbacks on the next display frame.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// Engine is the bottom sheet gesture state machine. It is not safe for
// concurrent use; every call belongs on the UI loop.
type Engine struct {
	visual Visual
	frames FrameScheduler

	viewportH float64
	state     State
	snap      Snap
	offset    float64

	startY      float64
	startOffset float64
	pendingY    float64
	hasPending  bool

	frame       FrameID
	frameQueued bool

	animGen    int
	cancelAnim func()

	listeners map[int]func(Snap)
	nextID    int
}

// New creates an engine resting at initial and applies its offset.
func New(visual Visual, frames FrameScheduler, viewportH float64, initial Snap) *Engine {
	e := &Engine{
		visual:    visual,
		frames:    frames,
		viewportH: viewportH,
		snap:      initial,
		listeners: make(map[int]func(Snap)),
	}
	e.offset = OffsetFor(initial, viewportH)
	e.visual.SetTransition(false)
	e.visual.ApplyOffset(e.offset)
	return e
}

func (e *Engine) State() State {
	return e.state
}

// Snap is the last committed discrete position.
func (e *Engine) Snap() Snap {
	return e.snap
}

// Offset is the current pixel offset (the continuous model).
func (e *Engine) Offset() float64 {
	return e.offset
}

func (e *Engine) ViewportHeight() float64 {
	return e.viewportH
}

// OnSnap registers a listener for committed snap changes.
func (e *Engine) OnSnap(fn func(Snap)) (remove func()) {
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() { delete(e.listeners, id) }
}

// SetViewportHeight rescales the resting offset to a new viewport.
// An active drag keeps its pixel offset until release.
func (e *Engine) SetViewportHeight(h float64) {
	if h == e.viewportH {
		return
	}
	e.viewportH = h
	if e.state == Dragging {
		return
	}
	e.stopAnimation()
	e.offset = OffsetFor(e.snap, h)
	e.visual.SetTransition(false)
	e.visual.ApplyOffset(e.offset)
	e.visual.SetCompositing(false)
	e.state = Idle
}

// PointerDown starts a drag at pointer coordinate y from wherever the sheet
// is drawn. It may interrupt a settle animation; the animation's cleanup is
// dropped and the drag continues from the animated position.
func (e *Engine) PointerDown(y float64) {
	e.stopAnimation()
	e.cancelFrame()
	e.hasPending = false

	e.offset = e.visual.Offset()
	e.state = Dragging
	e.startY = y
	e.startOffset = e.offset
	e.visual.SetTransition(false)
	e.visual.SetCompositing(true)
	e.visual.SetListScroll(false)
}

// PointerMove records the latest pointer coordinate. The offset is applied
// on the next frame; at most one frame callback is outstanding.
func (e *Engine) PointerMove(y float64) {
	if e.state != Dragging {
		return
	}
	e.pendingY = y
	e.hasPending = true
	if !e.frameQueued {
		e.frameQueued = true
		e.frame = e.frames.RequestFrame(e.onFrame)
	}
}

// PointerUp ends the drag: flush the pending move, resolve the snap, animate
// there.
func (e *Engine) PointerUp() {
	if e.state != Dragging {
		return
	}
	e.cancelFrame()
	e.applyPending()
	e.settle(Resolve(e.offset, e.viewportH))
}

// SnapTo moves the sheet to s programmatically. An active drag is abandoned.
func (e *Engine) SnapTo(s Snap) {
	if e.state == Dragging {
		e.cancelFrame()
		e.hasPending = false
	} else if e.state == Idle && e.snap == s && e.offset == OffsetFor(s, e.viewportH) {
		return
	}
	e.settle(s)
}

// Close releases scheduled work. Call it when the sheet is unmounted.
func (e *Engine) Close() {
	e.cancelFrame()
	e.stopAnimation()
	e.hasPending = false
	if e.state != Idle {
		e.visual.SetListScroll(true)
		e.visual.SetCompositing(false)
	}
	e.state = Idle
}

func (e *Engine) onFrame() {
	e.frameQueued = false
	e.applyPending()
}

func (e *Engine) applyPending() {
	if !e.hasPending {
		return
	}
	e.hasPending = false
	off := e.startOffset + (e.pendingY - e.startY)
	e.offset = clamp(off, 0, MaxDragOffset*e.viewportH)
	e.visual.ApplyOffset(e.offset)
}

func (e *Engine) settle(target Snap) {
	e.stopAnimation()
	e.state = Settling
	to := OffsetFor(target, e.viewportH)
	e.offset = to

	e.visual.SetTransition(true)
	e.visual.SetListScroll(true)
	e.commit(target)

	e.animGen++
	gen := e.animGen
	done := false
	cancel := e.visual.AnimateTo(to, func() {
		if gen != e.animGen {
			return
		}
		done = true
		e.cancelAnim = nil
		e.visual.SetCompositing(false)
		e.state = Idle
	})
	if !done && gen == e.animGen {
		e.cancelAnim = cancel
	}
}

func (e *Engine) commit(s Snap) {
	if s == e.snap {
		return
	}
	e.snap = s
	for _, fn := range e.listeners {
		fn(s)
	}
}

func (e *Engine) stopAnimation() {
	e.animGen++
	if e.cancelAnim != nil {
		e.cancelAnim()
		e.cancelAnim = nil
	}
}

func (e *Engine) cancelFrame() {
	if e.frameQueued {
		e.frames.CancelFrame(e.frame)
		e.frameQueued = false
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
