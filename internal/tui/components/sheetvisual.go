package components

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/rendis/pinmap/internal/engine/sheet"
)

// Spring tuning for the settle animation: critically damped, no overshoot.
const (
	springFrequency = 7.0
	springDamping   = 1.0
	settleEpsilon   = 0.5
)

// SheetVisual is the rendered state of the bottom sheet, in virtual pixels.
// The gesture engine writes to it; the view reads it every render.
type SheetVisual struct {
	frames sheet.FrameScheduler
	spring harmonica.Spring

	offset   float64
	velocity float64
	target   float64

	transition  bool
	compositing bool
	listScroll  bool

	animating bool
	frame     sheet.FrameID
	done      func()
	gen       int
}

var _ sheet.Visual = (*SheetVisual)(nil)

func NewSheetVisual(frames sheet.FrameScheduler, fps int) *SheetVisual {
	if fps <= 0 {
		fps = 60
	}
	return &SheetVisual{
		frames:     frames,
		spring:     harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
		listScroll: true,
	}
}

func (v *SheetVisual) ApplyOffset(px float64) {
	v.stop()
	v.offset = px
	v.velocity = 0
}

func (v *SheetVisual) SetTransition(enabled bool) {
	v.transition = enabled
}

func (v *SheetVisual) SetCompositing(on bool) {
	v.compositing = on
}

func (v *SheetVisual) SetListScroll(enabled bool) {
	v.listScroll = enabled
}

// AnimateTo springs toward px, one step per frame. Without transition it
// jumps and calls done right away.
func (v *SheetVisual) AnimateTo(px float64, done func()) func() {
	v.stop()
	if !v.transition || v.offset == px {
		v.offset = px
		v.velocity = 0
		done()
		return func() {}
	}

	v.target = px
	v.done = done
	v.animating = true
	gen := v.gen
	v.frame = v.frames.RequestFrame(func() { v.step(gen) })

	return func() {
		if v.gen == gen {
			v.stop()
		}
	}
}

func (v *SheetVisual) step(gen int) {
	if gen != v.gen || !v.animating {
		return
	}
	v.offset, v.velocity = v.spring.Update(v.offset, v.velocity, v.target)
	if math.Abs(v.offset-v.target) < settleEpsilon && math.Abs(v.velocity) < settleEpsilon {
		v.offset = v.target
		v.velocity = 0
		v.animating = false
		done := v.done
		v.done = nil
		v.gen++
		if done != nil {
			done()
		}
		return
	}
	v.frame = v.frames.RequestFrame(func() { v.step(gen) })
}

func (v *SheetVisual) stop() {
	if v.animating {
		v.frames.CancelFrame(v.frame)
		v.animating = false
		v.done = nil
	}
	v.gen++
}

func (v *SheetVisual) Offset() float64 {
	return v.offset
}

func (v *SheetVisual) Animating() bool {
	return v.animating
}

// Compositing is true while the handle is being moved.
func (v *SheetVisual) Compositing() bool {
	return v.compositing
}

func (v *SheetVisual) ListScroll() bool {
	return v.listScroll
}
