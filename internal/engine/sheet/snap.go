// Package sheet drives the bottom sheet: pointer drags are tracked as a
// continuous pixel offset and resolved into one of three discrete snaps on
// release.
//
// Two models are kept apart on purpose. The pixel offset is pushed straight
// to the Visual side channel on every frame and never notifies anyone. The
// discrete Snap changes only on release or SnapTo, and only Snap changes
// reach OnSnap listeners, which drive layout.
package sheet

// Snap is a resting position of the sheet.
type Snap int

const (
	Peek Snap = iota
	Half
	Full
)

func (s Snap) String() string {
	switch s {
	case Half:
		return "half"
	case Full:
		return "full"
	default:
		return "peek"
	}
}

// Offsets, as a fraction of viewport height. The sheet is translated down by
// this much from its fully expanded position.
const (
	HalfOffset = 0.50
	PeekOffset = 0.87

	// MaxDragOffset caps how far a drag can push the sheet down.
	MaxDragOffset = 0.8
)

// Release thresholds.
const (
	FullSnapPx     = 50.0 // offsets at or below this always expand fully
	FullVisiblePct = 75.0 // strictly above this expands fully
	HalfVisiblePct = 35.0 // at or above this stops at half
)

// OffsetFor returns the pixel offset of a snap for a viewport height.
func OffsetFor(s Snap, viewportH float64) float64 {
	switch s {
	case Full:
		return 0
	case Half:
		return HalfOffset * viewportH
	default:
		return PeekOffset * viewportH
	}
}

// Resolve classifies a pixel offset into a snap by how much of the viewport
// the sheet still covers. Velocity plays no part.
func Resolve(offsetPx, viewportH float64) Snap {
	if viewportH <= 0 || offsetPx <= FullSnapPx {
		return Full
	}
	visiblePct := (viewportH - offsetPx) * 100 / viewportH
	switch {
	case visiblePct > FullVisiblePct:
		return Full
	case visiblePct >= HalfVisiblePct:
		return Half
	default:
		return Peek
	}
}
