// Package pin renders cluster badges: color and size by member count.
package pin

import (
	"strconv"

	"github.com/rendis/pinmap/internal/mapkit"
)

// Band thresholds.
const (
	MediumAt = 6
	HighAt   = 16
	SmallAt  = 100 // counts from here on get the smaller font
)

// Font sizes, in points of the reference badge.
const (
	FontNormal = 14
	FontSmall  = 12
)

// Band colors.
const (
	ColorLow    = "#22C55E"
	ColorMedium = "#F59E0B"
	ColorHigh   = "#EF4444"
)

// Pin is the visual description of a badge.
type Pin struct {
	Color    string
	Scale    float64
	FontSize int
	Label    string
}

// StyleFor maps a member count to a pin style.
func StyleFor(count int) Pin {
	p := Pin{
		Color:    ColorLow,
		Scale:    1.0,
		FontSize: FontNormal,
		Label:    strconv.Itoa(count),
	}
	switch {
	case count >= HighAt:
		p.Color, p.Scale = ColorHigh, 1.2
	case count >= MediumAt:
		p.Color, p.Scale = ColorMedium, 1.1
	}
	if count >= SmallAt {
		p.FontSize = FontSmall
	}
	return p
}

// Render is the clusterer render hook.
func Render(c mapkit.Cluster) mapkit.Element {
	p := StyleFor(c.Count)
	return mapkit.Element{
		Position: c.Position,
		Label:    p.Label,
		Color:    p.Color,
		Scale:    p.Scale,
		FontSize: p.FontSize,
	}
}
