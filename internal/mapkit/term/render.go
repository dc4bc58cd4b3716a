package term

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	basemapColor = lipgloss.Color("#06B6D4")
	badgeText    = lipgloss.Color("#111827")
	markerColor  = lipgloss.Color("#7C3AED")
)

// Badges at or above this font size are drawn bold.
const boldFontSize = 14

// Braille character encoding:
// Each braille char is a 2x4 dot grid.
// Dot positions:  0 3
//
//	1 4
//	2 5
//	6 7
//
// Unicode: 0x2800 + sum of raised dot bits
var brailleDots = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

var dotPositions = [8][2]int{
	{0, 0}, {1, 0}, {2, 0}, {0, 1},
	{1, 1}, {2, 1}, {3, 0}, {3, 1},
}

type cell struct {
	text  string
	owner int // start column of the badge covering this cell, -1 if none
}

// View draws the surface for hostID. A host that does not own the surface
// gets an empty string: the root visual lives in one place only.
func (s *Surface) View(hostID string, width, height int) string {
	if hostID == "" || hostID != s.host || width <= 0 || height <= 0 {
		return ""
	}
	s.SetSize(width, height)
	s.hits = s.hits[:0]

	grid := make([][]cell, height)
	for row := range grid {
		grid[row] = make([]cell, width)
	}
	s.drawBasemap(grid)

	for _, c := range s.clusterers {
		for _, cl := range c.Clusters() {
			el := c.render(cl)
			x, y := s.Project(el.Position)
			col, row := int(math.Floor(x)), int(math.Floor(y))
			label := el.Label
			pad := int(math.Floor((el.Scale-1)*10 + 0.5))
			if pad < 0 {
				pad = 0
			}
			text := strings.Repeat(" ", pad) + label + strings.Repeat(" ", pad)
			style := lipgloss.NewStyle().
				Foreground(badgeText).
				Background(lipgloss.Color(el.Color)).
				Bold(el.FontSize >= boldFontSize)
			clc := cl
			if c0, c1, ok := place(grid, col-len(text)/2, row, len(text), style.Render(text)); ok {
				s.hits = append(s.hits, hit{row: row, col0: c0, col1: c1, cluster: &clc})
			}
		}
	}

	for _, m := range s.direct {
		x, y := s.Project(m.pos)
		col, row := int(math.Floor(x)), int(math.Floor(y))
		color := markerColor
		if m.color != "" {
			color = lipgloss.Color(m.color)
		}
		text := lipgloss.NewStyle().Foreground(color).Bold(true).Render(m.glyph)
		if c0, c1, ok := place(grid, col, row, 1, text); ok {
			s.hits = append(s.hits, hit{row: row, col0: c0, col1: c1, marker: m})
		}
	}

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			c := grid[row][col]
			switch {
			case c.owner >= 0 && c.owner != col:
				// covered by a badge that starts further left
			case c.text != "":
				sb.WriteString(c.text)
			default:
				sb.WriteRune(' ')
			}
		}
		if row < height-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// place writes a rendered span of width w starting at col. Spans that fall
// partly outside the grid are shifted inside; overlapped badges are erased.
func place(grid [][]cell, col, row, w int, rendered string) (int, int, bool) {
	if row < 0 || row >= len(grid) || w <= 0 {
		return 0, 0, false
	}
	line := grid[row]
	if w > len(line) {
		return 0, 0, false
	}
	if col < 0 {
		col = 0
	}
	if col+w > len(line) {
		col = len(line) - w
	}

	for c := col; c < col+w; c++ {
		if owner := line[c].owner; owner >= 0 {
			for k := owner; k < len(line) && line[k].owner == owner; k++ {
				line[k] = cell{owner: -1}
			}
		}
	}
	for c := col; c < col+w; c++ {
		line[c] = cell{owner: col}
	}
	line[col].text = rendered
	return col, col + w - 1, true
}

func (s *Surface) drawBasemap(grid [][]cell) {
	height := len(grid)
	for row := range grid {
		for col := range grid[row] {
			grid[row][col].owner = -1
		}
	}
	if s.lib == nil || len(s.lib.basemap) == 0 || height == 0 {
		return
	}
	width := len(grid[0])
	dotW, dotH := width*2, height*4

	dots := make([][]bool, dotH)
	for i := range dots {
		dots[i] = make([]bool, dotW)
	}

	toDot := func(lng, lat float64) (int, int) {
		x, y := s.Project(latLng(lat, lng))
		return int(math.Floor(x * 2)), int(math.Floor(y * 4))
	}

	for _, ls := range s.lib.basemap {
		for i := 0; i+1 < len(ls); i++ {
			x0, y0 := toDot(ls[i][0], ls[i][1])
			x1, y1 := toDot(ls[i+1][0], ls[i+1][1])

			// Skip segments entirely off screen or spanning the whole view
			// (antimeridian wraps)
			if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
				(x0 >= dotW && x1 >= dotW) || (y0 >= dotH && y1 >= dotH) {
				continue
			}
			if abs(x1-x0) > dotW || abs(y1-y0) > dotH {
				continue
			}
			drawLine(dots, x0, y0, x1, y1, dotW, dotH)
		}
	}

	style := lipgloss.NewStyle().Foreground(basemapColor)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			var val rune = 0x2800
			for dot := 0; dot < 8; dot++ {
				dy := row*4 + dotPositions[dot][0]
				dx := col*2 + dotPositions[dot][1]
				if dots[dy][dx] {
					val |= brailleDots[dot]
				}
			}
			if val != 0x2800 {
				grid[row][col].text = style.Render(string(val))
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(grid [][]bool, x0, y0, x1, y1, maxW, maxH int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < maxW && y0 >= 0 && y0 < maxH {
			grid[y0][x0] = true
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
