package term

import (
	"math"

	"github.com/rendis/pinmap/internal/mapkit"
)

// Clusterer merges markers that fall into the same screen cell block at the
// surface's current zoom.
type Clusterer struct {
	surface  *Surface
	render   mapkit.ClusterRenderer
	markers  []mapkit.Marker
	cellCols int
	cellRows int
}

func (c *Clusterer) SetMarkers(markers []mapkit.Marker) {
	c.markers = append([]mapkit.Marker(nil), markers...)
}

func (c *Clusterer) Markers() []mapkit.Marker {
	return append([]mapkit.Marker(nil), c.markers...)
}

// Clusters groups the markers inside the viewport (plus one block of margin).
// Groups come out in order of their first member.
func (c *Clusterer) Clusters() []mapkit.Cluster {
	w, h := c.surface.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	cw, ch := float64(c.cellCols), float64(c.cellRows)

	index := make(map[[2]int]int)
	var out []mapkit.Cluster
	var sums [][2]float64

	for _, m := range c.markers {
		x, y := c.surface.Project(m.Position())
		if x < -cw || y < -ch || x >= float64(w)+cw || y >= float64(h)+ch {
			continue
		}
		key := [2]int{int(math.Floor(x / cw)), int(math.Floor(y / ch))}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, mapkit.Cluster{})
			sums = append(sums, [2]float64{})
		}
		pos := m.Position()
		out[i].Count++
		out[i].Markers = append(out[i].Markers, m)
		sums[i][0] += pos.Lat
		sums[i][1] += pos.Lng
	}

	for i := range out {
		n := float64(out[i].Count)
		out[i].Position = mapkit.LatLng{Lat: sums[i][0] / n, Lng: sums[i][1] / n}
	}
	return out
}
