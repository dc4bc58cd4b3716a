// Package mapkit is the narrow contract between pinmap and a map rendering
// library: a surface, markers, and a clusterer with a pin render hook.
package mapkit

import "context"

// LatLng is a coordinate in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// InteractionKind classifies direct user interaction with the surface.
type InteractionKind int

const (
	InteractionClick InteractionKind = iota
	InteractionDrag
	InteractionZoom
)

// InteractionEvent is emitted when the user touches the map itself
// (not a marker).
type InteractionEvent struct {
	Kind     InteractionKind
	Position LatLng
}

// SurfaceOptions configures a new map surface.
type SurfaceOptions struct {
	Center LatLng
	Zoom   int
}

// Surface is a live map.
type Surface interface {
	Center() LatLng
	Zoom() int
	SetCenter(LatLng)
	SetZoom(int)
	// FocusOn moves center and zoom in one step.
	FocusOn(center LatLng, zoom int)
	// OnInteraction registers a listener and returns its removal func.
	OnInteraction(func(InteractionEvent)) (remove func())
	// Attach re-parents the surface's root visual into the given host.
	Attach(hostID string)
	Detach()
	Host() string
}

// MarkerOptions configures a new marker.
type MarkerOptions struct {
	ID       string
	Position LatLng
	Glyph    string // only used for markers drawn outside a clusterer
	Color    string
}

// Marker is a point on the map.
type Marker interface {
	ID() string
	Position() LatLng
	SetPosition(LatLng)
	// SetMap shows the marker on s directly; nil removes it.
	SetMap(s Surface)
	OnClick(func())
}

// Cluster is one group produced by a clusterer redraw.
type Cluster struct {
	Count    int
	Position LatLng
	Markers  []Marker
}

// Element is a positioned visual produced by a ClusterRenderer.
type Element struct {
	Position LatLng
	Label    string
	Color    string
	Scale    float64
	FontSize int
}

// ClusterRenderer turns a cluster into a visual. It is called once per
// cluster per redraw and its results must not be retained.
type ClusterRenderer func(Cluster) Element

// Clusterer groups a replaceable set of markers.
type Clusterer interface {
	// SetMarkers replaces the whole marker set.
	SetMarkers([]Marker)
	Markers() []Marker
	// Clusters groups the current markers for the surface's viewport.
	Clusters() []Cluster
}

// Library creates map primitives.
type Library interface {
	NewSurface(SurfaceOptions) Surface
	NewMarker(MarkerOptions) Marker
	NewClusterer(s Surface, render ClusterRenderer) Clusterer
}

// Loader loads a map library. A failed load is final.
type Loader func(ctx context.Context) (Library, error)
