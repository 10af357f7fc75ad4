// Package outline computes the selection outlines drawn around shapes and
// connections.
//
// An outline is the element's bounding box grown by a fixed offset on every
// side. Shape outlines are available in shape-local coordinates (the shape's
// top-left corner is the origin, so the outline starts at -offset) and in
// canvas coordinates. Connection outlines are always in canvas coordinates.
package outline

import "github.com/matzehuels/orthoroute/pkg/geom"

// DefaultOffset is the gap between an element and its outline.
const DefaultOffset = 5.0

// Provider computes outlines with a fixed offset.
type Provider struct {
	offset float64
}

// New creates a Provider. A non-positive offset selects DefaultOffset.
func New(offset float64) *Provider {
	if offset <= 0 {
		offset = DefaultOffset
	}
	return &Provider{offset: offset}
}

// Offset returns the configured offset.
func (p *Provider) Offset() float64 { return p.offset }

// Local returns the outline of a shape with bounds r relative to its own
// top-left corner.
func (p *Provider) Local(r geom.Rect) geom.Rect {
	return geom.R(0, 0, r.Width, r.Height).Grow(p.offset)
}

// Shape returns the outline of a shape in canvas coordinates.
func (p *Provider) Shape(r geom.Rect) geom.Rect {
	return r.Grow(p.offset)
}

// Connection returns the outline around a connection's waypoints. A
// connection without waypoints has the zero outline.
func (p *Provider) Connection(waypoints []geom.Bend) geom.Rect {
	if len(waypoints) == 0 {
		return geom.Rect{}
	}
	return geom.Bounds(geom.Points(waypoints)).Grow(p.offset)
}
