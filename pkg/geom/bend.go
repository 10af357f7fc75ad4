package geom

import "math"

// BendKind tells a shape-derived waypoint from a user-placed one.
type BendKind int

const (
	// BendFree is a waypoint with no anchor: a user-placed bend or a raw
	// endpoint sitting on a shape's center.
	BendFree BendKind = iota
	// BendAnchored is a docking point derived from a shape; its anchor is the
	// shape center it was projected from.
	BendAnchored
)

// Bend is a single waypoint of a connection.
//
// Anchor is serialized as "original" so waypoints round-trip with
// rendering layers that expect {x, y, original: {x, y}}.
type Bend struct {
	Point  `bson:",inline"`
	Anchor *Point `json:"original,omitempty" bson:"original,omitempty"`
}

// Free returns an unanchored bend at p.
func Free(p Point) Bend { return Bend{Point: p} }

// Anchored returns a bend at p anchored to the shape center anchor.
func Anchored(p, anchor Point) Bend {
	return Bend{Point: p, Anchor: &anchor}
}

// Kind reports whether b is anchored to a shape.
func (b Bend) Kind() BendKind {
	if b.Anchor != nil {
		return BendAnchored
	}
	return BendFree
}

// Origin returns the point the bend was derived from: its anchor when it has
// one, its own position otherwise.
func (b Bend) Origin() Point {
	switch b.Kind() {
	case BendAnchored:
		return *b.Anchor
	default:
		return b.Point
	}
}

// Clone returns a copy of b that shares no memory with it.
func (b Bend) Clone() Bend {
	if b.Anchor != nil {
		a := *b.Anchor
		b.Anchor = &a
	}
	return b
}

// String formats an anchored bend as "(x,y)@(ax,ay)".
func (b Bend) String() string {
	if b.Anchor == nil {
		return b.Point.String()
	}
	return b.Point.String() + "@" + b.Anchor.String()
}

// Equal reports whether a and b have the same position and anchor.
func (b Bend) Equal(o Bend) bool {
	if b.Point != o.Point {
		return false
	}
	if b.Anchor == nil || o.Anchor == nil {
		return b.Anchor == nil && o.Anchor == nil
	}
	return *b.Anchor == *o.Anchor
}

// CloneBends deep-copies a waypoint slice.
func CloneBends(bends []Bend) []Bend {
	if bends == nil {
		return nil
	}
	out := make([]Bend, len(bends))
	for i, b := range bends {
		out[i] = b.Clone()
	}
	return out
}

// EqualBends reports whether two waypoint slices are identical.
func EqualBends(a, b []Bend) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Points strips anchors, returning positions only.
func Points(bends []Bend) []Point {
	out := make([]Point, len(bends))
	for i, b := range bends {
		out[i] = b.Point
	}
	return out
}

// Segment classifies the segment between two consecutive waypoints.
type Segment int

const (
	// SegPoint is a zero-length segment.
	SegPoint Segment = iota
	// SegH is a horizontal segment (shared y).
	SegH
	// SegV is a vertical segment (shared x).
	SegV
	// SegFree is a diagonal, manually drawn segment.
	SegFree
)

// Classify returns the kind of segment a-b, treating coordinates within tol
// as equal.
func Classify(a, b Point, tol float64) Segment {
	sameX := math.Abs(a.X-b.X) <= tol
	sameY := math.Abs(a.Y-b.Y) <= tol
	switch {
	case sameX && sameY:
		return SegPoint
	case sameY:
		return SegH
	case sameX:
		return SegV
	default:
		return SegFree
	}
}

// Axis returns the axis a segment runs along, AxisNone for points and
// free-flow segments.
func (s Segment) Axis() Axis {
	switch s {
	case SegH:
		return AxisH
	case SegV:
		return AxisV
	default:
		return AxisNone
	}
}

// PointsAligned returns the axis a and b share: AxisH when they lie on the
// same horizontal line, AxisV for the same vertical line, AxisNone otherwise.
// Coincident points report AxisH.
func PointsAligned(a, b Point, tol float64) Axis {
	switch {
	case math.Abs(a.Y-b.Y) <= tol:
		return AxisH
	case math.Abs(a.X-b.X) <= tol:
		return AxisV
	default:
		return AxisNone
	}
}
