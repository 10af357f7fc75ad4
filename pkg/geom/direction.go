package geom

import (
	"math"
	"strconv"
)

// Axis is the h/v generalization of a side.
type Axis int

const (
	AxisNone Axis = iota
	AxisH         // left or right
	AxisV         // top or bottom
)

func (a Axis) String() string {
	switch a {
	case AxisH:
		return "h"
	case AxisV:
		return "v"
	default:
		return ""
	}
}

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	switch a {
	case AxisH:
		return AxisV
	case AxisV:
		return AxisH
	default:
		return AxisNone
	}
}

// Direction is the side of a rectangle a connection docks on.
// The zero value, DirectionAuto, asks the router to infer the side.
type Direction int

const (
	DirectionAuto Direction = iota
	Top
	Right
	Bottom
	Left
)

var directionNames = map[Direction]string{
	Top:    "top",
	Right:  "right",
	Bottom: "bottom",
	Left:   "left",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return ""
}

// Valid reports whether d is DirectionAuto or one of the four sides.
func (d Direction) Valid() bool {
	return d >= DirectionAuto && d <= Left
}

// Axis returns AxisH for left/right, AxisV for top/bottom and AxisNone for
// DirectionAuto.
func (d Direction) Axis() Axis {
	switch d {
	case Left, Right:
		return AxisH
	case Top, Bottom:
		return AxisV
	default:
		return AxisNone
	}
}

// ParseDirection parses "top", "right", "bottom" or "left". The empty string
// and "auto" yield DirectionAuto.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "auto":
		return DirectionAuto, nil
	}
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return DirectionAuto, &InvalidDirectionError{Value: s}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, &InvalidDirectionError{Value: "direction(" + strconv.Itoa(int(d)) + ")"}
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DirectionPair is the h/v topology of a connection: the axis it leaves the
// source on and the axis it enters the target on.
type DirectionPair int

const (
	PairNone DirectionPair = iota // unset; callers pick a default
	PairHH
	PairHV
	PairVH
	PairVV
)

var pairNames = map[DirectionPair]string{
	PairHH: "h:h",
	PairHV: "h:v",
	PairVH: "v:h",
	PairVV: "v:v",
}

// NewDirectionPair builds a pair from two axes.
func NewDirectionPair(start, end Axis) (DirectionPair, error) {
	switch {
	case start == AxisH && end == AxisH:
		return PairHH, nil
	case start == AxisH && end == AxisV:
		return PairHV, nil
	case start == AxisV && end == AxisH:
		return PairVH, nil
	case start == AxisV && end == AxisV:
		return PairVV, nil
	}
	return PairNone, &InvalidDirectionError{Value: start.String() + ":" + end.String()}
}

// ParseDirectionPair parses the wire form of a pair. Only the four literal,
// lowercase values are accepted.
func ParseDirectionPair(s string) (DirectionPair, error) {
	for p, name := range pairNames {
		if name == s {
			return p, nil
		}
	}
	return PairNone, &InvalidDirectionError{Value: s}
}

func (p DirectionPair) String() string { return pairNames[p] }

// Valid reports whether p is one of the four pairs.
func (p DirectionPair) Valid() bool {
	_, ok := pairNames[p]
	return ok
}

// Start returns the axis the connection leaves the source on.
func (p DirectionPair) Start() Axis {
	switch p {
	case PairHH, PairHV:
		return AxisH
	case PairVH, PairVV:
		return AxisV
	default:
		return AxisNone
	}
}

// End returns the axis the connection enters the target on.
func (p DirectionPair) End() Axis {
	switch p {
	case PairHH, PairVH:
		return AxisH
	case PairHV, PairVV:
		return AxisV
	default:
		return AxisNone
	}
}

// Reverse returns the pair describing the same route walked from the target.
func (p DirectionPair) Reverse() DirectionPair {
	switch p {
	case PairHV:
		return PairVH
	case PairVH:
		return PairHV
	default:
		return p
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p DirectionPair) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, &InvalidDirectionError{Value: "pair(" + strconv.Itoa(int(p)) + ")"}
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *DirectionPair) UnmarshalText(text []byte) error {
	parsed, err := ParseDirectionPair(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Directions classifies the relative position of a and b into the pair a
// connection between them should use.
//
// When the x-intervals of a and b overlap, or are separated by no more than
// tolerance, the shapes are stacked and the pair is v:v. The same on the
// y-intervals yields h:h. When both hold, an axis whose intervals truly
// overlap wins over one that is only within tolerance; otherwise the axis
// with the larger center delta wins. Diagonal placements get an L-shaped route: h:v when the
// horizontal delta dominates, v:h otherwise.
func Directions(a, b Rect, tolerance float64) (DirectionPair, error) {
	if err := a.Validate(); err != nil {
		return PairNone, err
	}
	if err := b.Validate(); err != nil {
		return PairNone, err
	}

	ca, cb := a.Center(), b.Center()
	dx, dy := math.Abs(cb.X-ca.X), math.Abs(cb.Y-ca.Y)
	if dx == 0 && dy == 0 {
		return PairNone, degenerate("rectangles %s and %s share center %s", a, b, ca)
	}

	gapX := intervalGap(a.Left(), a.Right(), b.Left(), b.Right())
	gapY := intervalGap(a.Top(), a.Bottom(), b.Top(), b.Bottom())
	stacked := gapX <= tolerance
	sideBySide := gapY <= tolerance

	switch {
	case stacked && sideBySide:
		// A real overlap on one axis beats a near miss on the other.
		if overlapX, overlapY := gapX < 0, gapY < 0; overlapX != overlapY {
			if overlapX {
				return PairVV, nil
			}
			return PairHH, nil
		}
		if dy > dx {
			return PairVV, nil
		}
		return PairHH, nil
	case stacked:
		return PairVV, nil
	case sideBySide:
		return PairHH, nil
	case dx >= dy:
		return PairHV, nil
	default:
		return PairVH, nil
	}
}

// Sides returns the concrete sides a connection with the given pair uses on
// a and b, each facing the other shape.
func Sides(a, b Rect, pair DirectionPair) (start, end Direction, err error) {
	if !pair.Valid() {
		return DirectionAuto, DirectionAuto, &InvalidDirectionError{Value: "pair(" + strconv.Itoa(int(pair)) + ")"}
	}
	ca, cb := a.Center(), b.Center()
	return side(pair.Start(), ca, cb), side(pair.End(), cb, ca), nil
}

// side returns the side of a shape centered at from that faces toward along
// axis.
func side(axis Axis, from, toward Point) Direction {
	if axis == AxisH {
		if toward.X < from.X {
			return Left
		}
		return Right
	}
	if toward.Y < from.Y {
		return Top
	}
	return Bottom
}

// Facing returns the side of r a segment running along axis toward p leaves
// from.
func Facing(r Rect, p Point, axis Axis) Direction {
	return side(axis, r.Center(), p)
}

// DockingPoint returns the point where a ray from r's center toward side d
// crosses the boundary, anchored to the center. DirectionAuto yields the
// center itself, unanchored.
func DockingPoint(r Rect, d Direction) Bend {
	c := r.Center()
	switch d {
	case Top:
		return Anchored(Point{X: c.X, Y: r.Top()}, c)
	case Right:
		return Anchored(Point{X: r.Right(), Y: c.Y}, c)
	case Bottom:
		return Anchored(Point{X: c.X, Y: r.Bottom()}, c)
	case Left:
		return Anchored(Point{X: r.Left(), Y: c.Y}, c)
	default:
		return Free(c)
	}
}

// Snap moves v onto target when they are within tol of each other.
func Snap(v, target, tol float64) float64 {
	if math.Abs(v-target) <= tol {
		return target
	}
	return v
}
