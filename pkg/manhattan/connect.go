package manhattan

import (
	"strconv"

	"github.com/matzehuels/orthoroute/pkg/geom"
)

// ConnectRequest describes a fresh connection between two shapes.
type ConnectRequest struct {
	Source geom.Rect      `json:"source"`
	Target geom.Rect      `json:"target"`
	Start  geom.Direction `json:"start,omitempty"`
	End    geom.Direction `json:"end,omitempty"`
}

// ConnectPoints returns the orthogonal route from a to b for the given pair.
//
// Points sharing an x or y coordinate are connected directly. Otherwise the
// pair decides the bends:
//
//	h:v  [a, (b.x, a.y), b]
//	v:h  [a, (a.x, b.y), b]
//	h:h  [a, (mid, a.y), (mid, b.y), b]   mid = (a.x + b.x) / 2
//	v:v  [a, (a.x, mid), (b.x, mid), b]   mid = (a.y + b.y) / 2
//
// Without a pair, [DefaultPair] is used. An invalid pair always fails with a
// geom.InvalidDirectionError, even for aligned points.
func ConnectPoints(a, b geom.Point, pair ...geom.DirectionPair) ([]geom.Bend, error) {
	return ConnectBends(geom.Free(a), geom.Free(b), pair...)
}

// ConnectPointsString is ConnectPoints with the pair in its wire form
// ("h:h", "h:v", "v:h" or "v:v").
func ConnectPointsString(a, b geom.Point, directions string) ([]geom.Bend, error) {
	pair, err := geom.ParseDirectionPair(directions)
	if err != nil {
		return nil, err
	}
	return ConnectPoints(a, b, pair)
}

// ConnectBends is ConnectPoints for endpoints that may carry anchors. The
// anchors are kept on the first and last bend; interior bends are free.
func ConnectBends(a, b geom.Bend, pair ...geom.DirectionPair) ([]geom.Bend, error) {
	p := DefaultPair
	if len(pair) > 0 {
		p = pair[0]
	}
	if !p.Valid() {
		return nil, &geom.InvalidDirectionError{Value: "pair(" + strconv.Itoa(int(p)) + ")"}
	}

	route := []geom.Bend{a.Clone()}
	if geom.PointsAligned(a.Point, b.Point, 0) == geom.AxisNone {
		route = append(route, bendpoints(a.Point, b.Point, p)...)
	}
	return append(route, b.Clone()), nil
}

// bendpoints returns the interior bends between two unaligned points.
func bendpoints(a, b geom.Point, pair geom.DirectionPair) []geom.Bend {
	switch pair {
	case geom.PairHV:
		return []geom.Bend{geom.Free(geom.Pt(b.X, a.Y))}
	case geom.PairVH:
		return []geom.Bend{geom.Free(geom.Pt(a.X, b.Y))}
	case geom.PairHH:
		mid := (a.X + b.X) / 2
		return []geom.Bend{geom.Free(geom.Pt(mid, a.Y)), geom.Free(geom.Pt(mid, b.Y))}
	case geom.PairVV:
		mid := (a.Y + b.Y) / 2
		return []geom.Bend{geom.Free(geom.Pt(a.X, mid)), geom.Free(geom.Pt(b.X, mid))}
	}
	panic("manhattan: unhandled direction pair " + pair.String())
}

// ConnectRectangles routes between two shapes.
//
// Missing directions are inferred: the pair comes from geom.Directions and
// each side faces the other shape. Both ends are docked with
// geom.DockingPoint, so the first and last bend carry the shape centers as
// anchors.
func (l *Layouter) ConnectRectangles(source, target geom.Rect, start, end geom.Direction) ([]geom.Bend, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	start, end, err := l.resolveSides(source, target, start, end)
	if err != nil {
		return nil, err
	}

	pair, err := geom.NewDirectionPair(start.Axis(), end.Axis())
	if err != nil {
		return nil, err
	}
	return ConnectBends(geom.DockingPoint(source, start), geom.DockingPoint(target, end), pair)
}

// Connect is ConnectRectangles for a request value.
func (l *Layouter) Connect(req ConnectRequest) ([]geom.Bend, error) {
	return l.ConnectRectangles(req.Source, req.Target, req.Start, req.End)
}

// resolveSides fills in DirectionAuto sides.
func (l *Layouter) resolveSides(source, target geom.Rect, start, end geom.Direction) (geom.Direction, geom.Direction, error) {
	if err := validDirections(start, end); err != nil {
		return start, end, err
	}
	if start != geom.DirectionAuto && end != geom.DirectionAuto {
		return start, end, nil
	}

	inferred, err := geom.Directions(source, target, l.opts.AlignTolerance)
	if err != nil {
		return start, end, err
	}
	if start == geom.DirectionAuto {
		start = geom.Facing(source, target.Center(), inferred.Start())
	}
	if end == geom.DirectionAuto {
		end = geom.Facing(target, source.Center(), inferred.End())
	}
	return start, end, nil
}

func validDirections(ds ...geom.Direction) error {
	for _, d := range ds {
		if !d.Valid() {
			return &geom.InvalidDirectionError{Value: "direction(" + strconv.Itoa(int(d)) + ")"}
		}
	}
	return nil
}

// PairOf reports the direction pair of a route from the axes of its first
// and last segments. Free-flow and zero-length end segments yield PairNone.
func PairOf(wp []geom.Bend) geom.DirectionPair {
	if len(wp) < 2 {
		return geom.PairNone
	}
	start := geom.Classify(wp[0].Point, wp[1].Point, 0).Axis()
	end := geom.Classify(wp[len(wp)-2].Point, wp[len(wp)-1].Point, 0).Axis()
	pair, err := geom.NewDirectionPair(start, end)
	if err != nil {
		return geom.PairNone
	}
	return pair
}
