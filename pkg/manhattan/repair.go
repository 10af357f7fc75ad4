package manhattan

import (
	"fmt"
	"math"

	"github.com/matzehuels/orthoroute/pkg/geom"
)

// RepairKind summarizes what a repair did to a connection.
type RepairKind int

const (
	// RepairUnchanged means neither shape moved; the waypoints are a copy.
	RepairUnchanged RepairKind = iota
	// RepairAdjusted means the previous bends were shifted or collapsed.
	RepairAdjusted
	// RepairRelayout means the previous bends were discarded and the
	// connection was routed from scratch.
	RepairRelayout
)

var repairKindNames = [...]string{
	RepairUnchanged: "unchanged",
	RepairAdjusted:  "adjusted",
	RepairRelayout:  "relayout",
}

func (k RepairKind) String() string {
	if k < 0 || int(k) >= len(repairKindNames) {
		return "unknown"
	}
	return repairKindNames[k]
}

// MarshalText encodes the kind by name.
func (k RepairKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *RepairKind) UnmarshalText(text []byte) error {
	for i, name := range repairKindNames {
		if name == string(text) {
			*k = RepairKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown repair kind %q", text)
}

// RepairRequest carries the inputs of a repair.
type RepairRequest struct {
	Source    geom.Rect      `json:"source"`
	Target    geom.Rect      `json:"target"`
	Start     geom.Direction `json:"start,omitempty"`
	End       geom.Direction `json:"end,omitempty"`
	Waypoints []geom.Bend    `json:"waypoints"`
}

// Repair is the outcome of a repair.
type Repair struct {
	Waypoints []geom.Bend `json:"waypoints"`
	Kind      RepairKind  `json:"kind"`
	// Reason is set when Kind is RepairRelayout.
	Reason string `json:"reason,omitempty"`
}

// Reasons reported on relayouts.
const (
	reasonTooShort    = "fewer than two waypoints"
	reasonStraight    = "straight connection"
	reasonStartHint   = "start direction no longer matches the route"
	reasonEndHint     = "end direction no longer matches the route"
	reasonRunThrough  = "shift reaches the opposite endpoint"
	reasonNoBends     = "no bends left"
	reasonDangling    = "nothing left to reconnect from"
	reasonSpan        = "bend left the shape's side"
	reasonUnsettled   = "collapse did not settle"
	reasonNotOrthogon = "route is no longer orthogonal"
)

// Repair is RepairConnection for a request value.
func (l *Layouter) Repair(req RepairRequest) (Repair, error) {
	return l.RepairConnection(req.Source, req.Target, req.Start, req.End, req.Waypoints)
}

// RepairConnection updates waypoints after source and/or target moved or
// changed size.
//
// The endpoints follow their shapes and the bends next to a moved shape are
// shifted along with it, so manual bend edits survive. Bends that end up
// inside a shape or on top of its endpoint collapse. When the previous route
// cannot be salvaged the connection is routed again with ConnectRectangles
// and the result reports RepairRelayout. The input slice is not modified.
func (l *Layouter) RepairConnection(source, target geom.Rect, start, end geom.Direction, waypoints []geom.Bend) (Repair, error) {
	if err := source.Validate(); err != nil {
		return Repair{}, err
	}
	if err := target.Validate(); err != nil {
		return Repair{}, err
	}
	if err := validDirections(start, end); err != nil {
		return Repair{}, err
	}

	r := repairer{
		source: source,
		target: target,
		start:  start,
		end:    end,
		tol:    l.opts.CollapseTolerance,
	}
	out, reason := r.run(waypoints)
	if reason == "" {
		return out, nil
	}

	wp, err := l.ConnectRectangles(source, target, start, end)
	if err != nil {
		return Repair{}, err
	}
	return Repair{Waypoints: wp, Kind: RepairRelayout, Reason: reason}, nil
}

// Bits recording which coordinate of a waypoint a shift already moved.
const (
	movedX uint8 = 1 << iota
	movedY
)

type repairer struct {
	source, target geom.Rect
	start, end     geom.Direction
	tol            float64
}

// path is the working state of the collapse step. Detached endpoints lost
// the bends that connected them and must be reconnected.
type path struct {
	head, tail                 geom.Bend
	bends                      []geom.Bend
	moved                      []bool
	headDetached, tailDetached bool
}

func (r *repairer) run(in []geom.Bend) (Repair, string) {
	n := len(in)
	if n < 2 {
		return Repair{}, reasonTooShort
	}
	segs := classifyAll(in, r.tol)
	freeFlow := false
	for _, s := range segs {
		if s == geom.SegFree {
			freeFlow = true
		}
	}
	if r.start != geom.DirectionAuto && !axisAgrees(segs[0], r.start) {
		return Repair{}, reasonStartHint
	}
	if r.end != geom.DirectionAuto && !axisAgrees(segs[n-2], r.end) {
		return Repair{}, reasonEndHint
	}

	// Nothing moved: keep any route that agrees with the hints, straight
	// ones included.
	dStart := r.source.Center().Sub(in[0].Origin())
	dEnd := r.target.Center().Sub(in[n-1].Origin())
	if dStart.IsZero() && dEnd.IsZero() {
		return Repair{Waypoints: geom.CloneBends(in), Kind: RepairUnchanged}, ""
	}
	if n == 2 && !freeFlow {
		return Repair{}, reasonStraight
	}

	pts := geom.CloneBends(in)
	moved := make([]uint8, n)
	if !shift(pts, segs, moved, 0, 1, dStart) || !shift(pts, segs, moved, n-1, -1, dEnd) {
		return Repair{}, reasonRunThrough
	}

	p := &path{head: pts[0], tail: pts[n-1], bends: pts[1 : n-1], moved: make([]bool, n-2)}
	for i := range p.moved {
		p.moved[i] = moved[i+1] != 0
	}

	settled := false
	for iter := 0; iter < 2*n+2; iter++ {
		changed := p.collapse(r.source, r.target, !dStart.IsZero(), !dEnd.IsZero(), r.tol)
		p.simplify(r.tol)
		if p.headDetached || p.tailDetached {
			if reason := r.reconnect(p); reason != "" {
				return Repair{}, reason
			}
			changed = true
		}
		if !changed {
			settled = true
			break
		}
	}
	if !settled {
		return Repair{}, reasonUnsettled
	}

	var reason string
	if !dStart.IsZero() || !neighborKept(p, in, true) {
		if p.head, reason = r.redock(r.source, r.start, p.head, p.neighbor(true)); reason != "" {
			return Repair{}, reason
		}
	}
	if !dEnd.IsZero() || !neighborKept(p, in, false) {
		if p.tail, reason = r.redock(r.target, r.end, p.tail, p.neighbor(false)); reason != "" {
			return Repair{}, reason
		}
	}

	out := make([]geom.Bend, 0, len(p.bends)+2)
	out = append(out, p.head)
	out = append(out, p.bends...)
	out = append(out, p.tail)
	if reason := validRoute(out, freeFlow, r.tol); reason != "" {
		return Repair{}, reason
	}
	return Repair{Waypoints: out, Kind: RepairAdjusted}, ""
}

func classifyAll(bends []geom.Bend, tol float64) []geom.Segment {
	segs := make([]geom.Segment, len(bends)-1)
	for i := range segs {
		segs[i] = geom.Classify(bends[i].Point, bends[i+1].Point, tol)
	}
	return segs
}

// axisAgrees reports whether a hinted side is compatible with the segment
// leaving it. Free-flow and zero-length segments accept any side.
func axisAgrees(s geom.Segment, d geom.Direction) bool {
	ax := s.Axis()
	return ax == geom.AxisNone || ax == d.Axis()
}

// shift drags the endpoint at index e by d together with the run of bends
// hanging off it. step is 1 from the source end and -1 from the target end.
//
// A vertical segment passes on the x part of d, a horizontal one the y part,
// and the shift continues only while the following segment lies on the same
// axis. It reports false when the run would move the opposite endpoint or a
// coordinate the other end already shifted.
func shift(pts []geom.Bend, segs []geom.Segment, moved []uint8, e, step int, d geom.Point) bool {
	if d.IsZero() {
		return true
	}
	pts[e] = translate(pts[e], d)
	far := len(pts) - 1 - e

	for i := e; ; {
		seg := segs[min(i, i+step)]
		var bit uint8
		switch {
		case seg == geom.SegV && d.X != 0:
			bit = movedX
		case seg == geom.SegH && d.Y != 0:
			bit = movedY
		default:
			return true
		}

		j := i + step
		if j == far || moved[j]&bit != 0 {
			return false
		}
		if bit == movedX {
			pts[j].X += d.X
		} else {
			pts[j].Y += d.Y
		}
		moved[j] |= bit

		if segs[min(j, j+step)] != seg {
			return true
		}
		i = j
	}
}

func translate(b geom.Bend, d geom.Point) geom.Bend {
	if b.Kind() == geom.BendAnchored {
		return geom.Anchored(b.Add(d), b.Anchor.Add(d))
	}
	return geom.Free(b.Add(d))
}

// collapse drops bends that landed inside a shape or on its endpoint, along
// with every bend between them and that endpoint. Only bends that were
// shifted, or that belong to a moved shape's side, are tested.
func (p *path) collapse(source, target geom.Rect, sourceMoved, targetMoved bool, tol float64) bool {
	changed := false
	for i, b := range p.bends {
		if !targetMoved && !p.moved[i] {
			continue
		}
		if target.Interior(b.Point) || (!p.tailDetached && b.Near(p.tail.Point, tol)) {
			p.bends, p.moved = p.bends[:i], p.moved[:i]
			p.tailDetached, changed = true, true
			break
		}
	}
	for i := len(p.bends) - 1; i >= 0; i-- {
		if !sourceMoved && !p.moved[i] {
			continue
		}
		b := p.bends[i]
		if source.Interior(b.Point) || (!p.headDetached && b.Near(p.head.Point, tol)) {
			p.bends, p.moved = p.bends[i+1:], p.moved[i+1:]
			p.headDetached, changed = true, true
			break
		}
	}
	return changed
}

// simplify removes duplicate bends and bends collinear with both neighbors.
// Detached endpoints do not take part.
func (p *path) simplify(tol float64) {
	type item struct {
		b     geom.Bend
		moved bool
		fixed bool
	}
	var seq []item
	push := func(it item) {
		for {
			n := len(seq)
			if n > 0 && seq[n-1].b.Near(it.b.Point, tol) {
				switch {
				case it.fixed && seq[n-1].fixed:
					seq = append(seq, it)
				case it.fixed:
					seq = seq[:n-1]
					continue
				case !seq[n-1].fixed:
					seq[n-1].moved = seq[n-1].moved || it.moved
				}
				return
			}
			if n >= 2 && !seq[n-1].fixed && collinear(seq[n-2].b.Point, seq[n-1].b.Point, it.b.Point, tol) {
				it.moved = it.moved || seq[n-1].moved
				seq = seq[:n-1]
				continue
			}
			seq = append(seq, it)
			return
		}
	}

	if !p.headDetached {
		push(item{b: p.head, fixed: true})
	}
	for i, b := range p.bends {
		push(item{b: b, moved: p.moved[i]})
	}
	if !p.tailDetached {
		push(item{b: p.tail, fixed: true})
	}

	bends := make([]geom.Bend, 0, len(seq))
	moved := make([]bool, 0, len(seq))
	for _, it := range seq {
		if !it.fixed {
			bends = append(bends, it.b)
			moved = append(moved, it.moved)
		}
	}
	p.bends, p.moved = bends, moved
}

func collinear(a, b, c geom.Point, tol float64) bool {
	near := func(u, v float64) bool { return math.Abs(u-v) <= tol }
	return (near(a.X, b.X) && near(b.X, c.X)) || (near(a.Y, b.Y) && near(b.Y, c.Y))
}

// reconnect reattaches detached endpoints to the nearest surviving bend.
func (r *repairer) reconnect(p *path) string {
	if p.tailDetached {
		k := len(p.bends) - 1
		var prev geom.Point
		switch {
		case k > 0:
			prev = p.bends[k-1].Point
		case k == 0 && !p.headDetached:
			prev = p.head.Point
		default:
			return reasonDangling
		}
		tail, reason := r.attach(r.target, r.end, p.tail, prev, &p.bends[k])
		if reason != "" {
			return reason
		}
		p.tail, p.tailDetached, p.moved[k] = tail, false, true
	}
	if p.headDetached {
		var next geom.Point
		switch {
		case len(p.bends) > 1:
			next = p.bends[1].Point
		case len(p.bends) == 1 && !p.tailDetached:
			next = p.tail.Point
		default:
			return reasonDangling
		}
		head, reason := r.attach(r.source, r.start, p.head, next, &p.bends[0])
		if reason != "" {
			return reason
		}
		p.head, p.headDetached, p.moved[0] = head, false, true
	}
	return ""
}

// attach slides b along the segment it shares with other until it reaches
// rect's center line, and returns the endpoint docking b to rect. Free-flow
// segments leave b in place and attach a free endpoint at the center.
func (r *repairer) attach(rect geom.Rect, hint geom.Direction, old geom.Bend, other geom.Point, b *geom.Bend) (geom.Bend, string) {
	c := rect.Center()
	var side geom.Direction
	switch geom.Classify(other, b.Point, r.tol) {
	case geom.SegV:
		b.Y = c.Y
		side = geom.Facing(rect, b.Point, geom.AxisH)
	case geom.SegH:
		b.X = c.X
		side = geom.Facing(rect, b.Point, geom.AxisV)
	case geom.SegFree:
		return geom.Free(c), ""
	default:
		return geom.Bend{}, reasonDangling
	}
	if hint != geom.DirectionAuto && hint != side {
		return geom.Bend{}, reasonForHint(rect == r.source)
	}
	if old.Kind() == geom.BendFree {
		return geom.Free(c), ""
	}
	return geom.DockingPoint(rect, side), ""
}

// redock moves an anchored endpoint onto the side of rect its neighbor
// leaves from, keeping the neighbor's coordinate along that side.
func (r *repairer) redock(rect geom.Rect, hint geom.Direction, end geom.Bend, nb geom.Point) (geom.Bend, string) {
	if end.Kind() == geom.BendFree {
		return end, ""
	}
	var side geom.Direction
	var at geom.Point
	switch geom.Classify(end.Point, nb, r.tol) {
	case geom.SegV:
		if nb.X < rect.Left() || nb.X > rect.Right() {
			return geom.Bend{}, reasonSpan
		}
		side = geom.Facing(rect, nb, geom.AxisV)
		at = geom.Pt(nb.X, rect.Bottom())
		if side == geom.Top {
			at.Y = rect.Top()
		}
	case geom.SegH:
		if nb.Y < rect.Top() || nb.Y > rect.Bottom() {
			return geom.Bend{}, reasonSpan
		}
		side = geom.Facing(rect, nb, geom.AxisH)
		at = geom.Pt(rect.Right(), nb.Y)
		if side == geom.Left {
			at.X = rect.Left()
		}
	default:
		return end, ""
	}
	if hint != geom.DirectionAuto && hint != side {
		return geom.Bend{}, reasonForHint(rect == r.source)
	}
	return geom.Anchored(at, rect.Center()), ""
}

func reasonForHint(start bool) string {
	if start {
		return reasonStartHint
	}
	return reasonEndHint
}

// neighbor returns the waypoint next to the head (or tail).
func (p *path) neighbor(head bool) geom.Point {
	switch {
	case len(p.bends) == 0 && head:
		return p.tail.Point
	case len(p.bends) == 0:
		return p.head.Point
	case head:
		return p.bends[0].Point
	default:
		return p.bends[len(p.bends)-1].Point
	}
}

// neighborKept reports whether the waypoint next to the head (or tail) is
// still the one the input had there.
func neighborKept(p *path, in []geom.Bend, head bool) bool {
	if head {
		return p.neighbor(true) == in[1].Point
	}
	return p.neighbor(false) == in[len(in)-2].Point
}

// validRoute checks the repaired waypoints. Without free-flow segments in
// the input, every segment must be horizontal or vertical.
func validRoute(wp []geom.Bend, freeFlow bool, tol float64) string {
	if len(wp) == 2 && !freeFlow && geom.PointsAligned(wp[0].Point, wp[1].Point, tol) == geom.AxisNone {
		return reasonNoBends
	}
	for i := 1; i < len(wp); i++ {
		switch geom.Classify(wp[i-1].Point, wp[i].Point, tol) {
		case geom.SegPoint:
			return reasonNoBends
		case geom.SegFree:
			if !freeFlow {
				return reasonNotOrthogon
			}
		}
	}
	return ""
}
