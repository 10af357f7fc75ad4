// Package manhattan computes and repairs orthogonal connections between
// shapes on a diagram.
//
// # Overview
//
// A connection is a polyline of horizontal and vertical segments, stored as a
// slice of [geom.Bend]. The first and last bends dock on the two shapes; the
// ones in between are bend points, either computed by this package or placed
// by a user dragging the connection around.
//
// The package has two halves:
//
//   - The connector ([ConnectPoints], [Layouter.ConnectRectangles]) builds a
//     fresh route for one of four topologies: h:h, h:v, v:h and v:v.
//   - The repair engine ([Layouter.Repair], [Layouter.RepairConnection])
//     updates an existing route after a shape moved, keeping the user's bend
//     points wherever they still make sense.
//
// # Connecting
//
//	wp, err := manhattan.ConnectPoints(geom.Pt(100, 100), geom.Pt(200, 200), geom.PairHV)
//	// [(100,100) (200,100) (200,200)]
//
//	l := manhattan.New(manhattan.Options{})
//	wp, err = l.ConnectRectangles(source, target, geom.DirectionAuto, geom.DirectionAuto)
//
// # Repairing
//
// Repair runs a short pipeline of pure steps over the previous waypoints:
//
//  1. Re-dock: compute how far each shape's center moved relative to the
//     anchor recorded on its endpoint.
//  2. Shift: drag the endpoint and the run of bends hanging off it along the
//     perpendicular axis, preserving the user's bend offsets. Free-flow
//     (diagonal) segments stop the shift and are never straightened.
//  3. Collapse: drop bends that ended up inside a shape or on top of its
//     endpoint, plus duplicate and collinear bends, then reconnect the end.
//  4. Validate: fall back to a full relayout when nothing salvageable remains.
//
// Moving one shape only touches the bends next to it; the other side's bends
// are returned unchanged.
//
// # Concurrency
//
// Every function in this package is pure. Inputs are never modified and
// results never share memory with them, so independent connections can be
// routed from any number of goroutines. Repairs of the same connection must
// be applied in order by the caller.
package manhattan
