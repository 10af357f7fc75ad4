// Package geom provides the plane geometry used by the orthogonal router.
//
// # Overview
//
// Connections on a diagram are polylines of axis-aligned segments. This
// package holds the value types those polylines are made of and the small
// pure functions the router builds on:
//
//   - [Point] and [Rect]: plane coordinates and shape bounds
//   - [Bend]: a waypoint, optionally anchored to the center of a shape
//   - [Direction], [Axis] and [DirectionPair]: which side of a shape a
//     connection docks on, and the h/v topology of a connection
//
// # Directions
//
// [Directions] classifies how two rectangles sit relative to each other and
// returns the pair a connection between them should use:
//
//	pair, err := geom.Directions(source, target, 10)
//	// pair == geom.PairVV when the shapes are stacked on top of each other
//
// Shapes that almost overlap on one axis (within the tolerance) are routed on
// the other axis. A v:v route between two nearly aligned columns reads better
// than an h:h zig-zag squeezed into the gap between them.
//
// # Docking
//
// [DockingPoint] projects a rectangle's center onto one of its sides. The
// returned [Bend] keeps the center as its anchor, so later repairs can tell a
// shape-derived endpoint from a point the user placed by hand:
//
//	b := geom.DockingPoint(geom.Rect{X: 100, Y: 100, Width: 100, Height: 100}, geom.Bottom)
//	// b.Point == {150, 200}, *b.Anchor == {150, 150}
//
// # Wire Format
//
// Direction pairs travel as the strings "h:h", "h:v", "v:h" and "v:v".
// [ParseDirectionPair] is the only place that accepts them; anything else
// fails with an [InvalidDirectionError].
package geom
