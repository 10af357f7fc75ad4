// Package diagram holds an editable diagram: shapes, the connections between
// them and their outlines.
//
// A [Diagram] is the collaborator that decides when routing happens. Adding a
// connection routes it from scratch; moving or resizing a shape repairs every
// connection attached to it and refreshes the affected outlines. Every change
// is reported to the registered [Listener]s after it has been applied.
//
// # Usage
//
//	d := diagram.New(diagram.Options{Name: "checkout flow"})
//	a, _ := d.AddShape(diagram.Shape{Label: "cart", Bounds: geom.R(100, 100, 100, 80)})
//	b, _ := d.AddShape(diagram.Shape{Label: "payment", Bounds: geom.R(400, 300, 100, 80)})
//	c, _ := d.Connect(ctx, a.ID, b.ID, geom.DirectionAuto, geom.DirectionAuto)
//
//	// Drag the payment shape; c is repaired, the user's bends are kept.
//	changed, _ := d.MoveShape(ctx, b.ID, geom.Pt(40, 0))
//
// # Persistence
//
// [Diagram.Snapshot] returns a plain value that serializes to JSON and BSON;
// [FromSnapshot] rebuilds a diagram from it.
//
// # Concurrency
//
// A Diagram is safe for concurrent use. Mutations are serialized; the
// connections attached to a moved shape are repaired in parallel. Listeners
// run synchronously, in mutation order, and may read the diagram but must not
// modify it.
package diagram
