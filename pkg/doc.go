// Package pkg provides the libraries behind orthoroute, an orthogonal
// connection router for diagram editors.
//
// # Overview
//
// Orthoroute draws Manhattan (right-angled) routes between rectangles and
// keeps them tidy while shapes are dragged or resized. Instead of routing from
// scratch on every change, a repair shifts the bends the move touched and
// keeps the rest of the user's route. The pkg directory is organized into:
//
//  1. [geom] and [manhattan] - Geometry and the routing engine
//  2. [outline] and [diagram] - Shapes, connections and change events
//  3. [cache], [storage] and [config] - Infrastructure
//  4. [render] and [api] - Output and the HTTP/websocket surface
//
// # Architecture
//
// The typical data flow of an edit:
//
//	Client drags a shape
//	         ↓
//	    [diagram] package (move shape, collect attached connections)
//	         ↓
//	    [manhattan] package (repair each connection concurrently)
//	         ↓
//	    [outline] package (refresh selection outlines)
//	         ↓
//	    listeners / [storage] / [render]
//
// # Quick Start
//
// Route two shapes and repair the route after the target moved:
//
//	l := manhattan.New(manhattan.Options{})
//
//	a := geom.R(0, 0, 100, 100)
//	b := geom.R(300, 200, 100, 100)
//	wp, _ := l.ConnectRectangles(a, b, geom.Right, geom.Left)
//
//	moved := b.Translate(geom.Pt(0, 20))
//	rep, _ := l.RepairConnection(a, moved, geom.Right, geom.Left, wp)
//	fmt.Println(rep.Kind, rep.Waypoints)
//
// # Main Packages
//
// [geom] - Points, rectangles, bends with optional anchors, sides and
// direction pairs. [geom.Directions] classifies the relative placement of two
// shapes.
//
// [manhattan] - ConnectPoints, ConnectRectangles and RepairConnection.
// [manhattan.CachedLayouter] memoizes results in a [cache.Cache].
//
// [diagram] - A concurrent-safe diagram of shapes and connections. Every edit
// repairs the attached connections and notifies listeners in order.
//
// [storage] - Snapshot persistence: memory, file and MongoDB backends.
//
// [cache] - Byte caches (file, Redis, null) with hashed keys and retry
// helpers for transient backend failures.
//
// [render] - Graphviz (DOT, SVG) rendering of diagram snapshots, plus PDF
// and PNG conversion.
//
// [api] - chi HTTP routes for routing, repairs and diagram editing, and a
// websocket live session per diagram.
//
// [config] - TOML configuration and backend construction.
//
// [observability] - Hooks for routing, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/manhattan/...          # Specific package
//	go test -run Example                 # Examples only
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/geom
// [manhattan]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/manhattan
// [outline]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/outline
// [diagram]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/diagram
// [cache]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/storage
// [config]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/config
// [render]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/render
// [api]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/observability
// [geom.Directions]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/geom#Directions
// [manhattan.CachedLayouter]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/manhattan#CachedLayouter
// [cache.Cache]: https://pkg.go.dev/github.com/matzehuels/orthoroute/pkg/cache#Cache
package pkg
