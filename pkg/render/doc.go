// Package render draws diagram snapshots with Graphviz.
//
// # Overview
//
// Routing already fixed every coordinate, so rendering only has to place
// things where they are. [ToDOT] writes a DOT graph in which each shape is
// a fixed-size box pinned at its center (pos="x,y!") and each connection is
// a chain of invisible point nodes, one per waypoint, joined by straight
// edges. The neato engine honours pinned positions; inputscale=72 makes
// positions read as points, so canvas pixels map 1:1.
//
//	dot := render.ToDOT(snapshot, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot, render.Options{})
//	pdf, err := render.ToPDF(svg)
//
// Graphviz's y axis points up; ToDOT flips y so the picture matches the
// canvas.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert tool
// (from librsvg).
package render
