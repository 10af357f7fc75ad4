package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	"github.com/matzehuels/orthoroute/pkg/geom"
)

// DefaultEngine is the Graphviz layout engine used when none is set. It
// must honour pinned positions.
const DefaultEngine = "neato"

// Options configures diagram rendering.
type Options struct {
	// Engine is the Graphviz layout engine. Only engines that respect
	// pos="x,y!" (neato, fdp, nop) produce faithful output.
	Engine string
	// Outlines draws each shape's selection outline as a dashed box.
	Outlines bool
	// Waypoints marks every bend with a visible dot.
	Waypoints bool
}

func (o Options) engine() string {
	if o.Engine == "" {
		return DefaultEngine
	}
	return o.Engine
}

// ToDOT converts a snapshot to a DOT graph with every position pinned.
func ToDOT(s diagram.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", opts.engine())
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fixedsize=true];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	for _, sh := range s.Shapes {
		attrs := []string{
			fmt.Sprintf("label=%q", shapeLabel(sh)),
			pos(sh.Bounds.Center()),
			size(sh.Bounds),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", "shape:"+sh.ID, strings.Join(attrs, ", "))
		if opts.Outlines && sh.Outline.Width > 0 {
			attrs := []string{
				`label=""`,
				`style="dashed"`,
				"color=steelblue",
				pos(sh.Outline.Center()),
				size(sh.Outline),
			}
			fmt.Fprintf(&buf, "  %q [%s];\n", "outline:"+sh.ID, strings.Join(attrs, ", "))
		}
	}

	for _, c := range s.Connections {
		if len(c.Waypoints) < 2 {
			continue
		}
		buf.WriteString("\n")
		width := "0.01"
		if opts.Waypoints {
			width = "0.06"
		}
		for i, b := range c.Waypoints {
			fmt.Fprintf(&buf, "  %q [shape=point, width=%s, %s];\n", waypointID(c.ID, i), width, pos(b.Point))
		}
		last := len(c.Waypoints) - 1
		for i := 0; i < last; i++ {
			attr := ""
			if i == last-1 {
				attr = " [arrowhead=normal]"
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", waypointID(c.ID, i), waypointID(c.ID, i+1), attr)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func shapeLabel(s diagram.Shape) string {
	if s.Label != "" {
		return s.Label
	}
	return s.ID
}

func waypointID(connID string, i int) string {
	return "conn:" + connID + ":" + strconv.Itoa(i)
}

// pos pins a node, flipping y into Graphviz orientation.
func pos(p geom.Point) string {
	return fmt.Sprintf("pos=\"%s,%s!\"", num(p.X), num(-p.Y))
}

// size converts a rect's extent from points to inches.
func size(r geom.Rect) string {
	return fmt.Sprintf("width=%s, height=%s", num(r.Width/72), num(r.Height/72))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(opts.engine()))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Snapshot is ToDOT followed by RenderSVG.
func Snapshot(ctx context.Context, s diagram.Snapshot, opts Options) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(s, opts), opts)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and carries explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
