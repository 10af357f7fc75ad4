package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	"github.com/matzehuels/orthoroute/pkg/geom"
)

func sample() diagram.Snapshot {
	return diagram.Snapshot{
		ID: "d",
		Shapes: []diagram.Shape{
			{ID: "a", Label: "Start", Bounds: geom.R(0, 0, 144, 72), Outline: geom.R(-5, -5, 154, 82)},
			{ID: "b", Bounds: geom.R(300, 200, 72, 72)},
		},
		Connections: []diagram.Connection{{
			ID: "c1", Source: "a", Target: "b",
			Waypoints: []geom.Bend{
				geom.Anchored(geom.Pt(144, 36), geom.Pt(72, 36)),
				geom.Free(geom.Pt(222, 36)),
				geom.Free(geom.Pt(222, 236)),
				geom.Anchored(geom.Pt(300, 236), geom.Pt(336, 236)),
			},
		}},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G {",
		"layout=neato;",
		"inputscale=72;",
		`"shape:a" [label="Start", pos="72,-36!", width=2, height=1];`,
		`"shape:b" [label="b", pos="336,-236!", width=1, height=1];`,
		`"conn:c1:0" [shape=point, width=0.01, pos="144,-36!"];`,
		`"conn:c1:0" -> "conn:c1:1";`,
		`"conn:c1:2" -> "conn:c1:3" [arrowhead=normal];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "outline:") {
		t.Error("ToDOT() drew outlines without Options.Outlines")
	}
}

func TestToDOTOptions(t *testing.T) {
	dot := ToDOT(sample(), Options{Engine: "fdp", Outlines: true, Waypoints: true})

	if !strings.Contains(dot, "layout=fdp;") {
		t.Error("engine not applied")
	}
	if !strings.Contains(dot, `"outline:a"`) {
		t.Error("outline for a missing")
	}
	if strings.Contains(dot, `"outline:b"`) {
		t.Error("b has no outline and should not get one")
	}
	if !strings.Contains(dot, "width=0.06") {
		t.Error("visible waypoints missing")
	}
}

func TestToDOTSkipsShortConnections(t *testing.T) {
	s := sample()
	s.Connections[0].Waypoints = s.Connections[0].Waypoints[:1]
	if dot := ToDOT(s, Options{}); strings.Contains(dot, "conn:") {
		t.Errorf("single-point connection rendered:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "negative origin",
			svg:  `<svg viewBox="-4 -4 100 50">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := Snapshot(context.Background(), sample(), Options{})
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`, Options{}); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}

func TestConvertSVG(t *testing.T) {
	in := []byte("<svg/>")
	out, err := Convert(in, "svg", 1)
	if err != nil || string(out) != "<svg/>" {
		t.Errorf("Convert(svg) = %q, %v", out, err)
	}
	if _, err := Convert(in, "gif", 1); err == nil {
		t.Error("Convert(gif) should fail")
	}
}
