package geom

import (
	"encoding/json"
	"errors"
	"testing"

	errs "github.com/matzehuels/orthoroute/pkg/errors"
)

func TestDirections(t *testing.T) {
	start := R(100, 100, 100, 100)

	tests := []struct {
		name   string
		target Rect
		want   DirectionPair
	}{
		{"top", R(100, 0, 50, 50), PairVV},
		{"bottom", R(100, 250, 50, 50), PairVV},
		{"right", R(250, 100, 50, 50), PairHH},
		{"left", R(0, 100, 50, 50), PairHH},
		{"near vertical alignment", R(205, 0, 50, 50), PairVV},
		{"near horizontal alignment", R(300, 205, 50, 50), PairHH},
		{"touching columns", R(200, 400, 100, 100), PairVV},
		{"diagonal wide", R(400, 300, 50, 50), PairHV},
		{"diagonal tall", R(300, 500, 50, 50), PairVH},
		{"overlapping, mostly below", R(110, 150, 100, 100), PairVV},
		{"overlapping, mostly right", R(160, 110, 100, 100), PairHH},
		{"x overlap beats near y", R(190, 205, 100, 40), PairVV},
		{"y overlap beats near x", R(205, 190, 40, 100), PairHH},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Directions(start, tt.target, 10)
			if err != nil {
				t.Fatalf("Directions() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Directions() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDirectionsOverlapKeepsBendsOutside(t *testing.T) {
	source := R(135, 21, 112, 20)
	target := R(122, 51, 41, 42)

	got, err := Directions(source, target, 10)
	if err != nil {
		t.Fatalf("Directions() error = %v", err)
	}
	if got != PairVV {
		t.Fatalf("Directions() = %s, want v:v for x-overlapping shapes", got)
	}

	start, end, err := Sides(source, target, got)
	if err != nil {
		t.Fatal(err)
	}
	if start != Bottom || end != Top {
		t.Errorf("Sides() = %s, %s, want bottom, top", start, end)
	}
}

func TestDirectionsToleranceIsConfigurable(t *testing.T) {
	start := R(100, 100, 100, 100)
	end := R(205, 0, 50, 50)

	got, err := Directions(start, end, 0)
	if err != nil {
		t.Fatalf("Directions() error = %v", err)
	}
	if got == PairVV {
		t.Errorf("with zero tolerance a 5px gap should not count as stacked, got %s", got)
	}
}

func TestDirectionsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
	}{
		{"zero width", R(0, 0, 0, 10), R(50, 50, 10, 10)},
		{"negative height", R(0, 0, 10, -1), R(50, 50, 10, 10)},
		{"coincident centers", R(0, 0, 100, 100), R(25, 25, 50, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Directions(tt.a, tt.b, 10)
			var dge *DegenerateGeometryError
			if !errors.As(err, &dge) {
				t.Fatalf("Directions() error = %v, want DegenerateGeometryError", err)
			}
			if !errs.Is(err, errs.ErrCodeDegenerateGeometry) {
				t.Errorf("error code = %v, want %v", errs.GetCode(err), errs.ErrCodeDegenerateGeometry)
			}
		})
	}
}

func TestDockingPoint(t *testing.T) {
	r := R(100, 100, 100, 100)
	center := Pt(150, 150)

	tests := []struct {
		dir  Direction
		want Point
	}{
		{Top, Pt(150, 100)},
		{Right, Pt(200, 150)},
		{Bottom, Pt(150, 200)},
		{Left, Pt(100, 150)},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			got := DockingPoint(r, tt.dir)
			if got.Point != tt.want {
				t.Errorf("DockingPoint(%s) = %s, want %s", tt.dir, got.Point, tt.want)
			}
			if got.Kind() != BendAnchored || *got.Anchor != center {
				t.Errorf("DockingPoint(%s) anchor = %v, want %s", tt.dir, got.Anchor, center)
			}
		})
	}

	if got := DockingPoint(r, DirectionAuto); got.Kind() != BendFree || got.Point != center {
		t.Errorf("DockingPoint(auto) = %+v, want free center", got)
	}
}

func TestSides(t *testing.T) {
	a := R(100, 100, 100, 100)

	tests := []struct {
		name       string
		b          Rect
		pair       DirectionPair
		start, end Direction
	}{
		{"h:h right", R(300, 100, 50, 50), PairHH, Right, Left},
		{"h:h left", R(0, 100, 50, 50), PairHH, Left, Right},
		{"v:v below", R(100, 300, 50, 50), PairVV, Bottom, Top},
		{"v:v above", R(100, 0, 50, 50), PairVV, Top, Bottom},
		{"h:v below right", R(300, 300, 50, 50), PairHV, Right, Top},
		{"v:h above left", R(0, 0, 50, 50), PairVH, Top, Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := Sides(a, tt.b, tt.pair)
			if err != nil {
				t.Fatalf("Sides() error = %v", err)
			}
			if start != tt.start || end != tt.end {
				t.Errorf("Sides() = %s, %s, want %s, %s", start, end, tt.start, tt.end)
			}
		})
	}

	if _, _, err := Sides(a, a, PairNone); err == nil {
		t.Error("Sides(PairNone) should fail")
	}
}

func TestParseDirectionPair(t *testing.T) {
	for _, s := range []string{"h:h", "h:v", "v:h", "v:v"} {
		p, err := ParseDirectionPair(s)
		if err != nil {
			t.Fatalf("ParseDirectionPair(%q) error = %v", s, err)
		}
		if p.String() != s {
			t.Errorf("round trip %q -> %q", s, p.String())
		}
	}

	for _, s := range []string{"x:y", "H:V", "h", "h:v:v", "", " h:v", "horizontal:vertical"} {
		_, err := ParseDirectionPair(s)
		var ide *InvalidDirectionError
		if !errors.As(err, &ide) {
			t.Errorf("ParseDirectionPair(%q) error = %v, want InvalidDirectionError", s, err)
			continue
		}
		if ide.Value != s {
			t.Errorf("InvalidDirectionError.Value = %q, want %q", ide.Value, s)
		}
	}
}

func TestDirectionPairAxes(t *testing.T) {
	tests := []struct {
		pair       DirectionPair
		start, end Axis
		reverse    DirectionPair
	}{
		{PairHH, AxisH, AxisH, PairHH},
		{PairHV, AxisH, AxisV, PairVH},
		{PairVH, AxisV, AxisH, PairHV},
		{PairVV, AxisV, AxisV, PairVV},
	}

	for _, tt := range tests {
		t.Run(tt.pair.String(), func(t *testing.T) {
			if tt.pair.Start() != tt.start || tt.pair.End() != tt.end {
				t.Errorf("axes = %s:%s, want %s:%s", tt.pair.Start(), tt.pair.End(), tt.start, tt.end)
			}
			if tt.pair.Reverse() != tt.reverse {
				t.Errorf("Reverse() = %s, want %s", tt.pair.Reverse(), tt.reverse)
			}
			built, err := NewDirectionPair(tt.start, tt.end)
			if err != nil || built != tt.pair {
				t.Errorf("NewDirectionPair() = %s, %v", built, err)
			}
		})
	}
}

func TestDirectionJSON(t *testing.T) {
	type hints struct {
		Start Direction     `json:"start"`
		Pair  DirectionPair `json:"pair"`
	}

	var h hints
	if err := json.Unmarshal([]byte(`{"start":"left","pair":"v:h"}`), &h); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if h.Start != Left || h.Pair != PairVH {
		t.Errorf("got %+v", h)
	}

	if err := json.Unmarshal([]byte(`{"start":"left","pair":"x:y"}`), &h); err == nil {
		t.Error("Unmarshal should reject an unknown pair")
	}
	if err := json.Unmarshal([]byte(`{"start":"middle"}`), &h); err == nil {
		t.Error("Unmarshal should reject an unknown side")
	}

	for _, raw := range []string{`" h:v"`, `"h:v "`, `"H:V"`, `""`} {
		var p DirectionPair
		err := json.Unmarshal([]byte(raw), &p)
		var ide *InvalidDirectionError
		if !errors.As(err, &ide) {
			t.Errorf("Unmarshal(%s) error = %v, want InvalidDirectionError", raw, err)
		}
	}
}

func TestBendJSON(t *testing.T) {
	bends := []Bend{Anchored(Pt(150, 200), Pt(150, 150)), Free(Pt(150, 300))}

	data, err := json.Marshal(bends)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	want := `[{"x":150,"y":200,"original":{"x":150,"y":150}},{"x":150,"y":300}]`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back []Bend
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if !EqualBends(back, bends) {
		t.Errorf("round trip = %+v", back)
	}
}

func TestCloneBends(t *testing.T) {
	orig := []Bend{Anchored(Pt(1, 2), Pt(3, 4))}
	cp := CloneBends(orig)
	cp[0].Anchor.X = 99

	if orig[0].Anchor.X != 3 {
		t.Error("CloneBends shares anchor memory with the input")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want Segment
	}{
		{"point", Pt(1, 1), Pt(1, 1), SegPoint},
		{"horizontal", Pt(0, 5), Pt(10, 5), SegH},
		{"vertical", Pt(5, 0), Pt(5, 10), SegV},
		{"diagonal", Pt(0, 0), Pt(10, 10), SegFree},
		{"within tolerance", Pt(0, 5), Pt(10, 5.5), SegH},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.a, tt.b, 1); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectInterior(t *testing.T) {
	r := R(250, 300, 100, 100)

	if !r.Interior(Pt(300, 350)) {
		t.Error("center should be interior")
	}
	if r.Interior(Pt(300, 300)) {
		t.Error("boundary point should not be interior")
	}
	if r.Interior(Pt(150, 350)) {
		t.Error("outside point should not be interior")
	}
}

func TestBounds(t *testing.T) {
	got := Bounds([]Point{Pt(150, 200), Pt(150, 350), Pt(250, 350)})
	if got != R(150, 200, 100, 150) {
		t.Errorf("Bounds() = %s", got)
	}
	if Bounds(nil) != (Rect{}) {
		t.Error("Bounds(nil) should be the zero rect")
	}
}
