package manhattan

import (
	"fmt"
	"testing"

	"github.com/matzehuels/orthoroute/pkg/geom"
)

func pt(x, y float64) geom.Bend { return geom.Free(geom.Pt(x, y)) }

func docked(x, y, ax, ay float64) geom.Bend {
	return geom.Anchored(geom.Pt(x, y), geom.Pt(ax, ay))
}

func assertBends(t *testing.T, got, want []geom.Bend) {
	t.Helper()
	if !geom.EqualBends(got, want) {
		t.Errorf("waypoints\n got: %v\nwant: %v", fmt.Sprint(got), fmt.Sprint(want))
	}
}

func concat(parts ...[]geom.Bend) []geom.Bend {
	var out []geom.Bend
	for _, p := range parts {
		out = append(out, geom.CloneBends(p)...)
	}
	return out
}
