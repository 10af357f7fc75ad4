package cli

import (
	"strconv"
	"strings"

	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
)

// parseNumbers splits a comma-separated list of exactly n numbers.
func parseNumbers(s string, n int, what string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s %q: want %d comma-separated numbers", what, s, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "%s %q", what, s)
		}
		if err := errs.ValidateFinite(what, v); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (geom.Point, error) {
	v, err := parseNumbers(s, 2, "point")
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(v[0], v[1]), nil
}

// parseRect parses "x,y,width,height" and rejects negative sizes.
func parseRect(s string) (geom.Rect, error) {
	v, err := parseNumbers(s, 4, "rectangle")
	if err != nil {
		return geom.Rect{}, err
	}
	r := geom.R(v[0], v[1], v[2], v[3])
	if err := r.Validate(); err != nil {
		return geom.Rect{}, err
	}
	return r, nil
}
