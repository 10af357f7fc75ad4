package geom

import (
	"fmt"

	errs "github.com/matzehuels/orthoroute/pkg/errors"
)

// InvalidDirectionError is returned when a direction, side or direction pair
// is outside the supported set. It is never coerced to a default.
type InvalidDirectionError struct {
	Value string // the rejected input, as given
}

// Error implements the error interface.
func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("unknown directions: <%s>: directions must be specified as {a direction}:{b direction} (direction in h|v)", e.Value)
}

// Code returns the error code for this error type.
func (e *InvalidDirectionError) Code() errs.Code {
	return errs.ErrCodeInvalidDirection
}

// DegenerateGeometryError is returned when shape geometry makes routing
// undefined: non-positive sizes or two shapes sharing the same center.
type DegenerateGeometryError struct {
	Reason string
}

// Error implements the error interface.
func (e *DegenerateGeometryError) Error() string {
	return "degenerate geometry: " + e.Reason
}

// Code returns the error code for this error type.
func (e *DegenerateGeometryError) Code() errs.Code {
	return errs.ErrCodeDegenerateGeometry
}

func degenerate(format string, args ...any) error {
	return &DegenerateGeometryError{Reason: fmt.Sprintf(format, args...)}
}
