package manhattan

import "github.com/matzehuels/orthoroute/pkg/geom"

const (
	// DefaultAlignTolerance is the gap, in canvas units, below which two
	// shapes still count as aligned on an axis when picking directions.
	DefaultAlignTolerance = 10.0

	// DefaultCollapseTolerance is the distance below which two bends are
	// considered the same point during repair.
	DefaultCollapseTolerance = 1.0

	// DefaultPair is used by ConnectPoints when no pair is given.
	DefaultPair = geom.PairHH
)

// Options configures a Layouter. Zero values select the defaults.
type Options struct {
	// AlignTolerance is passed to geom.Directions. It is an absolute
	// distance, not a fraction of the shape size.
	AlignTolerance float64 `json:"align_tolerance" toml:"align_tolerance"`

	// CollapseTolerance decides when repaired bends coincide.
	CollapseTolerance float64 `json:"collapse_tolerance" toml:"collapse_tolerance"`
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.AlignTolerance <= 0 {
		o.AlignTolerance = DefaultAlignTolerance
	}
	if o.CollapseTolerance <= 0 {
		o.CollapseTolerance = DefaultCollapseTolerance
	}
}

// Layouter routes and repairs connections with a fixed set of options.
// It holds no mutable state and is safe for concurrent use.
type Layouter struct {
	opts Options
}

// New creates a Layouter. Zero option fields take their defaults.
func New(opts Options) *Layouter {
	opts.SetDefaults()
	return &Layouter{opts: opts}
}

// Options returns the effective options.
func (l *Layouter) Options() Options { return l.opts }

var defaultLayouter = New(Options{})

// ConnectRectangles routes between two shapes with the default options.
func ConnectRectangles(source, target geom.Rect, start, end geom.Direction) ([]geom.Bend, error) {
	return defaultLayouter.ConnectRectangles(source, target, start, end)
}

// RepairConnection repairs waypoints with the default options.
func RepairConnection(source, target geom.Rect, start, end geom.Direction, waypoints []geom.Bend) (Repair, error) {
	return defaultLayouter.RepairConnection(source, target, start, end, waypoints)
}
