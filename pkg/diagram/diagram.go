package diagram

import (
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
	"github.com/matzehuels/orthoroute/pkg/outline"
)

// Router computes and repairs connection routes. *manhattan.Layouter
// implements it.
type Router interface {
	ConnectRectangles(source, target geom.Rect, start, end geom.Direction) ([]geom.Bend, error)
	RepairConnection(source, target geom.Rect, start, end geom.Direction, waypoints []geom.Bend) (manhattan.Repair, error)
}

// Options configures a Diagram. Zero fields take defaults.
type Options struct {
	// ID identifies the diagram; a random UUID when empty.
	ID   string
	Name string

	Router   Router
	Outlines *outline.Provider
	Logger   *log.Logger

	// RepairConcurrency bounds how many connections are repaired in
	// parallel after a shape edit. Defaults to 8.
	RepairConcurrency int
}

func (o *Options) setDefaults() {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Router == nil {
		o.Router = manhattan.New(manhattan.Options{})
	}
	if o.Outlines == nil {
		o.Outlines = outline.New(outline.DefaultOffset)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.RepairConcurrency <= 0 {
		o.RepairConcurrency = 8
	}
}

// Diagram is an editable set of shapes and connections.
type Diagram struct {
	mu     sync.RWMutex
	emitMu sync.Mutex

	opts Options

	version   int64
	updatedAt time.Time

	shapes     map[string]*Shape
	shapeOrder []string
	conns      map[string]*Connection
	connOrder  []string

	// resized holds the bounds a shape had before its last resize.
	resized map[string]geom.Rect

	listeners []subscription
	nextSub   int
}

type subscription struct {
	id int
	l  Listener
}

// New creates an empty diagram.
func New(opts Options) *Diagram {
	opts.setDefaults()
	return &Diagram{
		opts:      opts,
		updatedAt: time.Now().UTC(),
		shapes:    make(map[string]*Shape),
		conns:     make(map[string]*Connection),
		resized:   make(map[string]geom.Rect),
	}
}

// ID returns the diagram's identifier.
func (d *Diagram) ID() string { return d.opts.ID }

// Name returns the diagram's display name.
func (d *Diagram) Name() string { return d.opts.Name }

// Version is incremented by every mutation.
func (d *Diagram) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Subscribe registers l for events and returns a function that removes it.
func (d *Diagram) Subscribe(l Listener) (unsubscribe func()) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	id := d.nextSub
	d.nextSub++
	d.listeners = append(d.listeners, subscription{id: id, l: l})
	return func() {
		d.emitMu.Lock()
		defer d.emitMu.Unlock()
		d.listeners = slices.DeleteFunc(d.listeners, func(s subscription) bool { return s.id == id })
	}
}

// Shape returns a copy of the shape with the given ID.
func (d *Diagram) Shape(id string) (Shape, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.shapes[id]
	if !ok {
		return Shape{}, false
	}
	return *s, true
}

// Shapes returns copies of all shapes in insertion order.
func (d *Diagram) Shapes() []Shape {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Shape, 0, len(d.shapeOrder))
	for _, id := range d.shapeOrder {
		out = append(out, *d.shapes[id])
	}
	return out
}

// Connection returns a copy of the connection with the given ID.
func (d *Diagram) Connection(id string) (Connection, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.conns[id]
	if !ok {
		return Connection{}, false
	}
	return c.clone(), true
}

// Connections returns copies of all connections in insertion order.
func (d *Diagram) Connections() []Connection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Connection, 0, len(d.connOrder))
	for _, id := range d.connOrder {
		out = append(out, d.conns[id].clone())
	}
	return out
}

// ConnectionsOf returns copies of the connections attached to a shape.
func (d *Diagram) ConnectionsOf(shapeID string) []Connection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Connection
	for _, c := range d.attached(shapeID) {
		out = append(out, c.clone())
	}
	return out
}

// attached returns the connections touching shapeID. d.mu must be held.
func (d *Diagram) attached(shapeID string) []*Connection {
	var out []*Connection
	for _, id := range d.connOrder {
		if c := d.conns[id]; c.Source == shapeID || c.Target == shapeID {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot returns the diagram's current state.
func (d *Diagram) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := Snapshot{
		ID:          d.opts.ID,
		Name:        d.opts.Name,
		Version:     d.version,
		UpdatedAt:   d.updatedAt,
		Shapes:      make([]Shape, 0, len(d.shapeOrder)),
		Connections: make([]Connection, 0, len(d.connOrder)),
	}
	for _, id := range d.shapeOrder {
		s.Shapes = append(s.Shapes, *d.shapes[id])
	}
	for _, id := range d.connOrder {
		s.Connections = append(s.Connections, d.conns[id].clone())
	}
	return s
}

// FromSnapshot rebuilds a diagram. opts.ID and opts.Name are taken from the
// snapshot. Outlines are recomputed; waypoints are kept as stored.
func FromSnapshot(s Snapshot, opts Options) (*Diagram, error) {
	if err := errs.ValidateID(s.ID); err != nil {
		return nil, err
	}
	opts.ID, opts.Name = s.ID, s.Name
	d := New(opts)
	d.version = s.Version
	if !s.UpdatedAt.IsZero() {
		d.updatedAt = s.UpdatedAt
	}

	for _, sh := range s.Shapes {
		if err := validateShape(sh); err != nil {
			return nil, err
		}
		if _, dup := d.shapes[sh.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidInput, "duplicate shape id %q", sh.ID)
		}
		sh.Outline = d.opts.Outlines.Shape(sh.Bounds)
		d.shapes[sh.ID] = &sh
		d.shapeOrder = append(d.shapeOrder, sh.ID)
	}
	for _, c := range s.Connections {
		c = c.clone()
		if err := d.validateConnection(c); err != nil {
			return nil, err
		}
		if _, dup := d.conns[c.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidInput, "duplicate connection id %q", c.ID)
		}
		c.Outline = d.opts.Outlines.Connection(c.Waypoints)
		d.conns[c.ID] = &c
		d.connOrder = append(d.connOrder, c.ID)
	}
	return d, nil
}

func validateShape(s Shape) error {
	if err := errs.ValidateID(s.ID); err != nil {
		return err
	}
	return validateBounds(s.Bounds)
}

func validateBounds(r geom.Rect) error {
	if err := errs.ValidateFinite("bounds", r.X, r.Y, r.Width, r.Height); err != nil {
		return err
	}
	return errs.ValidateSize(r.Width, r.Height)
}

// validateConnection checks a connection's references and waypoints.
// d.mu must be held.
func (d *Diagram) validateConnection(c Connection) error {
	if err := errs.ValidateID(c.ID); err != nil {
		return err
	}
	for _, ref := range []string{c.Source, c.Target} {
		if _, ok := d.shapes[ref]; !ok {
			return errs.New(errs.ErrCodeShapeNotFound, "connection %s references unknown shape %q", c.ID, ref)
		}
	}
	if !c.Start.Valid() || !c.End.Valid() {
		return errs.New(errs.ErrCodeInvalidDirection, "connection %s has invalid direction hints", c.ID)
	}
	return validateWaypoints(c.Waypoints)
}

func validateWaypoints(wp []geom.Bend) error {
	for i, b := range wp {
		if err := errs.ValidateFinite("waypoint", b.X, b.Y); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "waypoint %d", i)
		}
		if b.Anchor != nil {
			if err := errs.ValidateFinite("anchor", b.Anchor.X, b.Anchor.Y); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "waypoint %d", i)
			}
		}
	}
	return nil
}
