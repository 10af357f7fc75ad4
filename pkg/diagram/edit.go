package diagram

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
	"github.com/matzehuels/orthoroute/pkg/observability"
)

// mutate runs fn under the write lock and, when it succeeds, commits the
// events it returns.
func (d *Diagram) mutate(fn func() ([]Event, error)) error {
	d.mu.Lock()
	events, err := fn()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.commit(events)
	return nil
}

// commit bumps the version and delivers events. It is called with d.mu held
// and releases it before listeners run; emitMu keeps deliveries in mutation
// order.
func (d *Diagram) commit(events []Event) {
	d.version++
	d.updatedAt = time.Now().UTC()
	for i := range events {
		events[i].DiagramID = d.opts.ID
		events[i].Version = d.version
	}

	d.emitMu.Lock()
	d.mu.Unlock()
	defer d.emitMu.Unlock()
	for _, e := range events {
		for _, s := range d.listeners {
			s.l.HandleEvent(e)
		}
	}
}

func shapeEvent(t EventType, s *Shape) Event {
	cp := *s
	return Event{Type: t, Shape: &cp}
}

func connectionEvent(t EventType, c *Connection, repair string) Event {
	cp := c.clone()
	return Event{Type: t, Connection: &cp, Repair: repair}
}

func shapeNotFound(id string) error {
	return errs.New(errs.ErrCodeShapeNotFound, "shape %q not found", id)
}

func connectionNotFound(id string) error {
	return errs.New(errs.ErrCodeConnectionNotFound, "connection %q not found", id)
}

// AddShape adds a shape. An empty ID is replaced by a random UUID. The
// returned shape carries its ID and outline.
func (d *Diagram) AddShape(s Shape) (Shape, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := validateShape(s); err != nil {
		return Shape{}, err
	}

	err := d.mutate(func() ([]Event, error) {
		if _, dup := d.shapes[s.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidInput, "shape %q already exists", s.ID)
		}
		s.Outline = d.opts.Outlines.Shape(s.Bounds)
		stored := s
		d.shapes[s.ID] = &stored
		d.shapeOrder = append(d.shapeOrder, s.ID)
		return []Event{shapeEvent(EventShapeAdded, &stored)}, nil
	})
	if err != nil {
		return Shape{}, err
	}
	return s, nil
}

// MoveShape translates a shape by delta and repairs its connections. It
// returns the repaired connections.
func (d *Diagram) MoveShape(ctx context.Context, id string, delta geom.Point) ([]Connection, error) {
	if err := errs.ValidateFinite("delta", delta.X, delta.Y); err != nil {
		return nil, err
	}
	return d.reshape(ctx, id, EventShapeMoved, func(s *Shape) (geom.Rect, error) {
		return s.Bounds.Translate(delta), nil
	})
}

// ResizeShape replaces a shape's bounds and repairs its connections. The
// previous bounds are remembered for RevertResize.
func (d *Diagram) ResizeShape(ctx context.Context, id string, bounds geom.Rect) ([]Connection, error) {
	if err := validateBounds(bounds); err != nil {
		return nil, err
	}
	return d.reshape(ctx, id, EventShapeResized, func(s *Shape) (geom.Rect, error) {
		d.resized[id] = s.Bounds
		return bounds, nil
	})
}

// RevertResize restores the bounds a shape had before its last resize.
func (d *Diagram) RevertResize(ctx context.Context, id string) ([]Connection, error) {
	return d.reshape(ctx, id, EventShapeResizeReverted, func(s *Shape) (geom.Rect, error) {
		prev, ok := d.resized[id]
		if !ok {
			return geom.Rect{}, errs.New(errs.ErrCodeInvalidInput, "shape %q has no resize to revert", id)
		}
		delete(d.resized, id)
		return prev, nil
	})
}

// reshape applies new bounds to a shape, repairs the attached connections
// and refreshes outlines. Nothing changes when a repair fails.
func (d *Diagram) reshape(ctx context.Context, id string, t EventType, bounds func(*Shape) (geom.Rect, error)) ([]Connection, error) {
	var changed []Connection
	err := d.mutate(func() ([]Event, error) {
		s, ok := d.shapes[id]
		if !ok {
			return nil, shapeNotFound(id)
		}
		prevResized, hadResized := d.resized[id]
		restore := func() {
			if hadResized {
				d.resized[id] = prevResized
			} else {
				delete(d.resized, id)
			}
		}

		next, err := bounds(s)
		if err != nil {
			restore()
			return nil, err
		}
		old := s.Bounds
		s.Bounds = next
		repairs, err := d.repairAttached(ctx, id)
		if err != nil {
			s.Bounds = old
			restore()
			return nil, err
		}

		s.Outline = d.opts.Outlines.Shape(s.Bounds)
		events := []Event{shapeEvent(t, s)}
		for _, r := range repairs {
			r.conn.Waypoints = r.res.Waypoints
			r.conn.Outline = d.opts.Outlines.Connection(r.conn.Waypoints)
			events = append(events, connectionEvent(EventConnectionChanged, r.conn, r.res.Kind.String()))
			changed = append(changed, r.conn.clone())
			d.opts.Logger.Debug("repaired connection", "id", r.conn.ID, "kind", r.res.Kind, "reason", r.res.Reason)
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

type repairResult struct {
	conn *Connection
	res  manhattan.Repair
}

// repairAttached repairs every connection touching shapeID in parallel. It
// does not modify the connections. d.mu must be held.
func (d *Diagram) repairAttached(ctx context.Context, shapeID string) ([]repairResult, error) {
	attached := d.attached(shapeID)
	out := make([]repairResult, len(attached))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.RepairConcurrency)
	for i, c := range attached {
		source, target := d.shapes[c.Source].Bounds, d.shapes[c.Target].Bounds
		start, end, wp := c.Start, c.End, c.Waypoints
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			res, err := d.opts.Router.RepairConnection(source, target, start, end, wp)
			observability.Routing().OnRepair(gctx, res.Kind.String(), len(wp), time.Since(began), err)
			if err != nil {
				return fmt.Errorf("repair connection %s: %w", c.ID, err)
			}
			out[i] = repairResult{conn: c, res: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveShape deletes a shape together with its connections.
func (d *Diagram) RemoveShape(id string) error {
	return d.mutate(func() ([]Event, error) {
		s, ok := d.shapes[id]
		if !ok {
			return nil, shapeNotFound(id)
		}
		var events []Event
		for _, c := range d.attached(id) {
			d.removeConnection(c.ID)
			events = append(events, connectionEvent(EventConnectionRemoved, c, ""))
		}
		delete(d.shapes, id)
		delete(d.resized, id)
		d.shapeOrder = deleteID(d.shapeOrder, id)
		return append(events, shapeEvent(EventShapeRemoved, s)), nil
	})
}

// Connect routes a new connection between two shapes.
func (d *Diagram) Connect(ctx context.Context, sourceID, targetID string, start, end geom.Direction) (Connection, error) {
	var conn Connection
	err := d.mutate(func() ([]Event, error) {
		source, ok := d.shapes[sourceID]
		if !ok {
			return nil, shapeNotFound(sourceID)
		}
		target, ok := d.shapes[targetID]
		if !ok {
			return nil, shapeNotFound(targetID)
		}

		began := time.Now()
		wp, err := d.opts.Router.ConnectRectangles(source.Bounds, target.Bounds, start, end)
		observability.Routing().OnConnect(ctx, manhattan.PairOf(wp).String(), len(wp), time.Since(began), err)
		if err != nil {
			return nil, fmt.Errorf("connect %s to %s: %w", sourceID, targetID, err)
		}

		c := &Connection{
			ID:        uuid.NewString(),
			Source:    sourceID,
			Target:    targetID,
			Start:     start,
			End:       end,
			Waypoints: wp,
			Outline:   d.opts.Outlines.Connection(wp),
		}
		d.conns[c.ID] = c
		d.connOrder = append(d.connOrder, c.ID)
		conn = c.clone()
		return []Event{connectionEvent(EventConnectionAdded, c, "")}, nil
	})
	return conn, err
}

// SetWaypoints replaces a connection's waypoints, typically after the user
// dragged a bend. The waypoints are stored as given.
func (d *Diagram) SetWaypoints(id string, waypoints []geom.Bend) (Connection, error) {
	if len(waypoints) < 2 {
		return Connection{}, errs.New(errs.ErrCodeInvalidInput, "a connection needs at least two waypoints, got %d", len(waypoints))
	}
	if err := validateWaypoints(waypoints); err != nil {
		return Connection{}, err
	}

	var conn Connection
	err := d.mutate(func() ([]Event, error) {
		c, ok := d.conns[id]
		if !ok {
			return nil, connectionNotFound(id)
		}
		c.Waypoints = geom.CloneBends(waypoints)
		c.Outline = d.opts.Outlines.Connection(c.Waypoints)
		conn = c.clone()
		return []Event{connectionEvent(EventConnectionChanged, c, "")}, nil
	})
	return conn, err
}

// RemoveConnection deletes a connection.
func (d *Diagram) RemoveConnection(id string) error {
	return d.mutate(func() ([]Event, error) {
		c, ok := d.conns[id]
		if !ok {
			return nil, connectionNotFound(id)
		}
		d.removeConnection(id)
		return []Event{connectionEvent(EventConnectionRemoved, c, "")}, nil
	})
}

func (d *Diagram) removeConnection(id string) {
	delete(d.conns, id)
	d.connOrder = deleteID(d.connOrder, id)
}

func deleteID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
