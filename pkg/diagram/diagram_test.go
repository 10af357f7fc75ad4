package diagram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
)

func newTestDiagram(t *testing.T) *Diagram {
	t.Helper()
	return New(Options{ID: "d1", Name: "test", Logger: log.New(nopWriter{})})
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func mustAdd(t *testing.T, d *Diagram, id string, r geom.Rect) Shape {
	t.Helper()
	s, err := d.AddShape(Shape{ID: id, Bounds: r})
	if err != nil {
		t.Fatalf("AddShape(%s) error = %v", id, err)
	}
	return s
}

func mustConnect(t *testing.T, d *Diagram, src, tgt string, start, end geom.Direction) Connection {
	t.Helper()
	c, err := d.Connect(context.Background(), src, tgt, start, end)
	if err != nil {
		t.Fatalf("Connect(%s, %s) error = %v", src, tgt, err)
	}
	return c
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) HandleEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func equalTypes(a, b []EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddShape(t *testing.T) {
	d := newTestDiagram(t)

	s := mustAdd(t, d, "a", geom.R(0, 0, 100, 50))
	if want := geom.R(-5, -5, 110, 60); s.Outline != want {
		t.Errorf("outline = %v, want %v", s.Outline, want)
	}
	if d.Version() != 1 {
		t.Errorf("version = %d, want 1", d.Version())
	}

	generated, err := d.AddShape(Shape{Bounds: geom.R(0, 0, 10, 10)})
	if err != nil {
		t.Fatalf("AddShape() error = %v", err)
	}
	if generated.ID == "" {
		t.Error("expected a generated ID")
	}

	if _, err := d.AddShape(Shape{ID: "a", Bounds: geom.R(0, 0, 1, 1)}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("duplicate: error = %v, want INVALID_INPUT", err)
	}
	if _, err := d.AddShape(Shape{ID: "bad", Bounds: geom.R(0, 0, -1, 1)}); !errs.IsInput(err) {
		t.Errorf("negative size: error = %v, want input error", err)
	}
	if got := len(d.Shapes()); got != 2 {
		t.Errorf("len(Shapes()) = %d, want 2", got)
	}
}

func TestConnect(t *testing.T) {
	d := newTestDiagram(t)
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	mustAdd(t, d, "b", geom.R(300, 0, 100, 100))

	c := mustConnect(t, d, "a", "b", geom.DirectionAuto, geom.DirectionAuto)

	want := []geom.Bend{
		geom.Anchored(geom.Pt(100, 50), geom.Pt(50, 50)),
		geom.Anchored(geom.Pt(300, 50), geom.Pt(350, 50)),
	}
	if !geom.EqualBends(c.Waypoints, want) {
		t.Errorf("waypoints = %v, want %v", c.Waypoints, want)
	}
	if wantOutline := geom.R(95, 45, 210, 10); c.Outline != wantOutline {
		t.Errorf("outline = %v, want %v", c.Outline, wantOutline)
	}
	if got := d.ConnectionsOf("b"); len(got) != 1 || got[0].ID != c.ID {
		t.Errorf("ConnectionsOf(b) = %v", got)
	}

	if _, err := d.Connect(context.Background(), "a", "missing", 0, 0); !errs.Is(err, errs.ErrCodeShapeNotFound) {
		t.Errorf("unknown target: error = %v, want SHAPE_NOT_FOUND", err)
	}
	if _, err := d.Connect(context.Background(), "a", "b", geom.Direction(9), 0); !errs.Is(err, errs.ErrCodeInvalidDirection) {
		t.Errorf("bad direction: error = %v, want INVALID_DIRECTION", err)
	}
}

func TestMoveShapeRepairsConnections(t *testing.T) {
	d := newTestDiagram(t)
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	mustAdd(t, d, "b", geom.R(300, 200, 100, 100))
	c := mustConnect(t, d, "a", "b", geom.Right, geom.Left)

	rec := &recorder{}
	d.Subscribe(rec)

	changed, err := d.MoveShape(context.Background(), "b", geom.Pt(0, 20))
	if err != nil {
		t.Fatalf("MoveShape() error = %v", err)
	}
	if len(changed) != 1 || changed[0].ID != c.ID {
		t.Fatalf("changed = %v, want connection %s", changed, c.ID)
	}

	want := []geom.Bend{
		geom.Anchored(geom.Pt(100, 50), geom.Pt(50, 50)),
		geom.Free(geom.Pt(200, 50)),
		geom.Free(geom.Pt(200, 270)),
		geom.Anchored(geom.Pt(300, 270), geom.Pt(350, 270)),
	}
	if !geom.EqualBends(changed[0].Waypoints, want) {
		t.Errorf("waypoints = %v, want %v", changed[0].Waypoints, want)
	}

	wantTypes := []EventType{EventShapeMoved, EventConnectionChanged}
	if got := rec.types(); !equalTypes(got, wantTypes) {
		t.Fatalf("events = %v, want %v", got, wantTypes)
	}
	ev := rec.events[1]
	if ev.Repair != manhattan.RepairAdjusted.String() {
		t.Errorf("repair = %q, want adjusted", ev.Repair)
	}
	if ev.DiagramID != "d1" || ev.Version != d.Version() {
		t.Errorf("event stamp = %s@%d, want d1@%d", ev.DiagramID, ev.Version, d.Version())
	}

	b, _ := d.Shape("b")
	if b.Bounds != geom.R(300, 220, 100, 100) {
		t.Errorf("bounds = %v", b.Bounds)
	}
	if b.Outline != geom.R(295, 215, 110, 110) {
		t.Errorf("outline = %v", b.Outline)
	}
}

func TestMoveShapeRelayoutsStraightConnection(t *testing.T) {
	d := newTestDiagram(t)
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	mustAdd(t, d, "b", geom.R(300, 0, 100, 100))
	mustConnect(t, d, "a", "b", geom.DirectionAuto, geom.DirectionAuto)

	changed, err := d.MoveShape(context.Background(), "b", geom.Pt(0, 5))
	if err != nil {
		t.Fatalf("MoveShape() error = %v", err)
	}

	want := []geom.Bend{
		geom.Anchored(geom.Pt(100, 50), geom.Pt(50, 50)),
		geom.Free(geom.Pt(200, 50)),
		geom.Free(geom.Pt(200, 55)),
		geom.Anchored(geom.Pt(300, 55), geom.Pt(350, 55)),
	}
	if !geom.EqualBends(changed[0].Waypoints, want) {
		t.Errorf("waypoints = %v, want %v", changed[0].Waypoints, want)
	}
}

type failingRouter struct{ manhattan.Layouter }

func (failingRouter) RepairConnection(geom.Rect, geom.Rect, geom.Direction, geom.Direction, []geom.Bend) (manhattan.Repair, error) {
	return manhattan.Repair{}, errs.New(errs.ErrCodeDegenerateGeometry, "boom")
}

func TestMoveShapeFailureLeavesDiagramUntouched(t *testing.T) {
	d := New(Options{Router: &failingRouter{Layouter: *manhattan.New(manhattan.Options{})}, Logger: log.New(nopWriter{})})
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	mustAdd(t, d, "b", geom.R(300, 0, 100, 100))
	before := mustConnect(t, d, "a", "b", 0, 0)
	version := d.Version()

	_, err := d.MoveShape(context.Background(), "b", geom.Pt(10, 10))
	if !errs.Is(err, errs.ErrCodeDegenerateGeometry) {
		t.Fatalf("error = %v, want DEGENERATE_GEOMETRY", err)
	}
	if d.Version() != version {
		t.Errorf("version changed to %d", d.Version())
	}
	b, _ := d.Shape("b")
	if b.Bounds != geom.R(300, 0, 100, 100) {
		t.Errorf("bounds = %v, want unchanged", b.Bounds)
	}
	after, _ := d.Connection(before.ID)
	if !geom.EqualBends(after.Waypoints, before.Waypoints) {
		t.Errorf("waypoints changed to %v", after.Waypoints)
	}
}

func TestResizeAndRevert(t *testing.T) {
	d := newTestDiagram(t)
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	ctx := context.Background()

	if _, err := d.RevertResize(ctx, "a"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("revert without resize: error = %v", err)
	}
	if _, err := d.ResizeShape(ctx, "a", geom.R(0, 0, 200, 50)); err != nil {
		t.Fatalf("ResizeShape() error = %v", err)
	}
	if s, _ := d.Shape("a"); s.Bounds != geom.R(0, 0, 200, 50) {
		t.Errorf("bounds after resize = %v", s.Bounds)
	}
	if _, err := d.RevertResize(ctx, "a"); err != nil {
		t.Fatalf("RevertResize() error = %v", err)
	}
	if s, _ := d.Shape("a"); s.Bounds != geom.R(0, 0, 100, 100) {
		t.Errorf("bounds after revert = %v", s.Bounds)
	}
	if _, err := d.RevertResize(ctx, "a"); err == nil {
		t.Error("second revert should fail")
	}
	if _, err := d.ResizeShape(ctx, "missing", geom.R(0, 0, 1, 1)); !errs.IsNotFound(err) {
		t.Errorf("missing shape: error = %v", err)
	}
}

func TestRemoveShapeRemovesConnections(t *testing.T) {
	d := newTestDiagram(t)
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	mustAdd(t, d, "b", geom.R(300, 0, 100, 100))
	mustAdd(t, d, "c", geom.R(0, 300, 100, 100))
	mustConnect(t, d, "a", "b", 0, 0)
	kept := mustConnect(t, d, "a", "c", 0, 0)

	rec := &recorder{}
	d.Subscribe(rec)
	if err := d.RemoveShape("b"); err != nil {
		t.Fatalf("RemoveShape() error = %v", err)
	}

	want := []EventType{EventConnectionRemoved, EventShapeRemoved}
	if got := rec.types(); !equalTypes(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	conns := d.Connections()
	if len(conns) != 1 || conns[0].ID != kept.ID {
		t.Errorf("connections = %v, want only %s", conns, kept.ID)
	}
	if err := d.RemoveShape("b"); !errs.Is(err, errs.ErrCodeShapeNotFound) {
		t.Errorf("second remove: error = %v", err)
	}
}

func TestSetWaypointsAndRemoveConnection(t *testing.T) {
	d := newTestDiagram(t)
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	mustAdd(t, d, "b", geom.R(300, 200, 100, 100))
	c := mustConnect(t, d, "a", "b", 0, 0)

	wp := []geom.Bend{geom.Free(geom.Pt(50, 50)), geom.Free(geom.Pt(350, 50)), geom.Free(geom.Pt(350, 250))}
	got, err := d.SetWaypoints(c.ID, wp)
	if err != nil {
		t.Fatalf("SetWaypoints() error = %v", err)
	}
	wp[0].X = 999
	if got.Waypoints[0].X != 50 {
		t.Error("SetWaypoints kept a reference to the caller's slice")
	}
	if got.Outline != geom.R(45, 45, 310, 210) {
		t.Errorf("outline = %v", got.Outline)
	}

	if _, err := d.SetWaypoints(c.ID, wp[:1]); !errs.IsInput(err) {
		t.Errorf("single waypoint: error = %v", err)
	}
	if _, err := d.SetWaypoints("nope", wp); !errs.Is(err, errs.ErrCodeConnectionNotFound) {
		t.Errorf("unknown connection: error = %v", err)
	}

	if err := d.RemoveConnection(c.ID); err != nil {
		t.Fatalf("RemoveConnection() error = %v", err)
	}
	if _, ok := d.Connection(c.ID); ok {
		t.Error("connection still present")
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	d := newTestDiagram(t)
	var n int
	unsubscribe := d.Subscribe(ListenerFunc(func(Event) { n++ }))

	mustAdd(t, d, "a", geom.R(0, 0, 10, 10))
	unsubscribe()
	mustAdd(t, d, "b", geom.R(0, 0, 10, 10))

	if n != 1 {
		t.Errorf("listener called %d times, want 1", n)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := newTestDiagram(t)
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	mustAdd(t, d, "b", geom.R(300, 200, 100, 100))
	c := mustConnect(t, d, "a", "b", 0, 0)

	snap := d.Snapshot()
	if snap.ID != "d1" || snap.Version != d.Version() {
		t.Errorf("snapshot header = %s@%d", snap.ID, snap.Version)
	}

	restored, err := FromSnapshot(snap, Options{Logger: log.New(nopWriter{})})
	if err != nil {
		t.Fatalf("FromSnapshot() error = %v", err)
	}
	if restored.ID() != "d1" || restored.Version() != snap.Version {
		t.Errorf("restored header = %s@%d", restored.ID(), restored.Version())
	}
	got, ok := restored.Connection(c.ID)
	if !ok || !geom.EqualBends(got.Waypoints, c.Waypoints) {
		t.Errorf("restored connection = %v", got)
	}

	broken := d.Snapshot()
	broken.Connections[0].Source = "ghost"
	if _, err := FromSnapshot(broken, Options{}); !errs.Is(err, errs.ErrCodeShapeNotFound) {
		t.Errorf("dangling reference: error = %v", err)
	}
}

func TestMoveShapeHonoursCancellation(t *testing.T) {
	d := newTestDiagram(t)
	mustAdd(t, d, "a", geom.R(0, 0, 100, 100))
	mustAdd(t, d, "b", geom.R(300, 0, 100, 100))
	mustConnect(t, d, "a", "b", 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.MoveShape(ctx, "b", geom.Pt(5, 5)); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
