package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
)

func sampleSnapshot(id string, updated time.Time) diagram.Snapshot {
	return diagram.Snapshot{
		ID:        id,
		Name:      "sample " + id,
		Version:   3,
		UpdatedAt: updated,
		Shapes: []diagram.Shape{
			{ID: "a", Bounds: geom.R(0, 0, 100, 100)},
			{ID: "b", Bounds: geom.R(300, 0, 100, 100)},
		},
		Connections: []diagram.Connection{{
			ID:     "c",
			Source: "a",
			Target: "b",
			Waypoints: []geom.Bend{
				geom.Anchored(geom.Pt(100, 50), geom.Pt(50, 50)),
				geom.Anchored(geom.Pt(300, 50), geom.Pt(350, 50)),
			},
		}},
	}
}

func testStore(t *testing.T, st Store) {
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	first := sampleSnapshot("first", t0)
	if err := st.Put(ctx, first); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := st.Put(ctx, sampleSnapshot("second", t0.Add(time.Hour))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := st.Get(ctx, "first")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != first.Name || got.Version != 3 || !got.UpdatedAt.Equal(t0) {
		t.Errorf("Get() header = %+v", got)
	}
	if len(got.Connections) != 1 || !geom.EqualBends(got.Connections[0].Waypoints, first.Connections[0].Waypoints) {
		t.Errorf("Get() connections = %+v", got.Connections)
	}

	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "second" || list[1].ID != "first" {
		t.Fatalf("List() = %+v, want second then first", list)
	}
	if list[1].Shapes != 2 || list[1].Connections != 1 {
		t.Errorf("summary counts = %d/%d, want 2/1", list[1].Shapes, list[1].Connections)
	}

	if err := st.Delete(ctx, "first"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := st.Delete(ctx, "first"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, err := st.Get(ctx, "first"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v", err)
	}

	if err := st.Put(ctx, diagram.Snapshot{ID: "../escape"}); !errs.Is(err, errs.ErrCodeInvalidID) {
		t.Errorf("Put(bad id) error = %v, want INVALID_ID", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	snap := sampleSnapshot("d", time.Now())
	if err := st.Put(ctx, snap); err != nil {
		t.Fatal(err)
	}
	snap.Connections[0].Waypoints[0].X = -1

	got, _ := st.Get(ctx, "d")
	if got.Connections[0].Waypoints[0].X != 100 {
		t.Error("store aliased the caller's waypoints")
	}
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	testStore(t, st)
}

func TestFileStoreSkipsGarbage(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(context.Background(), sampleSnapshot("ok", time.Now())); err != nil {
		t.Fatal(err)
	}

	list, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != "ok" {
		t.Errorf("List() = %+v", list)
	}
	if _, err := st.Get(context.Background(), "broken"); !errs.Is(err, errs.ErrCodeStorage) {
		t.Errorf("Get(broken) error = %v, want STORAGE_ERROR", err)
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	d := diagram.New(diagram.Options{ID: "roundtrip"})
	if _, err := d.AddShape(diagram.Shape{ID: "a", Bounds: geom.R(0, 0, 10, 10)}); err != nil {
		t.Fatal(err)
	}

	if err := Save(ctx, st, d); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(ctx, st, "roundtrip", diagram.Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := loaded.Shape("a"); !ok {
		t.Error("loaded diagram lost shape a")
	}
	if _, err := Load(ctx, st, "nope", diagram.Options{}); !errs.IsNotFound(err) {
		t.Errorf("Load(nope) error = %v", err)
	}
}

func TestNewMongoStoreRequiresDatabase(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoOptions{URI: "mongodb://localhost:27017"})
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}
