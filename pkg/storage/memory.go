package storage

import (
	"context"
	"sync"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
)

// MemoryStore keeps snapshots in a map.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]diagram.Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]diagram.Snapshot)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (diagram.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[id]
	if !ok {
		return diagram.Snapshot{}, ErrNotFound
	}
	return copySnapshot(s), nil
}

func (m *MemoryStore) Put(ctx context.Context, s diagram.Snapshot) error {
	if err := errs.ValidateID(s.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[s.ID] = copySnapshot(s)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		out = append(out, summarize(s))
	}
	sortSummaries(out)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

// copySnapshot detaches the slices of s so callers cannot alias stored data.
func copySnapshot(s diagram.Snapshot) diagram.Snapshot {
	s.Shapes = append([]diagram.Shape(nil), s.Shapes...)
	conns := make([]diagram.Connection, len(s.Connections))
	for i, c := range s.Connections {
		c.Waypoints = geom.CloneBends(c.Waypoints)
		conns[i] = c
	}
	s.Connections = conns
	return s
}

var _ Store = (*MemoryStore)(nil)
