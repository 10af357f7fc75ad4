// Package storage persists diagram snapshots.
//
// Three backends implement [Store]:
//   - [MemoryStore]: process-local, for tests and single-node servers
//   - [FileStore]: one JSON file per diagram, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Stores hold [diagram.Snapshot] values; live editing happens on a
// [diagram.Diagram] rebuilt with [diagram.FromSnapshot].
package storage

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
)

// ErrNotFound is returned when a diagram does not exist.
var ErrNotFound = errs.New(errs.ErrCodeDiagramNotFound, "diagram not found")

// Store persists diagram snapshots keyed by diagram ID.
type Store interface {
	// Get returns the snapshot with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (diagram.Snapshot, error)
	// Put creates or replaces a snapshot.
	Put(ctx context.Context, s diagram.Snapshot) error
	// Delete removes a snapshot. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
	// List returns summaries of all stored diagrams, most recently
	// updated first.
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// Summary describes a stored diagram without its contents.
type Summary struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name,omitempty" bson:"name,omitempty"`
	Version     int64     `json:"version" bson:"version"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
	Shapes      int       `json:"shapes" bson:"-"`
	Connections int       `json:"connections" bson:"-"`
}

func summarize(s diagram.Snapshot) Summary {
	return Summary{
		ID:          s.ID,
		Name:        s.Name,
		Version:     s.Version,
		UpdatedAt:   s.UpdatedAt,
		Shapes:      len(s.Shapes),
		Connections: len(s.Connections),
	}
}

func sortSummaries(out []Summary) {
	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// Save stores the current state of d.
func Save(ctx context.Context, st Store, d *diagram.Diagram) error {
	return st.Put(ctx, d.Snapshot())
}

// Load rebuilds a diagram from the store.
func Load(ctx context.Context, st Store, id string, opts diagram.Options) (*diagram.Diagram, error) {
	s, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return diagram.FromSnapshot(s, opts)
}
