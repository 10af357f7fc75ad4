package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
)

// FileStore is a file-based diagram store for CLI use.
// Snapshots are stored as indented JSON files, one per diagram.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/orthoroute/diagrams/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "orthoroute", "diagrams")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create diagram dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) diagramPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (diagram.Snapshot, error) {
	if err := errs.ValidateID(id); err != nil {
		return diagram.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.diagramPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return diagram.Snapshot{}, ErrNotFound
		}
		return diagram.Snapshot{}, errs.Wrap(errs.ErrCodeStorage, err, "read diagram %s", id)
	}

	var snap diagram.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return diagram.Snapshot{}, errs.Wrap(errs.ErrCodeStorage, err, "parse diagram %s", id)
	}
	return snap, nil
}

func (s *FileStore) Put(ctx context.Context, snap diagram.Snapshot) error {
	if err := errs.ValidateID(snap.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal diagram: %w", err)
	}

	// Write to a temp file first so readers never see a partial snapshot.
	tmp, err := os.CreateTemp(s.baseDir, snap.ID+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "write diagram %s", snap.ID)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrCodeStorage, err, "write diagram %s", snap.ID)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "write diagram %s", snap.ID)
	}
	if err := os.Rename(tmp.Name(), s.diagramPath(snap.ID)); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "write diagram %s", snap.ID)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errs.ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.diagramPath(id)); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeStorage, err, "remove diagram %s", id)
	}
	return nil
}

// List reads every snapshot in the directory. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "read diagram dir")
	}

	out := []Summary{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var snap diagram.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		out = append(out, summarize(snap))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for diagram files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
