package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/motorpool/pkg/domain"
)

// FileStore implements ports.SnapshotStore on the local filesystem: the
// whole snapshot lives in one JSON file, overwritten on every save.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore at the given path. If path is empty, it
// defaults to "motorpool.json" in the working directory.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = "motorpool.json"
	}
	return &FileStore{Path: path}
}

// Load reads the snapshot file. A missing file yields an empty snapshot.
func (f *FileStore) Load(ctx context.Context) (domain.Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewSnapshot(), nil
		}
		return domain.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}

	snap, err := Decode(data)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot file %s: %w", f.Path, err)
	}
	return snap, nil
}

// Save overwrites the snapshot file. The write goes through a temp file and
// rename so a crash mid-write cannot leave a truncated document behind.
func (f *FileStore) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".motorpool-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}
