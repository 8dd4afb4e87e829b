package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/motorpool/pkg/domain"
)

// ErrSaveRefused is what a MemStore returns while failing is enabled.
var ErrSaveRefused = errors.New("save refused")

// MemStore is an in-memory SnapshotStore. FailNextSaves makes the next n
// Save calls fail, for exercising rollback paths.
type MemStore struct {
	mu            sync.Mutex
	snap          domain.Snapshot
	saved         bool
	Saves         int
	FailNextSaves int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Load(ctx context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return domain.NewSnapshot(), nil
	}
	return m.snap.Clone(), nil
}

func (m *MemStore) Save(ctx context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNextSaves > 0 {
		m.FailNextSaves--
		return ErrSaveRefused
	}
	m.snap = snap.Clone()
	m.saved = true
	m.Saves++
	return nil
}

// Last returns the most recently saved snapshot.
func (m *MemStore) Last() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}
