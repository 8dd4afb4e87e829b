package ports

import (
	"context"

	"github.com/aretw0/motorpool/pkg/domain"
)

// SnapshotStore defines the interface for persisting the fleet snapshot.
// Save is a synchronous full-document overwrite: it must complete (or fail)
// before the triggering operation reports success to its caller.
type SnapshotStore interface {
	// Load retrieves the last persisted snapshot. When no prior snapshot
	// exists it returns an empty snapshot, not an error.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Save overwrites the persisted snapshot with the given one.
	Save(ctx context.Context, snap domain.Snapshot) error
}
