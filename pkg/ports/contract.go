package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/motorpool/pkg/domain"
)

// RunSnapshotStoreContract runs a suite of tests verifying that a
// SnapshotStore implementation adheres to the interface contract. Backend
// test files call it against a fresh, empty store.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		snap, err := store.Load(ctx)
		require.NoError(t, err, "loading a missing snapshot should yield defaults")
		assert.Empty(t, snap.Cars)
		assert.Empty(t, snap.Shifts)
		assert.Empty(t, snap.Admins)
	})

	t.Run("Save and Load", func(t *testing.T) {
		start := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
		snap := domain.Snapshot{
			Cars: []domain.Car{
				{ID: 1, Description: "Toyota Camry А123БВ"},
				{ID: 2, Description: "Kia Rio В456ГД", Assignment: &domain.Assignment{
					DriverID:   "driver-7",
					DriverName: "alice",
					ShiftStart: start,
				}},
			},
			Shifts: []domain.Shift{{
				DriverID:       "driver-7",
				DriverName:     "alice",
				CarID:          2,
				CarDescription: "Kia Rio В456ГД",
				StartedAt:      start,
				Media: []domain.MediaAttachment{
					{Kind: domain.MediaPhoto, Ref: "file-1"},
					{Kind: domain.MediaVideo, Ref: "file-2"},
				},
			}},
			Admins: []string{"admin-1"},
		}

		require.NoError(t, store.Save(ctx, snap))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, snap.Cars, loaded.Cars)
		assert.Equal(t, snap.Shifts, loaded.Shifts)
		assert.Equal(t, snap.Admins, loaded.Admins)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Snapshot{
			Cars:   []domain.Car{{ID: 1, Description: "only car"}},
			Admins: []string{"admin-1"},
		}))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded.Cars, 1)
		assert.Equal(t, "only car", loaded.Cars[0].Description)
		assert.Empty(t, loaded.Shifts, "overwrite is full-document, not incremental")
	})

	t.Run("Timestamp Round-Trip", func(t *testing.T) {
		start := time.Date(2031, 12, 31, 23, 59, 59, 0, time.UTC)
		require.NoError(t, store.Save(ctx, domain.Snapshot{
			Cars: []domain.Car{{ID: 1, Description: "car", Assignment: &domain.Assignment{
				DriverID: "d", DriverName: "n", ShiftStart: start,
			}}},
			Admins: []string{"admin-1"},
		}))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, loaded.Cars[0].Assignment)
		assert.True(t, loaded.Cars[0].Assignment.ShiftStart.Equal(start))
	})
}
