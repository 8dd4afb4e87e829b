package fleet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/motorpool/internal/fleet"
	"github.com/aretw0/motorpool/internal/testutil"
	"github.com/aretw0/motorpool/pkg/domain"
)

func newRegistry(t *testing.T) (*fleet.Registry, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	reg, err := fleet.NewRegistry(context.Background(), store, []string{"admin-1"})
	require.NoError(t, err)
	return reg, store
}

func TestRegisterCar_SequentialIDs(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		id, err := reg.RegisterCar(ctx, "car")
		require.NoError(t, err)
		assert.Equal(t, i, id, "ids are strictly increasing by 1 starting at 1")
	}
}

func TestOccupy_DoubleFails(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)

	_, err := reg.RegisterCar(ctx, "Toyota Camry А123БВ")
	require.NoError(t, err)

	require.NoError(t, reg.Occupy(ctx, 1, "alice-id", "alice", at))

	err = reg.Occupy(ctx, 1, "bob-id", "bob", at.Add(time.Minute))
	require.ErrorIs(t, err, domain.ErrAlreadyOccupied)

	cars := reg.ListCars()
	require.NotNil(t, cars[0].Assignment)
	assert.Equal(t, "alice-id", cars[0].Assignment.DriverID, "first assignment unchanged")
	assert.True(t, cars[0].Assignment.ShiftStart.Equal(at))
}

func TestOccupy_UnknownCar(t *testing.T) {
	reg, _ := newRegistry(t)
	err := reg.Occupy(context.Background(), 42, "alice-id", "alice", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidCarID)
}

func TestRelease_RoundTrip(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	_, err := reg.RegisterCar(ctx, "car one")
	require.NoError(t, err)
	require.NoError(t, reg.Occupy(ctx, 1, "alice-id", "alice", time.Now()))
	assert.Empty(t, reg.FreeCars())

	carID, err := reg.Release(ctx, "alice-id")
	require.NoError(t, err)
	assert.Equal(t, 1, carID)

	free := reg.FreeCars()
	require.Len(t, free, 1)
	assert.Equal(t, 1, free[0].ID)

	_, err = reg.Release(ctx, "alice-id")
	assert.ErrorIs(t, err, domain.ErrNoActiveAssignment, "second release in a row fails")
}

func TestRelease_KeyedByStableIdentity(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	_, err := reg.RegisterCar(ctx, "car one")
	require.NoError(t, err)
	require.NoError(t, reg.Occupy(ctx, 1, "alice-id", "shared-name", time.Now()))

	// Same display name, different identity: must not release alice's car.
	_, err = reg.Release(ctx, "bob-id")
	assert.ErrorIs(t, err, domain.ErrNoActiveAssignment)
	assert.NotNil(t, reg.ListCars()[0].Assignment)
}

func TestFreeCars_PreservesRegistrationOrder(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	for _, desc := range []string{"first", "second", "third"} {
		_, err := reg.RegisterCar(ctx, desc)
		require.NoError(t, err)
	}
	require.NoError(t, reg.Occupy(ctx, 2, "alice-id", "alice", time.Now()))

	free := reg.FreeCars()
	require.Len(t, free, 2)
	assert.Equal(t, 1, free[0].ID)
	assert.Equal(t, 3, free[1].ID)
}

func TestAdmins(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	assert.True(t, reg.IsAdmin("admin-1"))
	assert.False(t, reg.IsAdmin("nobody"))

	err := reg.AddAdmin(ctx, "nobody", "friend")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, reg.IsAdmin("friend"))

	require.NoError(t, reg.AddAdmin(ctx, "admin-1", "admin-2"))
	assert.True(t, reg.IsAdmin("admin-2"))

	// Idempotent: no duplicate insertion.
	require.NoError(t, reg.AddAdmin(ctx, "admin-1", "admin-2"))
	assert.Equal(t, []string{"admin-1", "admin-2"}, reg.ListAdmins())
}

func TestNewRegistry_RequiresSeedAdmin(t *testing.T) {
	_, err := fleet.NewRegistry(context.Background(), testutil.NewMemStore(), nil)
	assert.Error(t, err, "empty admin set with no seeds must fail initialization")
}

func TestMutations_RollBackOnSaveFailure(t *testing.T) {
	reg, store := newRegistry(t)
	ctx := context.Background()

	_, err := reg.RegisterCar(ctx, "car one")
	require.NoError(t, err)

	store.FailNextSaves = 1
	_, err = reg.RegisterCar(ctx, "car two")
	require.ErrorIs(t, err, domain.ErrStoreIO)
	assert.Len(t, reg.ListCars(), 1, "failed persist leaves memory untouched")

	store.FailNextSaves = 1
	err = reg.Occupy(ctx, 1, "alice-id", "alice", time.Now())
	require.ErrorIs(t, err, domain.ErrStoreIO)
	assert.Nil(t, reg.ListCars()[0].Assignment)

	// Next attempt succeeds and the id sequence has no gap.
	id, err := reg.RegisterCar(ctx, "car two")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestRegistry_ReloadsPersistedState(t *testing.T) {
	store := testutil.NewMemStore()
	ctx := context.Background()

	reg, err := fleet.NewRegistry(ctx, store, []string{"admin-1"})
	require.NoError(t, err)
	_, err = reg.RegisterCar(ctx, "car one")
	require.NoError(t, err)
	require.NoError(t, reg.Occupy(ctx, 1, "alice-id", "alice", time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)))

	reloaded, err := fleet.NewRegistry(ctx, store, nil)
	require.NoError(t, err)
	cars := reloaded.ListCars()
	require.Len(t, cars, 1)
	require.NotNil(t, cars[0].Assignment)
	assert.Equal(t, "alice", cars[0].Assignment.DriverName)
	assert.True(t, reloaded.IsAdmin("admin-1"))
}
