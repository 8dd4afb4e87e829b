package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/motorpool/internal/dispatch"
	"github.com/aretw0/motorpool/internal/fleet"
	"github.com/aretw0/motorpool/internal/history"
	"github.com/aretw0/motorpool/internal/notify"
	"github.com/aretw0/motorpool/internal/testutil"
	"github.com/aretw0/motorpool/internal/workflow"
	"github.com/aretw0/motorpool/pkg/domain"
)

var (
	admin  = domain.Identity{ID: "admin-1", Name: "boss"}
	driver = domain.Identity{ID: "driver-1", Name: "alice"}
)

type fixture struct {
	registry  *fleet.Registry
	transport *testutil.Transport
	router    *dispatch.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewMemStore()
	registry, err := fleet.NewRegistry(context.Background(), store, []string{admin.ID})
	require.NoError(t, err)

	transport := testutil.NewTransport()
	notifier := notify.New(transport, registry.ListAdmins)
	wf := workflow.New(registry, transport, notifier)
	router := dispatch.NewRouter(registry, wf, history.NewNavigator(registry), transport)
	return &fixture{registry: registry, transport: transport, router: router}
}

func (f *fixture) command(t *testing.T, from domain.Identity, name, args string) {
	t.Helper()
	require.NoError(t, f.router.Handle(context.Background(), dispatch.Event{
		From: from, Kind: dispatch.KindCommand, Command: name, Args: args,
	}))
}

func (f *fixture) lastTextTo(t *testing.T, id string) string {
	t.Helper()
	texts := f.transport.TextsTo(id)
	require.NotEmpty(t, texts)
	return texts[len(texts)-1].Text
}

func TestAdminCommands_GatedBeforeSideEffects(t *testing.T) {
	f := newFixture(t)

	for _, cmd := range []string{"addcar", "cars", "active", "history", "recent"} {
		f.command(t, driver, cmd, "")
		assert.Contains(t, f.lastTextTo(t, driver.ID), "Access denied", "command %s", cmd)
	}
	assert.Empty(t, f.registry.ListCars(), "no observable effect on authorization failure")

	f.command(t, driver, "addadmin", "driver-1")
	assert.Contains(t, f.lastTextTo(t, driver.ID), "Access denied")
	assert.False(t, f.registry.IsAdmin(driver.ID))
}

func TestRoleMenu(t *testing.T) {
	f := newFixture(t)

	f.command(t, admin, "start", "")
	assert.Contains(t, f.lastTextTo(t, admin.ID), "/addcar")

	f.command(t, driver, "start", "")
	assert.Contains(t, f.lastTextTo(t, driver.ID), "/takecar")
}

func TestAddCarDialogViaEvents(t *testing.T) {
	f := newFixture(t)

	f.command(t, admin, "addcar", "")
	require.NoError(t, f.router.Handle(context.Background(), dispatch.Event{
		From: admin, Kind: dispatch.KindText, Text: "Toyota Camry А123БВ",
	}))

	cars := f.registry.ListCars()
	require.Len(t, cars, 1)
	assert.Equal(t, "Toyota Camry А123БВ", cars[0].Description)
}

func TestCheckoutViaEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.command(t, admin, "addcar", "")
	require.NoError(t, f.router.Handle(ctx, dispatch.Event{
		From: admin, Kind: dispatch.KindText, Text: "car one",
	}))

	f.command(t, driver, "takecar", "")
	menu := f.transport.LastMenu()
	require.NotNil(t, menu)
	require.Len(t, menu.Items, 1)

	require.NoError(t, f.router.Handle(ctx, dispatch.Event{
		From: driver, Kind: dispatch.KindSelection, Selection: menu.Items[0].Token,
	}))
	require.NoError(t, f.router.Handle(ctx, dispatch.Event{
		From: driver, Kind: dispatch.KindMedia,
		Media: &domain.MediaAttachment{Kind: domain.MediaPhoto, Ref: "p1"},
	}))
	f.command(t, driver, "done", "")

	require.Len(t, f.registry.All(), 1)
	assert.Equal(t, driver.ID, f.registry.All()[0].DriverID)
	assert.Len(t, f.transport.MediaTo(admin.ID), 1, "admin got the photo")
}

func TestHistoryDrillDownViaSelections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.registry.RegisterCar(ctx, "car one")
	require.NoError(t, err)
	_, err = f.registry.CommitShift(ctx, id, driver.ID, driver.Name,
		[]domain.MediaAttachment{{Kind: domain.MediaPhoto, Ref: "p1"}},
		time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f.command(t, admin, "history", "")
	menu := f.transport.LastMenu()
	require.NotNil(t, menu)
	require.Equal(t, "year:2024", menu.Items[0].Token)

	// Selections resolve independently and out of order.
	for _, sel := range []string{"day:2024:5:17", "month:2024:5", "year:2024"} {
		require.NoError(t, f.router.Handle(ctx, dispatch.Event{
			From: admin, Kind: dispatch.KindSelection, Selection: sel, MessageRef: "menu-1",
		}))
		menu = f.transport.LastMenu()
		require.NotNil(t, menu)
		assert.True(t, menu.Replaced, "drill-down edits the menu in place")
	}

	require.NoError(t, f.router.Handle(ctx, dispatch.Event{
		From: admin, Kind: dispatch.KindSelection, Selection: "shift:0",
	}))
	assert.Contains(t, f.lastTextTo(t, admin.ID), "alice")
	assert.NotEmpty(t, f.transport.MediaTo(admin.ID), "record media is re-sent")
}

func TestMalformedSelectionFailsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, sel := range []string{"bogus", "shift:999", "year:xx", "car:zero"} {
		require.NoError(t, f.router.Handle(ctx, dispatch.Event{
			From: admin, Kind: dispatch.KindSelection, Selection: sel,
		}))
		assert.Contains(t, f.lastTextTo(t, admin.ID), "no longer works", "selection %q", sel)
	}
}

func TestAddAdmin(t *testing.T) {
	f := newFixture(t)

	f.command(t, admin, "addadmin", "admin-2")
	assert.True(t, f.registry.IsAdmin("admin-2"))
	assert.Contains(t, f.lastTextTo(t, admin.ID), "Admin added")

	f.command(t, admin, "addadmin", "")
	assert.Contains(t, f.lastTextTo(t, admin.ID), "Usage")
}

func TestCarsAndActiveListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.registry.RegisterCar(ctx, "car one")
	require.NoError(t, err)
	_, err = f.registry.RegisterCar(ctx, "car two")
	require.NoError(t, err)
	_, err = f.registry.CommitShift(ctx, id, driver.ID, driver.Name, nil, time.Now().Add(-3*time.Hour))
	require.NoError(t, err)

	f.command(t, admin, "cars", "")
	listing := f.lastTextTo(t, admin.ID)
	assert.Contains(t, listing, "taken by alice")
	assert.Contains(t, listing, "free")

	f.command(t, admin, "active", "")
	active := f.lastTextTo(t, admin.ID)
	assert.Contains(t, active, "car one")
	assert.Contains(t, active, "3h")
	assert.NotContains(t, active, "car two")
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	f.command(t, driver, "teleport", "")
	assert.Contains(t, f.lastTextTo(t, driver.ID), "Unknown command")
}
