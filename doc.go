/*
Package motorpool tracks a small vehicle fleet operated through a chat
interface: admins register cars, drivers check a car out for a shift after
submitting condition media, and admins browse the append-only shift history
through a drill-down menu.

The package follows a hexagonal layout. The core owns the state machine and
the ledger; the host owns I/O through two ports:

  - ports.SnapshotStore persists the full state as one document (file and
    Redis adapters ship with the CLI).
  - ports.Transport delivers texts, media and selectable menus to whatever
    chat network the host speaks.

# Usage

Assemble an App from a store and a transport, then feed it inbound events:

	app, err := motorpool.New(ctx, store, transport, []string{"admin-id"})
	if err != nil {
		log.Fatal(err)
	}

	err = app.Handle(ctx, motorpool.Event{
		From:    domain.Identity{ID: "driver-7", Name: "Dana"},
		Kind:    motorpool.KindCommand,
		Command: "takecar",
	})

Every mutation is committed to the snapshot store before it becomes visible,
so a crash never loses an acknowledged checkout. The checkout commit writes
the car assignment and the ledger record in a single snapshot save; a
concurrent commit for the same car loses cleanly with no partial state.
*/
package motorpool
