package motorpool

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/motorpool/internal/dispatch"
	"github.com/aretw0/motorpool/internal/fleet"
	"github.com/aretw0/motorpool/internal/history"
	"github.com/aretw0/motorpool/internal/logging"
	"github.com/aretw0/motorpool/internal/notify"
	"github.com/aretw0/motorpool/internal/workflow"
	"github.com/aretw0/motorpool/pkg/ports"
)

// Event is an inbound transport event fed to App.Handle.
type Event = dispatch.Event

// EventKind discriminates inbound events.
type EventKind = dispatch.EventKind

// Inbound event kinds.
const (
	KindCommand   = dispatch.KindCommand
	KindText      = dispatch.KindText
	KindMedia     = dispatch.KindMedia
	KindSelection = dispatch.KindSelection
)

// App is the high-level entry point for embedding the tracker. It wires the
// fleet registry, checkout workflow, history navigator and admin notifier
// behind a single inbound-event handler; the host supplies the snapshot
// store and the outbound transport.
type App struct {
	registry *fleet.Registry
	workflow *workflow.Workflow
	router   *dispatch.Router

	logger      *slog.Logger
	clock       func() time.Time
	concurrency int
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithClock injects the time source used for shift starts and session
// activity, for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.clock = now
	}
}

// WithNotifyConcurrency caps simultaneous admin fan-out deliveries.
func WithNotifyConcurrency(limit int) Option {
	return func(a *App) {
		a.concurrency = limit
	}
}

// New loads the snapshot from the store and assembles a ready App. When the
// loaded admin set is empty, seedAdmins is persisted as the initial admin
// set; starting with neither fails, because every admin-gated operation
// would be unreachable.
func New(ctx context.Context, store ports.SnapshotStore, transport ports.Transport, seedAdmins []string, opts ...Option) (*App, error) {
	app := &App{
		logger:      logging.NewNop(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(app)
	}

	registry, err := fleet.NewRegistry(ctx, store, seedAdmins, fleet.WithLogger(app.logger))
	if err != nil {
		return nil, err
	}

	notifier := notify.New(transport, registry.ListAdmins,
		notify.WithLogger(app.logger),
		notify.WithConcurrency(app.concurrency),
	)

	wfOpts := []workflow.Option{workflow.WithLogger(app.logger)}
	routerOpts := []dispatch.Option{dispatch.WithLogger(app.logger)}
	if app.clock != nil {
		wfOpts = append(wfOpts, workflow.WithClock(app.clock))
		routerOpts = append(routerOpts, dispatch.WithClock(app.clock))
	}

	app.registry = registry
	app.workflow = workflow.New(registry, transport, notifier, wfOpts...)
	app.router = dispatch.NewRouter(registry, app.workflow,
		history.NewNavigator(registry), transport, routerOpts...)

	return app, nil
}

// Handle processes one inbound event to completion. Domain-level failures
// are reported to the initiator over the transport; only transport errors
// propagate to the caller.
func (a *App) Handle(ctx context.Context, ev Event) error {
	return a.router.Handle(ctx, ev)
}

// ReapSessions drops dialog sessions idle since before now-idleFor and
// returns how many were dropped. Hosts call this on their own schedule;
// nothing is reaped otherwise.
func (a *App) ReapSessions(idleFor time.Duration, now time.Time) int {
	return a.workflow.Sessions().Reap(idleFor, now)
}

// Registry exposes the fleet state for read-only surfaces such as status
// APIs. All mutation goes through Handle.
func (a *App) Registry() *fleet.Registry {
	return a.registry
}
