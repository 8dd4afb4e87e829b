// Package dispatch routes inbound transport events to the workflow entry
// points by identity and role. Admin-only operations are gated on the
// registry's admin set before any side effect; a failed gate leaves nothing
// behind but a rejection notice.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/motorpool/internal/fleet"
	"github.com/aretw0/motorpool/internal/history"
	"github.com/aretw0/motorpool/internal/logging"
	"github.com/aretw0/motorpool/internal/workflow"
	"github.com/aretw0/motorpool/pkg/domain"
	"github.com/aretw0/motorpool/pkg/ports"
)

const recentHistoryDepth = 10

// Router dispatches events. It is the only component that talks to every
// other one; the navigator only ever reads, the workflow only ever commits.
type Router struct {
	registry  *fleet.Registry
	workflow  *workflow.Workflow
	navigator *history.Navigator
	transport ports.Transport
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// NewRouter creates a Router over the given collaborators.
func NewRouter(registry *fleet.Registry, wf *workflow.Workflow, nav *history.Navigator, transport ports.Transport, opts ...Option) *Router {
	r := &Router{
		registry:  registry,
		workflow:  wf,
		navigator: nav,
		transport: transport,
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes one inbound event to completion. Domain errors are
// reported to the initiator as short texts; only transport failures
// propagate to the caller.
func (r *Router) Handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case KindCommand:
		return r.handleCommand(ctx, ev)
	case KindText:
		return r.workflow.HandleText(ctx, ev.From, ev.Text)
	case KindMedia:
		if ev.Media == nil {
			return nil
		}
		return r.workflow.AddMedia(ctx, ev.From, *ev.Media)
	case KindSelection:
		return r.handleSelection(ctx, ev)
	}
	return nil
}

func (r *Router) handleCommand(ctx context.Context, ev Event) error {
	switch ev.Command {
	case "start":
		return r.sendRoleMenu(ctx, ev.From)
	case "takecar":
		return r.workflow.StartCheckout(ctx, ev.From)
	case "endshift":
		return r.workflow.EndShift(ctx, ev.From)
	case "done":
		return r.workflow.Done(ctx, ev.From)
	case "cancel":
		return r.workflow.Cancel(ctx, ev.From)
	case "addcar":
		return r.adminOnly(ctx, ev.From, func() error {
			return r.workflow.StartRegisterCar(ctx, ev.From)
		})
	case "cars":
		return r.adminOnly(ctx, ev.From, func() error {
			return r.sendCarList(ctx, ev.From)
		})
	case "active":
		return r.adminOnly(ctx, ev.From, func() error {
			return r.sendActiveShifts(ctx, ev.From)
		})
	case "history":
		return r.adminOnly(ctx, ev.From, func() error {
			prompt, items := r.navigator.Root()
			if len(items) == 0 {
				return r.transport.SendText(ctx, ev.From.ID, "No shift history yet.")
			}
			return r.transport.ShowMenu(ctx, ev.From.ID, prompt, items)
		})
	case "recent":
		return r.adminOnly(ctx, ev.From, func() error {
			return r.sendRecentShifts(ctx, ev.From)
		})
	case "addadmin":
		return r.handleAddAdmin(ctx, ev)
	}

	return r.transport.SendText(ctx, ev.From.ID, "Unknown command. Send /start for the menu.")
}

// adminOnly runs fn only when the initiator is an admin. The check happens
// before any side effect; the only observable effect of a failed gate is the
// rejection notice.
func (r *Router) adminOnly(ctx context.Context, from domain.Identity, fn func() error) error {
	if !r.registry.IsAdmin(from.ID) {
		return r.transport.SendText(ctx, from.ID, "Access denied.")
	}
	return fn()
}

func (r *Router) handleAddAdmin(ctx context.Context, ev Event) error {
	identity := strings.TrimSpace(ev.Args)
	if identity == "" {
		return r.transport.SendText(ctx, ev.From.ID, "Usage: /addadmin <identity>")
	}

	err := r.registry.AddAdmin(ctx, ev.From.ID, identity)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return r.transport.SendText(ctx, ev.From.ID, "Access denied.")
	case errors.Is(err, domain.ErrStoreIO):
		r.logger.Error("add admin failed to persist", "identity", identity, "err", err)
		return r.transport.SendText(ctx, ev.From.ID, "Could not save the change. Nothing was changed; try again.")
	case err != nil:
		return err
	}
	return r.transport.SendText(ctx, ev.From.ID, fmt.Sprintf("Admin added: %s", identity))
}

func (r *Router) handleSelection(ctx context.Context, ev Event) error {
	if rest, ok := strings.CutPrefix(ev.Selection, "car:"); ok {
		carID, err := strconv.Atoi(rest)
		if err != nil || carID <= 0 {
			return r.transport.SendText(ctx, ev.From.ID, "That selection no longer works. Send /takecar to start over.")
		}
		return r.workflow.ChooseCar(ctx, ev.From, carID)
	}

	// Everything else is a history drill-down token; history is admin-only.
	return r.adminOnly(ctx, ev.From, func() error {
		return r.handleHistorySelection(ctx, ev)
	})
}

func (r *Router) handleHistorySelection(ctx context.Context, ev Event) error {
	tok, err := history.ParseToken(ev.Selection)
	if err != nil {
		r.logger.Debug("malformed selection", "token", ev.Selection, "err", err)
		return r.transport.SendText(ctx, ev.From.ID, "That selection no longer works. Send /history to start over.")
	}

	if tok.Kind == history.KindShift {
		shift, err := r.navigator.Resolve(tok)
		if err != nil {
			return r.transport.SendText(ctx, ev.From.ID, "That selection no longer works. Send /history to start over.")
		}
		return r.sendShift(ctx, ev.From, shift)
	}

	prompt, items, err := r.navigator.Menu(tok)
	if err != nil {
		return r.transport.SendText(ctx, ev.From.ID, "That selection no longer works. Send /history to start over.")
	}
	if ev.MessageRef != "" {
		return r.transport.ReplaceMenu(ctx, ev.From.ID, ev.MessageRef, prompt, items)
	}
	return r.transport.ShowMenu(ctx, ev.From.ID, prompt, items)
}

func (r *Router) sendRoleMenu(ctx context.Context, from domain.Identity) error {
	if r.registry.IsAdmin(from.ID) {
		return r.transport.SendText(ctx, from.ID,
			"Admin panel:\n/addcar — register a car\n/cars — car list\n/active — active shifts\n/history — browse history\n/recent — recent shifts\n/addadmin — grant admin")
	}
	return r.transport.SendText(ctx, from.ID,
		"Driver:\n/takecar — take a car for a shift\n/endshift — end your shift")
}

func (r *Router) sendCarList(ctx context.Context, from domain.Identity) error {
	cars := r.registry.ListCars()
	if len(cars) == 0 {
		return r.transport.SendText(ctx, from.ID, "No cars in the fleet.")
	}

	var b strings.Builder
	b.WriteString("Cars:\n")
	for _, c := range cars {
		status := "free"
		if c.Assignment != nil {
			status = "taken by " + c.Assignment.DriverName
		}
		fmt.Fprintf(&b, "#%d %s — %s\n", c.ID, c.Description, status)
	}
	return r.transport.SendText(ctx, from.ID, b.String())
}

func (r *Router) sendActiveShifts(ctx context.Context, from domain.Identity) error {
	var b strings.Builder
	count := 0
	for _, c := range r.registry.ListCars() {
		if c.Assignment == nil {
			continue
		}
		count++
		hours := int(r.now().Sub(c.Assignment.ShiftStart).Hours())
		fmt.Fprintf(&b, "#%d %s\nDriver: %s\nOn shift: %dh\n\n", c.ID, c.Description, c.Assignment.DriverName, hours)
	}
	if count == 0 {
		return r.transport.SendText(ctx, from.ID, "No active shifts.")
	}
	return r.transport.SendText(ctx, from.ID, "Active shifts:\n"+b.String())
}

func (r *Router) sendRecentShifts(ctx context.Context, from domain.Identity) error {
	shifts := r.registry.Recent(recentHistoryDepth)
	if len(shifts) == 0 {
		return r.transport.SendText(ctx, from.ID, "No shift history yet.")
	}

	if err := r.transport.SendText(ctx, from.ID,
		fmt.Sprintf("Recent shifts (last %d):", len(shifts))); err != nil {
		return err
	}
	for _, s := range shifts {
		if err := r.sendShift(ctx, from, s); err != nil {
			return err
		}
	}
	return nil
}

// sendShift renders a full ledger record: summary text, then the media in
// original order.
func (r *Router) sendShift(ctx context.Context, from domain.Identity, shift domain.Shift) error {
	text := fmt.Sprintf("%s — %s\nCar: #%d %s",
		shift.StartedAt.Format("02.01.2006 15:04"), shift.DriverName, shift.CarID, shift.CarDescription)
	if err := r.transport.SendText(ctx, from.ID, text); err != nil {
		return err
	}
	for _, m := range shift.Media {
		if err := r.transport.SendMedia(ctx, from.ID, m.Kind, m.Ref); err != nil {
			return err
		}
	}
	return nil
}
