// Package workflow drives the per-identity guided dialogs: the multi-step
// checkout (car choice → media collection → atomic commit) and the admin
// register-car dialog. Sessions are ephemeral; the fleet registry is only
// touched at commit, so an abandoned dialog never corrupts committed state.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/motorpool/internal/fleet"
	"github.com/aretw0/motorpool/internal/logging"
	"github.com/aretw0/motorpool/internal/metrics"
	"github.com/aretw0/motorpool/internal/notify"
	"github.com/aretw0/motorpool/pkg/domain"
	"github.com/aretw0/motorpool/pkg/ports"
)

// CarToken formats the selection token for a free-car menu entry.
func CarToken(carID int) string {
	return fmt.Sprintf("car:%d", carID)
}

// Workflow is the checkout state machine. All user-visible replies go
// through the injected transport; domain errors surface as short texts and
// never crash the process.
type Workflow struct {
	registry  *fleet.Registry
	sessions  *Sessions
	transport ports.Transport
	notifier  *notify.Notifier
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// New creates a Workflow over the given collaborators.
func New(registry *fleet.Registry, transport ports.Transport, notifier *notify.Notifier, opts ...Option) *Workflow {
	w := &Workflow{
		registry:  registry,
		sessions:  NewSessions(),
		transport: transport,
		notifier:  notifier,
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Sessions exposes the session table so the host can apply its reap policy.
func (w *Workflow) Sessions() *Sessions {
	return w.sessions
}

// StartCheckout enters the checkout dialog: shows the free-car menu and
// creates a session, or terminates immediately when no car is free (no
// session is created in that case).
func (w *Workflow) StartCheckout(ctx context.Context, user domain.Identity) error {
	free := w.registry.FreeCars()
	if len(free) == 0 {
		return w.transport.SendText(ctx, user.ID, "No cars available right now.")
	}

	items := make([]ports.MenuItem, 0, len(free))
	for _, c := range free {
		items = append(items, ports.MenuItem{
			Token: CarToken(c.ID),
			Label: fmt.Sprintf("#%d %s", c.ID, c.Description),
		})
	}
	if err := w.transport.ShowMenu(ctx, user.ID, "Choose a car:", items); err != nil {
		return err
	}

	w.sessions.Put(user.ID, &Session{Stage: StageChoosingCar, LastActivity: w.now()})
	return nil
}

// ChooseCar handles a free-car menu selection: records the choice, clears
// any previously collected media and moves to media collection. A token for
// a car that is not currently free (forged, or stale after a roster change)
// is refused and the session stays in the choosing stage.
func (w *Workflow) ChooseCar(ctx context.Context, user domain.Identity, carID int) error {
	free := false
	for _, c := range w.registry.FreeCars() {
		if c.ID == carID {
			free = true
			break
		}
	}

	var stage Stage
	found := w.sessions.Update(user.ID, func(sess *Session) {
		stage = sess.Stage
		if sess.Stage != StageChoosingCar || !free {
			return
		}
		sess.CarID = carID
		sess.Media = nil
		sess.Stage = StageCollectingMedia
		sess.LastActivity = w.now()
	})

	switch {
	case !found || stage == StageDescribingCar:
		// Selection without an active choice stage: stale menu tap.
		return w.transport.SendText(ctx, user.ID, "No checkout in progress. Send /takecar to start.")
	case stage == StageCollectingMedia:
		return w.transport.SendText(ctx, user.ID,
			"You already chose a car. Send /done when finished, /cancel to abort.")
	case !free:
		return w.transport.SendText(ctx, user.ID,
			"That car is no longer available. Send /takecar for the current list.")
	}

	return w.transport.SendText(ctx, user.ID,
		"Send photos/videos of the car's condition (as many as you need). Send /done when finished, /cancel to abort.")
}

// AddMedia appends a condition attachment to the active session. Input
// outside the collecting stage leaves the session untouched.
func (w *Workflow) AddMedia(ctx context.Context, user domain.Identity, att domain.MediaAttachment) error {
	count := 0
	w.sessions.Update(user.ID, func(sess *Session) {
		if sess.Stage != StageCollectingMedia {
			return
		}
		sess.Media = append(sess.Media, att)
		sess.LastActivity = w.now()
		count = len(sess.Media)
	})
	if count == 0 {
		return nil
	}

	return w.transport.SendText(ctx, user.ID,
		fmt.Sprintf("Attachment %d received. Send more or /done.", count))
}

// Done commits the checkout: occupy + ledger append in one snapshot write,
// then the admin fan-out with the media in collection order. A commit lost
// to a concurrent occupy reports the conflict and discards the collected
// media without partial mutation. Zero attachments is permitted.
func (w *Workflow) Done(ctx context.Context, user domain.Identity) error {
	sess, ok := w.sessions.Peek(user.ID)
	if !ok || sess.Stage != StageCollectingMedia {
		return w.transport.SendText(ctx, user.ID, "Nothing to finish. Send /takecar to start a checkout.")
	}

	if sess.CarID == 0 {
		// Unreachable under correct routing; discard the broken session.
		w.sessions.Delete(user.ID)
		w.logger.Error("session reached commit without a car choice", "user", user.ID)
		if err := w.transport.SendText(ctx, user.ID,
			"Something went wrong; the checkout was reset. Send /takecar to start over."); err != nil {
			return err
		}
		return fmt.Errorf("%w: no car chosen", domain.ErrSessionCorrupt)
	}

	shift, err := w.registry.CommitShift(ctx, sess.CarID, user.ID, user.Name, sess.Media, w.now())
	if err != nil {
		w.sessions.Delete(user.ID)
		switch {
		case errors.Is(err, domain.ErrAlreadyOccupied):
			metrics.CheckoutConflicts.Inc()
			return w.transport.SendText(ctx, user.ID,
				fmt.Sprintf("Car #%d was taken by someone else. Send /takecar to pick another.", sess.CarID))
		case errors.Is(err, domain.ErrInvalidCarID):
			return w.transport.SendText(ctx, user.ID,
				"That car no longer exists. Send /takecar to start over.")
		case errors.Is(err, domain.ErrStoreIO):
			w.logger.Error("checkout commit failed to persist", "user", user.ID, "err", err)
			return w.transport.SendText(ctx, user.ID, "Could not save the shift. Nothing was changed; try again.")
		default:
			return err
		}
	}

	w.sessions.Delete(user.ID)
	if err := w.transport.SendText(ctx, user.ID,
		fmt.Sprintf("Shift started! Car #%d %s", shift.CarID, shift.CarDescription)); err != nil {
		w.logger.Warn("confirmation delivery failed", "user", user.ID, "err", err)
	}

	w.notifier.ShiftStarted(ctx, shift)
	return nil
}

// Cancel discards the identity's session with no side effects.
func (w *Workflow) Cancel(ctx context.Context, user domain.Identity) error {
	w.sessions.Delete(user.ID)
	return w.transport.SendText(ctx, user.ID, "Cancelled.")
}

// EndShift releases the car held by the driver and notifies the admins.
func (w *Workflow) EndShift(ctx context.Context, user domain.Identity) error {
	carID, err := w.registry.Release(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveAssignment) {
			return w.transport.SendText(ctx, user.ID, "You have no active shift.")
		}
		if errors.Is(err, domain.ErrStoreIO) {
			w.logger.Error("release failed to persist", "user", user.ID, "err", err)
			return w.transport.SendText(ctx, user.ID, "Could not save the change. Nothing was changed; try again.")
		}
		return err
	}

	if err := w.transport.SendText(ctx, user.ID,
		fmt.Sprintf("Shift ended. Car #%d is free again.", carID)); err != nil {
		w.logger.Warn("confirmation delivery failed", "user", user.ID, "err", err)
	}
	w.notifier.ShiftEnded(ctx, user.Name, carID)
	return nil
}

// StartRegisterCar enters the admin register-car dialog. The caller must be
// authorized already (the dispatcher gates admin commands).
func (w *Workflow) StartRegisterCar(ctx context.Context, user domain.Identity) error {
	w.sessions.Put(user.ID, &Session{Stage: StageDescribingCar, LastActivity: w.now()})
	return w.transport.SendText(ctx, user.ID,
		"Enter the car's model and plate (e.g. Toyota Camry А123БВ):")
}

// HandleText feeds a free-text message to whatever dialog is waiting for
// one. Text arriving outside a text-consuming stage is ignored and leaves
// the session untouched.
func (w *Workflow) HandleText(ctx context.Context, user domain.Identity, text string) error {
	sess, ok := w.sessions.Peek(user.ID)
	if !ok || sess.Stage != StageDescribingCar {
		return nil
	}

	id, err := w.registry.RegisterCar(ctx, text)
	if err != nil {
		w.sessions.Delete(user.ID)
		if errors.Is(err, domain.ErrStoreIO) {
			w.logger.Error("car registration failed to persist", "user", user.ID, "err", err)
			return w.transport.SendText(ctx, user.ID, "Could not save the car. Nothing was changed; try again.")
		}
		return err
	}

	w.sessions.Delete(user.ID)
	return w.transport.SendText(ctx, user.ID, fmt.Sprintf("Car #%d added: %s", id, text))
}
