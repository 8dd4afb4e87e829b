// Package fleet owns the authoritative in-memory snapshot: the car roster,
// the append-only shift ledger and the admin identity set. Every mutating
// operation runs under one mutex together with the snapshot persist, so the
// free-check and the occupy are atomic relative to other occupy attempts.
package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/motorpool/internal/logging"
	"github.com/aretw0/motorpool/internal/metrics"
	"github.com/aretw0/motorpool/pkg/domain"
	"github.com/aretw0/motorpool/pkg/ports"
)

// Registry is the single writer of the snapshot store. Components receive it
// by reference; there is no ambient module-level state.
type Registry struct {
	store  ports.SnapshotStore
	logger *slog.Logger

	mu     sync.RWMutex
	cars   []domain.Car
	shifts []domain.Shift
	admins []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry loads the persisted snapshot and seeds the admin set. The
// admin set must never be empty: when the snapshot has no admins, the seed
// identities are added and persisted immediately; with neither, construction
// fails.
func NewRegistry(ctx context.Context, store ports.SnapshotStore, seedAdmins []string, opts ...Option) (*Registry, error) {
	r := &Registry{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	r.cars = snap.Cars
	r.shifts = snap.Shifts
	r.admins = snap.Admins

	if len(r.admins) == 0 {
		if len(seedAdmins) == 0 {
			return nil, fmt.Errorf("admin set is empty and no seed admins configured")
		}
		r.admins = slices.Clone(seedAdmins)
		if err := r.persistLocked(ctx, r.cars, r.shifts, r.admins); err != nil {
			return nil, err
		}
		r.logger.Info("seeded admin set", "admins", len(r.admins))
	}

	r.logger.Info("registry loaded",
		"cars", len(r.cars),
		"shifts", len(r.shifts),
		"admins", len(r.admins),
	)
	return r, nil
}

// persistLocked writes the given collections as one snapshot. Callers hold
// the write lock and must only commit their in-memory mutation after this
// returns nil.
func (r *Registry) persistLocked(ctx context.Context, cars []domain.Car, shifts []domain.Shift, admins []string) error {
	snap := domain.Snapshot{Cars: cars, Shifts: shifts, Admins: admins}
	if err := r.store.Save(ctx, snap); err != nil {
		metrics.SnapshotFailures.Inc()
		return fmt.Errorf("%w: %s", domain.ErrStoreIO, err)
	}
	metrics.SnapshotSaves.Inc()
	return nil
}

// RegisterCar adds a car with an empty assignment and returns its id. Ids
// are monotonic and gap-free under the registry's single-writer lock.
func (r *Registry) RegisterCar(ctx context.Context, description string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	car := domain.Car{ID: len(r.cars) + 1, Description: description}
	cars := append(slices.Clone(r.cars), car)

	if err := r.persistLocked(ctx, cars, r.shifts, r.admins); err != nil {
		return 0, err
	}
	r.cars = cars
	r.logger.Info("car registered", "car_id", car.ID, "description", description)
	return car.ID, nil
}

// ListCars returns all cars in registration order.
func (r *Registry) ListCars() []domain.Car {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Car, 0, len(r.cars))
	for _, c := range r.cars {
		out = append(out, c.Clone())
	}
	return out
}

// FreeCars returns the unassigned subset of ListCars, preserving
// registration order. This is the candidate set offered at checkout.
func (r *Registry) FreeCars() []domain.Car {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Car
	for _, c := range r.cars {
		if c.Free() {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Occupy marks a car as taken by the given driver. Fails with
// domain.ErrInvalidCarID for an unknown car and domain.ErrAlreadyOccupied
// when an assignment is already present.
func (r *Registry) Occupy(ctx context.Context, carID int, driverID, driverName string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.occupyLocked(ctx, carID, driverID, driverName, at, true)
}

// occupyLocked performs the occupy mutation. When persist is false the
// caller is batching this mutation into a larger snapshot write.
func (r *Registry) occupyLocked(ctx context.Context, carID int, driverID, driverName string, at time.Time, persist bool) error {
	idx := carID - 1
	if idx < 0 || idx >= len(r.cars) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidCarID, carID)
	}
	if !r.cars[idx].Free() {
		return fmt.Errorf("%w: car %d", domain.ErrAlreadyOccupied, carID)
	}

	cars := slices.Clone(r.cars)
	cars[idx] = cars[idx].Clone()
	cars[idx].Assignment = &domain.Assignment{
		DriverID:   driverID,
		DriverName: driverName,
		ShiftStart: at,
	}

	if persist {
		if err := r.persistLocked(ctx, cars, r.shifts, r.admins); err != nil {
			return err
		}
	}
	r.cars = cars
	return nil
}

// Release clears the assignment held by the given driver identity and
// returns the freed car id. Assignments are keyed by stable identity, not
// display name, so two drivers sharing a name cannot release each other's
// shifts.
func (r *Registry) Release(ctx context.Context, driverID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.cars {
		if c.Assignment != nil && c.Assignment.DriverID == driverID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("%w: driver %s", domain.ErrNoActiveAssignment, driverID)
	}

	cars := slices.Clone(r.cars)
	cars[idx] = cars[idx].Clone()
	cars[idx].Assignment = nil

	if err := r.persistLocked(ctx, cars, r.shifts, r.admins); err != nil {
		return 0, err
	}
	r.cars = cars
	r.logger.Info("shift ended", "car_id", idx+1, "driver", driverID)
	return idx + 1, nil
}

// IsAdmin reports whether the identity belongs to the admin set.
func (r *Registry) IsAdmin(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.admins, identity)
}

// AddAdmin grants admin privilege to an identity. The caller must already be
// an admin; adding an existing admin is a no-op.
func (r *Registry) AddAdmin(ctx context.Context, caller, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.admins, caller) {
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, caller)
	}
	if slices.Contains(r.admins, identity) {
		return nil
	}

	admins := append(slices.Clone(r.admins), identity)
	if err := r.persistLocked(ctx, r.cars, r.shifts, admins); err != nil {
		return err
	}
	r.admins = admins
	r.logger.Info("admin added", "identity", identity, "by", caller)
	return nil
}

// ListAdmins returns a snapshot of the admin set in insertion order.
func (r *Registry) ListAdmins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.admins)
}
