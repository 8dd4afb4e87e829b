package fleet

import (
	"context"
	"slices"
	"time"

	"github.com/aretw0/motorpool/internal/metrics"
	"github.com/aretw0/motorpool/pkg/domain"
)

// The shift ledger shares the registry's lock because a checkout commit
// mutates the roster and appends a shift in the same snapshot write.

// All returns the full ledger, oldest first.
func (r *Registry) All() []domain.Shift {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Shift, 0, len(r.shifts))
	for _, s := range r.shifts {
		out = append(out, s.Clone())
	}
	return out
}

// Recent returns the last n ledger records, oldest first.
func (r *Registry) Recent(n int) []domain.Shift {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(r.shifts) {
		n = len(r.shifts)
	}
	out := make([]domain.Shift, 0, n)
	for _, s := range r.shifts[len(r.shifts)-n:] {
		out = append(out, s.Clone())
	}
	return out
}

// CommitShift atomically occupies the car and appends the shift record:
// both mutations land in one snapshot write, and a persist failure rolls
// both back. The car description is snapshotted here so later roster edits
// do not rewrite history.
func (r *Registry) CommitShift(ctx context.Context, carID int, driverID, driverName string, media []domain.MediaAttachment, at time.Time) (domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevCars := r.cars
	if err := r.occupyLocked(ctx, carID, driverID, driverName, at, false); err != nil {
		return domain.Shift{}, err
	}

	shift := domain.Shift{
		DriverID:       driverID,
		DriverName:     driverName,
		CarID:          carID,
		CarDescription: r.cars[carID-1].Description,
		StartedAt:      at,
		Media:          slices.Clone(media),
	}
	shifts := append(slices.Clone(r.shifts), shift)

	if err := r.persistLocked(ctx, r.cars, shifts, r.admins); err != nil {
		r.cars = prevCars
		return domain.Shift{}, err
	}
	r.shifts = shifts

	metrics.CheckoutsCommitted.Inc()
	r.logger.Info("shift committed",
		"car_id", carID,
		"driver", driverID,
		"media", len(media),
	)
	return shift.Clone(), nil
}
