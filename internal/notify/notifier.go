// Package notify fans shift events out to the admin set. Each admin is a
// bounded independent delivery: one admin's failure is logged and counted
// but never blocks the others, and never rolls back the committed shift.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/motorpool/internal/logging"
	"github.com/aretw0/motorpool/internal/metrics"
	"github.com/aretw0/motorpool/pkg/domain"
	"github.com/aretw0/motorpool/pkg/ports"
)

const defaultConcurrency = 4

// Notifier delivers shift summaries and their media to every admin.
type Notifier struct {
	transport   ports.Transport
	admins      func() []string
	logger      *slog.Logger
	concurrency int
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// WithConcurrency caps the number of simultaneous admin deliveries.
func WithConcurrency(limit int) Option {
	return func(n *Notifier) {
		if limit > 0 {
			n.concurrency = limit
		}
	}
}

// New creates a Notifier. admins is queried at delivery time so the fan-out
// always targets the current admin set.
func New(transport ports.Transport, admins func() []string, opts ...Option) *Notifier {
	n := &Notifier{
		transport:   transport,
		admins:      admins,
		logger:      logging.NewNop(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ShiftStarted notifies every admin of a committed checkout: the summary
// text first, then the collected media in original order. It blocks until
// the fan-out completes; delivery errors are swallowed after logging.
func (n *Notifier) ShiftStarted(ctx context.Context, shift domain.Shift) {
	summary := fmt.Sprintf("New shift\nDriver: %s\nCar: #%d %s\nStarted: %s",
		shift.DriverName, shift.CarID, shift.CarDescription,
		shift.StartedAt.Format("15:04 02.01.2006"))

	n.fanOut(ctx, func(ctx context.Context, admin string) error {
		if err := n.transport.SendText(ctx, admin, summary); err != nil {
			return err
		}
		for _, m := range shift.Media {
			if err := n.transport.SendMedia(ctx, admin, m.Kind, m.Ref); err != nil {
				return err
			}
		}
		return nil
	})
}

// ShiftEnded notifies every admin that a driver released a car.
func (n *Notifier) ShiftEnded(ctx context.Context, driverName string, carID int) {
	text := fmt.Sprintf("Shift ended\nDriver: %s\nCar: #%d", driverName, carID)
	n.fanOut(ctx, func(ctx context.Context, admin string) error {
		return n.transport.SendText(ctx, admin, text)
	})
}

func (n *Notifier) fanOut(ctx context.Context, deliver func(context.Context, string) error) {
	sem := make(chan struct{}, n.concurrency)
	var wg sync.WaitGroup

	for _, admin := range n.admins() {
		admin := admin
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := deliver(ctx, admin); err != nil {
				metrics.NotifyFailures.Inc()
				n.logger.Warn("admin notification failed", "admin", admin, "err", err)
				return
			}
			metrics.NotifyDeliveries.Inc()
		}()
	}
	wg.Wait()
}
