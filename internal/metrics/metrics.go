// Package metrics exposes the Prometheus collectors for the fleet workflow.
// The serve command mounts promhttp to publish them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutsCommitted counts successfully committed checkouts.
	CheckoutsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "motorpool",
		Name:      "checkouts_committed_total",
		Help:      "Checkout commits that occupied a car and appended a shift.",
	})

	// CheckoutConflicts counts commits lost to a concurrent occupy.
	CheckoutConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "motorpool",
		Name:      "checkout_conflicts_total",
		Help:      "Checkout commits rejected because the car was already occupied.",
	})

	// SnapshotSaves counts successful snapshot persists.
	SnapshotSaves = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "motorpool",
		Name:      "snapshot_saves_total",
		Help:      "Successful full-snapshot writes.",
	})

	// SnapshotFailures counts snapshot persists that failed and were rolled back.
	SnapshotFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "motorpool",
		Name:      "snapshot_failures_total",
		Help:      "Snapshot writes that failed; the triggering mutation was rolled back.",
	})

	// NotifyDeliveries counts outbound admin notifications delivered.
	NotifyDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "motorpool",
		Name:      "notify_deliveries_total",
		Help:      "Admin fan-out deliveries that succeeded.",
	})

	// NotifyFailures counts admin deliveries that failed independently.
	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "motorpool",
		Name:      "notify_failures_total",
		Help:      "Admin fan-out deliveries that failed (never rolls back a commit).",
	})
)
