package domain

import (
	"slices"
	"time"
)

// MediaKind classifies a condition attachment submitted during checkout.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

// MediaAttachment is an ordered condition-media item. Ref is an opaque
// transport-side reference (file id, URL) — the core never dereferences it.
type MediaAttachment struct {
	Kind MediaKind `json:"kind"`
	Ref  string    `json:"ref"`
}

// Shift is one completed checkout transaction. Records are immutable once
// appended to the ledger. CarDescription is snapshotted at commit time so
// later roster edits do not retroactively alter history.
type Shift struct {
	DriverID       string            `json:"driver_id"`
	DriverName     string            `json:"driver_name"`
	CarID          int               `json:"car_id"`
	CarDescription string            `json:"car_description"`
	StartedAt      time.Time         `json:"started_at"`
	Media          []MediaAttachment `json:"media"`
}

// Clone returns a copy with its own media slice.
func (s Shift) Clone() Shift {
	out := s
	out.Media = slices.Clone(s.Media)
	return out
}
