package ports

import (
	"context"

	"github.com/aretw0/motorpool/pkg/domain"
)

// MenuItem is one selectable entry of a drill-down menu. Token is the opaque
// self-describing value the transport echoes back on selection.
type MenuItem struct {
	Token string
	Label string
}

// Transport is the outbound half of the messaging contract. The core
// requests actions; delivery, keyboard rendering and media plumbing are the
// transport's problem. Implementations must be safe for concurrent use (the
// admin fan-out delivers from multiple goroutines).
type Transport interface {
	// SendText delivers a plain text message to an identity.
	SendText(ctx context.Context, to string, text string) error

	// SendMedia re-sends a media attachment by its opaque reference.
	SendMedia(ctx context.Context, to string, kind domain.MediaKind, ref string) error

	// ShowMenu presents a prompt with ordered selectable items.
	ShowMenu(ctx context.Context, to string, prompt string, items []MenuItem) error

	// ReplaceMenu edits a previously shown menu in place. messageRef is the
	// transport-side reference of the menu message the selection came from,
	// carried on the inbound event.
	ReplaceMenu(ctx context.Context, to string, messageRef string, prompt string, items []MenuItem) error
}
