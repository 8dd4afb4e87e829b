package dispatch

import "github.com/aretw0/motorpool/pkg/domain"

// EventKind classifies an inbound transport event.
type EventKind string

const (
	KindCommand   EventKind = "command"
	KindText      EventKind = "text"
	KindMedia     EventKind = "media"
	KindSelection EventKind = "selection"
)

// Event is the inbound half of the messaging contract: everything the core
// learns about one delivered message.
type Event struct {
	From domain.Identity
	Kind EventKind

	// Command is the bare command name ("takecar"), Args the remainder.
	Command string
	Args    string

	// Text is the body of a free-text message.
	Text string

	// Media is set for media messages.
	Media *domain.MediaAttachment

	// Selection is the echoed menu token; MessageRef identifies the menu
	// message it came from, for in-place drill-down edits.
	Selection  string
	MessageRef string
}
