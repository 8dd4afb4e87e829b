// Package testutil provides in-memory doubles shared by the package tests:
// a recording chat transport and snapshot stores with controllable failure.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/motorpool/pkg/domain"
	"github.com/aretw0/motorpool/pkg/ports"
)

// TextMessage is one recorded SendText call.
type TextMessage struct {
	To   string
	Text string
}

// MediaMessage is one recorded SendMedia call.
type MediaMessage struct {
	To   string
	Kind domain.MediaKind
	Ref  string
}

// Menu is one recorded ShowMenu/ReplaceMenu call.
type Menu struct {
	To       string
	Prompt   string
	Items    []ports.MenuItem
	Replaced bool
}

// Transport records every outbound action. Deliveries to identities in
// FailFor return an error, for exercising independent fan-out failure.
type Transport struct {
	mu      sync.Mutex
	Texts   []TextMessage
	Media   []MediaMessage
	Menus   []Menu
	FailFor map[string]bool
}

var _ ports.Transport = (*Transport)(nil)

// NewTransport creates an empty recording transport.
func NewTransport() *Transport {
	return &Transport{FailFor: make(map[string]bool)}
}

func (t *Transport) fail(to string) error {
	if t.FailFor[to] {
		return fmt.Errorf("delivery to %s refused", to)
	}
	return nil
}

func (t *Transport) SendText(ctx context.Context, to string, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail(to); err != nil {
		return err
	}
	t.Texts = append(t.Texts, TextMessage{To: to, Text: text})
	return nil
}

func (t *Transport) SendMedia(ctx context.Context, to string, kind domain.MediaKind, ref string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail(to); err != nil {
		return err
	}
	t.Media = append(t.Media, MediaMessage{To: to, Kind: kind, Ref: ref})
	return nil
}

func (t *Transport) ShowMenu(ctx context.Context, to string, prompt string, items []ports.MenuItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail(to); err != nil {
		return err
	}
	t.Menus = append(t.Menus, Menu{To: to, Prompt: prompt, Items: slices.Clone(items)})
	return nil
}

func (t *Transport) ReplaceMenu(ctx context.Context, to string, messageRef string, prompt string, items []ports.MenuItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail(to); err != nil {
		return err
	}
	t.Menus = append(t.Menus, Menu{To: to, Prompt: prompt, Items: slices.Clone(items), Replaced: true})
	return nil
}

// TextsTo returns the recorded texts delivered to one identity.
func (t *Transport) TextsTo(to string) []TextMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []TextMessage
	for _, m := range t.Texts {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}

// MediaTo returns the recorded media delivered to one identity.
func (t *Transport) MediaTo(to string) []MediaMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []MediaMessage
	for _, m := range t.Media {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}

// LastMenu returns the most recent menu shown, or nil.
func (t *Transport) LastMenu() *Menu {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Menus) == 0 {
		return nil
	}
	m := t.Menus[len(t.Menus)-1]
	return &m
}
