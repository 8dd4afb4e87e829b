package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/motorpool/pkg/domain"
	"github.com/aretw0/motorpool/pkg/ports"
)

// consoleTransport is a stand-in chat binding for local exercising: every
// outbound action becomes a stdout line. Menus print their tokens so they
// can be typed back as selections.
type consoleTransport struct {
	mu  sync.Mutex
	out io.Writer
}

var _ ports.Transport = (*consoleTransport)(nil)

func newConsoleTransport(out io.Writer) *consoleTransport {
	return &consoleTransport{out: out}
}

func (c *consoleTransport) SendText(ctx context.Context, to string, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "-> %s:\n%s\n", to, text)
	return err
}

func (c *consoleTransport) SendMedia(ctx context.Context, to string, kind domain.MediaKind, ref string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "-> %s: [%s] %s\n", to, kind, ref)
	return err
}

func (c *consoleTransport) ShowMenu(ctx context.Context, to string, prompt string, items []ports.MenuItem) error {
	return c.printMenu(to, prompt, items, false)
}

func (c *consoleTransport) ReplaceMenu(ctx context.Context, to string, messageRef string, prompt string, items []ports.MenuItem) error {
	return c.printMenu(to, prompt, items, true)
}

func (c *consoleTransport) printMenu(to, prompt string, items []ports.MenuItem, replaced bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	head := prompt
	if replaced {
		head = prompt + " (updated)"
	}
	if _, err := fmt.Fprintf(c.out, "-> %s: %s\n", to, head); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(c.out, "   [%s] %s\n", item.Token, item.Label); err != nil {
			return err
		}
	}
	return nil
}
