package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/motorpool"
	"github.com/aretw0/motorpool/internal/dispatch"
	"github.com/aretw0/motorpool/internal/tui"
	"github.com/aretw0/motorpool/pkg/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive console session against the core",
	Long: `Run wires the whole core to a console transport: stdin lines become
inbound events for one identity, outbound actions print to stdout. Useful for
exercising the workflow without a chat network.

Input forms:
  /takecar            a command
  year:2024           a menu selection (any token printed in a menu)
  photo <ref>         a media message (also: video, document)
  anything else       a free-text message`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := createLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		id, _ := cmd.Flags().GetString("as")
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = id
		}
		user := domain.Identity{ID: id, Name: name}

		tui.PrintBanner(Version)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := motorpool.New(ctx, openStore(cfg), newConsoleTransport(os.Stdout),
			cfg.SeedAdmins,
			motorpool.WithLogger(logger),
			motorpool.WithNotifyConcurrency(cfg.NotifyConcurrency),
		)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}

		if cfg.SessionIdle > 0 {
			go reapLoop(ctx, app, cfg.SessionIdle)
		}

		fmt.Printf("speaking as %s (%s); Ctrl-D to quit\n\n", user.Name, user.ID)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if ctx.Err() != nil {
				break
			}
			ev, ok := parseLine(user, scanner.Text())
			if !ok {
				continue
			}
			if err := app.Handle(ctx, ev); err != nil {
				logger.Error("event handling failed", "err", err)
			}
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("as", "console-user", "Identity to speak as")
	runCmd.Flags().String("name", "", "Display name (defaults to the identity)")
}

// reapLoop applies the configured inactivity reap policy.
func reapLoop(ctx context.Context, app *motorpool.App, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			app.ReapSessions(idle, now)
		}
	}
}

// parseLine turns one console line into an inbound event.
func parseLine(user domain.Identity, line string) (dispatch.Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return dispatch.Event{}, false
	}

	if cmd, ok := strings.CutPrefix(line, "/"); ok {
		name, rest, _ := strings.Cut(cmd, " ")
		return dispatch.Event{
			From:    user,
			Kind:    dispatch.KindCommand,
			Command: name,
			Args:    rest,
		}, true
	}

	word, rest, _ := strings.Cut(line, " ")
	switch word {
	case "photo", "video", "document":
		return dispatch.Event{
			From:  user,
			Kind:  dispatch.KindMedia,
			Media: &domain.MediaAttachment{Kind: domain.MediaKind(word), Ref: rest},
		}, true
	}

	// Tokens printed in menus look like kind:args.
	if strings.Contains(word, ":") && rest == "" {
		return dispatch.Event{From: user, Kind: dispatch.KindSelection, Selection: word}, true
	}

	return dispatch.Event{From: user, Kind: dispatch.KindText, Text: line}, true
}
