package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/motorpool/internal/config"
	"github.com/aretw0/motorpool/internal/fleet"
	"github.com/aretw0/motorpool/internal/logging"
	"github.com/aretw0/motorpool/internal/store"
	"github.com/aretw0/motorpool/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "motorpool",
	Short: "Motorpool is a chat-operated small-fleet checkout tracker",
	Long: `Motorpool tracks a small vehicle fleet operated through a chat interface:
admins register cars, drivers check a car out for a shift after submitting
condition media, and admins browse shift history through a drill-down menu.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional .env; missing is fine.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to motorpool.yaml")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the config honoring the persistent --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func createLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// openStore builds the configured snapshot backend.
func openStore(cfg config.Config) ports.SnapshotStore {
	if cfg.Backend == "redis" {
		opts := []store.RedisOption{}
		if cfg.Redis.Key != "" {
			opts = append(opts, store.WithKey(cfg.Redis.Key))
		}
		return store.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
	}
	return store.NewFileStore(cfg.DataFile)
}

// openRegistry loads the snapshot into a ready registry.
func openRegistry(ctx context.Context, cfg config.Config, logger *slog.Logger) (*fleet.Registry, error) {
	return fleet.NewRegistry(ctx, openStore(cfg), cfg.SeedAdmins, fleet.WithLogger(logger))
}
