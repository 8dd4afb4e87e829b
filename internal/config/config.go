// Package config loads the motorpool configuration file. A missing file is
// not an error — every field has a usable default — but a file that fails to
// parse is.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "motorpool.yaml"

// RedisConfig holds the optional Redis snapshot backend settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// Config is the application configuration.
type Config struct {
	// Backend selects the snapshot store: "file" (default) or "redis".
	Backend string `yaml:"backend"`

	// DataFile is the snapshot path for the file backend.
	DataFile string `yaml:"data_file"`

	Redis RedisConfig `yaml:"redis"`

	// SeedAdmins are granted admin privilege when the loaded snapshot has
	// an empty admin set. At least one is required on first start.
	SeedAdmins []string `yaml:"seed_admins"`

	// SessionIdle is the checkout-session reap cutoff (e.g. "45m").
	// Empty disables reaping.
	SessionIdle time.Duration `yaml:"-"`
	RawIdle     string        `yaml:"session_idle"`

	// Listen is the serve command's HTTP address.
	Listen string `yaml:"listen"`

	// NotifyConcurrency caps simultaneous admin fan-out deliveries.
	NotifyConcurrency int `yaml:"notify_concurrency"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend:           "file",
		DataFile:          "motorpool.json",
		Listen:            ":8080",
		NotifyConcurrency: 4,
	}
}

// Load reads the YAML config at path (DefaultPath when empty), applies
// defaults and MOTORPOOL_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to env overrides.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.RawIdle != "" {
		idle, err := time.ParseDuration(cfg.RawIdle)
		if err != nil {
			return Config{}, fmt.Errorf("session_idle: %w", err)
		}
		cfg.SessionIdle = idle
	}

	switch cfg.Backend {
	case "file", "redis":
	default:
		return Config{}, fmt.Errorf("unknown backend %q (want file or redis)", cfg.Backend)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MOTORPOOL_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("MOTORPOOL_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("MOTORPOOL_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("MOTORPOOL_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("MOTORPOOL_SEED_ADMINS"); v != "" {
		cfg.SeedAdmins = nil
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.SeedAdmins = append(cfg.SeedAdmins, id)
			}
		}
	}
	if v := os.Getenv("MOTORPOOL_SESSION_IDLE"); v != "" {
		cfg.RawIdle = v
	}
}
