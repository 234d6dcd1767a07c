// Package config loads daybook's TOML configuration and applies DAYBOOK_*
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "daybook.db"
	DefaultLogName        = "daybook.log"
	appDirName            = "daybook"
)

type Config struct {
	DBPath               string `toml:"db_path" env:"DAYBOOK_DB_PATH"`
	DBDriver             string `toml:"db_driver" env:"DAYBOOK_DB_DRIVER"`
	LogPath              string `toml:"log_path" env:"DAYBOOK_LOG_PATH"`
	LogLevel             string `toml:"log_level" env:"DAYBOOK_LOG_LEVEL"`
	TickSeconds          int    `toml:"tick_seconds" env:"DAYBOOK_TICK_SECONDS"`
	ReminderLeadMinutes  int    `toml:"reminder_lead_minutes" env:"DAYBOOK_REMINDER_LEAD_MINUTES"`
	SchedulerBuffer      int    `toml:"scheduler_buffer" env:"DAYBOOK_SCHEDULER_BUFFER"`
	DesktopNotifications bool   `toml:"desktop_notifications" env:"DAYBOOK_DESKTOP_NOTIFICATIONS"`
}

func Default() Config {
	return Config{
		DBPath:               DefaultDBName,
		DBDriver:             "sqlite3",
		LogPath:              DefaultLogName,
		LogLevel:             "info",
		TickSeconds:          60,
		ReminderLeadMinutes:  15,
		SchedulerBuffer:      64,
		DesktopNotifications: false,
	}
}

// DefaultPath returns ~/.config/daybook/config.toml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName), nil
}

// LoadOrCreate reads path, writing the defaults there first when the file
// does not exist. Environment overrides are applied after the file. Relative
// db and log paths resolve against the config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env overrides: %w", err)
	}
	cfg = cfg.normalized(filepath.Dir(path))
	return cfg, cfg.Validate()
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) normalized(baseDir string) Config {
	def := Default()
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = def.DBPath
	}
	if strings.TrimSpace(c.LogPath) == "" {
		c.LogPath = def.LogPath
	}
	if c.DBDriver == "" {
		c.DBDriver = def.DBDriver
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.TickSeconds <= 0 {
		c.TickSeconds = def.TickSeconds
	}
	if c.ReminderLeadMinutes < 0 {
		c.ReminderLeadMinutes = def.ReminderLeadMinutes
	}
	if c.SchedulerBuffer <= 0 {
		c.SchedulerBuffer = def.SchedulerBuffer
	}
	c.DBPath = resolve(baseDir, c.DBPath)
	c.LogPath = resolve(baseDir, c.LogPath)
	return c
}

func resolve(baseDir, p string) string {
	if p == ":memory:" || strings.HasPrefix(p, "file:") || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return filepath.Join(baseDir, p)
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("config: db_driver must be sqlite3 or sqlite, got %q", c.DBDriver)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	return nil
}

func (c Config) Tick() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

func (c Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadMinutes) * time.Minute
}
