package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	coredatabase "github.com/m3rciful/tictactoe-bot/core/database"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultPurgeAfter is the retention of finished games when games.purge_after is unset.
const DefaultPurgeAfter = 30 * 24 * time.Hour

// StorageConfig selects where games live.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
}

// GamesConfig tunes game housekeeping and bot texts.
type GamesConfig struct {
	PurgeAfter time.Duration `yaml:"purge_after" envconfig:"GAMES_PURGE_AFTER"`
	RateURL    string        `yaml:"rate_url" envconfig:"GAMES_RATE_URL"`
}

// MetricsConfig enables the Prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

// Config is the bot configuration: the shared core sections plus game settings.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Games    GamesConfig         `yaml:"games"`
	Metrics  MetricsConfig       `yaml:"metrics"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads YAML from path, applies environment overrides and validates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = DriverPostgres
	}
	switch driver {
	case DriverPostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required for storage.driver %q", DriverPostgres)
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: postgres, memory", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = driver

	switch {
	case cfg.Games.PurgeAfter < 0:
		return fmt.Errorf("games.purge_after must be >= 0")
	case cfg.Games.PurgeAfter == 0:
		cfg.Games.PurgeAfter = DefaultPurgeAfter
	}
	return nil
}
