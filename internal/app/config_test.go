package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
database:
  host: localhost
  name: games
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Driver != DriverPostgres {
		t.Fatalf("driver = %q, want %q", cfg.Storage.Driver, DriverPostgres)
	}
	if cfg.Database.Port != "5432" || cfg.Database.SSLMode != "disable" {
		t.Fatalf("database defaults not applied: %+v", cfg.Database)
	}
	if cfg.Games.PurgeAfter != DefaultPurgeAfter {
		t.Fatalf("purge_after = %v, want %v", cfg.Games.PurgeAfter, DefaultPurgeAfter)
	}
	if cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("run_mode = %q", cfg.Telegram.RunMode)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
storage:
  driver: postgres
games:
  purge_after: 24h
`)
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("GAMES_PURGE_AFTER", "2h")
	t.Setenv("METRICS_LISTEN", ":9100")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("driver = %q, want %q", cfg.Storage.Driver, DriverMemory)
	}
	if cfg.Games.PurgeAfter != 2*time.Hour {
		t.Fatalf("purge_after = %v", cfg.Games.PurgeAfter)
	}
	if cfg.Metrics.Listen != ":9100" {
		t.Fatalf("metrics.listen = %q", cfg.Metrics.Listen)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "unknown driver",
			cfg:  Config{Storage: StorageConfig{Driver: "redis"}},
			want: "invalid storage.driver",
		},
		{
			name: "postgres without host",
			cfg:  Config{Storage: StorageConfig{Driver: DriverPostgres}},
			want: "database.host",
		},
		{
			name: "negative retention",
			cfg:  Config{Storage: StorageConfig{Driver: DriverMemory}, Games: GamesConfig{PurgeAfter: -time.Hour}},
			want: "purge_after",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Telegram.Token = "123:abc"
			err := Normalize(&tc.cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := Config{Storage: StorageConfig{Driver: DriverMemory}}
	if err := Normalize(&cfg); err == nil {
		t.Fatal("expected error without telegram token")
	}
}
