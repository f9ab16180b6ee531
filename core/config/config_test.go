package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeAppliesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "telegram:\n  token: from-file\n  run_mode: polling\nrate_limit:\n  interval_ms: 250\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	var cfg Config
	if err := Decode(path, &cfg); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Telegram.Token != "from-env" || cfg.RateLimit.IntervalMS != 250 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "token"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "run_mode"},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = "webhook" }, "webhook.url"},
		{"bad exclusion", func(c *Config) { c.RateLimit.ExcludeUpdates = []string{"poll"} }, "exclude_updates"},
		{"negative interval", func(c *Config) { c.RateLimit.IntervalMS = -1 }, "interval_ms"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Telegram: TelegramConfig{Token: "t"}}
			tc.edit(&cfg)
			err := Normalize(&cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}

	cfg := Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Inline_Query ", "", "callback"}},
	}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := strings.Join(cfg.RateLimit.ExcludeUpdates, ","); got != "inline_query,callback" {
		t.Fatalf("exclusions = %q", got)
	}
}
