package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	coretelegram "github.com/m3rciful/tictactoe-bot/core/telegram"
)

type testConfig struct{ core *coreconfig.Config }

func (c testConfig) CoreConfig() *coreconfig.Config { return c.core }

type testApp struct{ started, stopped bool }

func (a *testApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { a.started = true; return nil },
		OnStop:  func(context.Context, coretelegram.Runtime) error { a.stopped = true; return nil },
	}, nil
}

func TestRunWiresLifecycle(t *testing.T) {
	t.Setenv("TEST_BOT_CONFIG", "from-env.yaml")
	app := &testApp{}
	var loaded string
	shutdown := false

	err := Run(Options[testConfig]{
		ConfigEnvVar:      "TEST_BOT_CONFIG",
		DefaultConfigPath: "default.yaml",
		LoadConfig: func(path string) (testConfig, error) {
			loaded = path
			return testConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(testConfig) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { shutdown = true; return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			if err := opts.OnStop(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return context.Canceled
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loaded != "from-env.yaml" {
		t.Fatalf("config path = %q", loaded)
	}
	if !app.started || !app.stopped || !shutdown {
		t.Fatalf("started=%v stopped=%v shutdown=%v", app.started, app.stopped, shutdown)
	}
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")
	load := func(string) (testConfig, error) { return testConfig{core: &coreconfig.Config{}}, nil }

	if err := Run(Options[testConfig]{}); err == nil {
		t.Fatal("expected error without callbacks")
	}
	err := Run(Options[testConfig]{
		ConfigEnvVar:      "TEST_BOT_CONFIG_UNSET",
		DefaultConfigPath: "x.yaml",
		LoadConfig:        load,
		Bootstrap:         func(testConfig) (TelegramApp, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want bootstrap error", err)
	}
	err = Run(Options[testConfig]{
		ConfigEnvVar:      "TEST_BOT_CONFIG_UNSET",
		DefaultConfigPath: "x.yaml",
		LoadConfig:        func(string) (testConfig, error) { return testConfig{}, nil },
		Bootstrap:         func(testConfig) (TelegramApp, error) { return &testApp{}, nil },
	})
	if err == nil {
		t.Fatal("expected error for config without core section")
	}
}
