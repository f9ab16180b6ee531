// Package bootstrap brings up the infrastructure a bot needs before it can
// take updates: logging first, then the database and its schema.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	coredatabase "github.com/m3rciful/tictactoe-bot/core/database"
	"github.com/m3rciful/tictactoe-bot/core/logger"
)

// Options selects the steps to run. Nil funcs use the core implementations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	// SkipDatabase leaves Result.DB nil, for bots running on an in-memory store.
	SkipDatabase bool

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

type Result struct {
	DB *sqlx.DB
}

type step struct {
	name string
	run  func() error
}

// Run executes the steps in order and stops at the first failure. A database
// opened before a later step fails is closed again.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config")
	}
	if opts.LoggerInit == nil {
		opts.LoggerInit = logger.InitLogger
	}
	if opts.Connect == nil {
		opts.Connect = coredatabase.Connect
	}
	if opts.Migrate == nil {
		opts.Migrate = coredatabase.RunMigrations
	}

	res := &Result{}
	steps := []step{{"logger", func() error { return opts.LoggerInit(opts.Config) }}}
	if !opts.SkipDatabase {
		steps = append(steps,
			step{"database", func() (err error) {
				res.DB, err = opts.Connect(opts.Database)
				return err
			}},
			step{"migrations", func() error { return opts.Migrate(opts.Database) }},
		)
	}

	for _, s := range steps {
		start := time.Now()
		if err := s.run(); err != nil {
			if res.DB != nil {
				_ = res.DB.Close()
			}
			return nil, fmt.Errorf("bootstrap: %s: %w", s.name, err)
		}
		logger.Debug(logger.Background(), "bootstrap", s.name,
			slog.String("status", "ok"),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return res, nil
}
