package database

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/tictactoe-bot/core/logger"
)

const migrateComponent = "db.migrate"

// migrationFile is an up migration on disk.
type migrationFile struct {
	Version uint64
	Name    string
}

// RunMigrations applies every pending up migration from cfg.MigrationsDir.
func RunMigrations(cfg Config) error {
	ctx := logger.Background()
	dir, err := migrationsDir(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	files, err := upMigrations(dir)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	logger.Debug(ctx, migrateComponent, "resolve",
		slog.String("path", dir),
		slog.Int("files_total", len(files)),
	)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.URL())
	if err != nil {
		logger.Error(ctx, migrateComponent, "init",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, migrateComponent, "apply",
			slog.String("status", "fail"),
			slog.Uint64("from_ver", uint64(from)),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}
	to, _, _ := m.Version()

	applied := between(files, uint64(from), uint64(to))
	logger.Info(ctx, migrateComponent, "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.String("applied", strings.Join(applied, ",")),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// migrationsDir resolves dir against the working directory; empty means "migrations".
func migrationsDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "migrations"
	}
	return filepath.Abs(dir)
}

// upMigrations lists *.up.sql files in dir sorted by version.
func upMigrations(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []migrationFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, migrationFile{Version: v, Name: name})
	}
	slices.SortFunc(files, func(a, b migrationFile) int {
		switch {
		case a.Version < b.Version:
			return -1
		case a.Version > b.Version:
			return 1
		}
		return 0
	})
	return files, nil
}

// between names the files with from < version <= to.
func between(files []migrationFile, from, to uint64) []string {
	var names []string
	for _, f := range files {
		if f.Version > from && f.Version <= to {
			names = append(names, f.Name)
		}
	}
	return names
}
