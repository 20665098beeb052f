// Package main is the entry point for the refusal tracker CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"refusal-tracker/internal/config"
	"refusal-tracker/internal/handler"
	"refusal-tracker/internal/pkg/db"
	"refusal-tracker/internal/pkg/logging"
	"refusal-tracker/internal/repository"
	"refusal-tracker/internal/repository/sqlite"
	"refusal-tracker/internal/service"
)

func main() {
	var cli handler.CLI
	kctx := kong.Parse(&cli,
		kong.Name("tracker"),
		kong.Description("Track refused purchases, points, streaks and savings."),
		kong.UsageOnError(),
	)

	if err := run(kctx, &cli); err != nil {
		log.Error().Err(err).Str("command", kctx.Command()).Msg("Command failed")
		os.Exit(1)
	}
}

func run(kctx *kong.Context, cli *handler.CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, migrate, closer, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	deps := handler.NewDependencies(cfg, stores, service.NewCalendar(cfg.App.Location()))
	deps.Migrate = migrate

	if kctx.Command() != "migrate" {
		if err := migrate(ctx); err != nil {
			return err
		}
		if _, err := deps.Achievements.Seed(ctx); err != nil {
			return err
		}
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	return kctx.Run(deps)
}

// openStorage connects the configured backend and returns its stores.
func openStorage(ctx context.Context, cfg *config.Config) (service.Stores, func(context.Context) error, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			return service.Stores{}, nil, nil, err
		}
		stores := service.Stores{
			Users:        repository.NewUserRepository(pool.Pool),
			Entries:      repository.NewEntryRepository(pool.Pool),
			Achievements: repository.NewAchievementRepository(pool.Pool),
			Presets:      repository.NewPresetRepository(pool.Pool),
			Goals:        repository.NewGoalRepository(pool.Pool),
			Tasks:        repository.NewTaskRepository(pool.Pool),
		}
		migrate := func(ctx context.Context) error { return repository.Migrate(ctx, pool.Pool) }
		return stores, migrate, poolCloser{pool}, nil

	case config.DriverSQLite:
		sdb, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return service.Stores{}, nil, nil, err
		}
		stores := service.Stores{
			Users:        sqlite.NewUserRepository(sdb),
			Entries:      sqlite.NewEntryRepository(sdb),
			Achievements: sqlite.NewAchievementRepository(sdb),
			Presets:      sqlite.NewPresetRepository(sdb),
			Goals:        sqlite.NewGoalRepository(sdb),
			Tasks:        sqlite.NewTaskRepository(sdb),
		}
		return stores, sdb.Migrate, sdb, nil

	default:
		return service.Stores{}, nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

type poolCloser struct {
	pool *db.Pool
}

func (p poolCloser) Close() error {
	p.pool.Close()
	return nil
}
