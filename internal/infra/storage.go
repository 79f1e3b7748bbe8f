package infra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hamstergame/platform/internal/repository"
	"github.com/hamstergame/platform/internal/repository/memory"
	"github.com/hamstergame/platform/internal/seed"
)

// OpenStore opens the configured storage driver. The memory driver is seeded
// from SEED_FILE when one is set. The returned func releases the store.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (repository.Store, func(), error) {
	switch cfg.StorageDriver {
	case DriverMemory:
		store := memory.NewStore()
		if cfg.SeedFile != "" {
			if err := SeedStore(ctx, store, cfg.SeedFile, logger); err != nil {
				return nil, nil, err
			}
		}
		logger.Warn("using in-memory storage; data is lost on restart")
		return store, func() {}, nil

	case DriverPostgres:
		if cfg.RunMigrations {
			if err := RunMigrations(cfg.DSN(), logger); err != nil {
				return nil, nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("connected to postgres")
		return repository.NewPgStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// SeedStore loads a seed file and applies it to store.
func SeedStore(ctx context.Context, store repository.Store, path string, logger *slog.Logger) error {
	f, err := seed.Load(path)
	if err != nil {
		return err
	}
	rep, err := seed.Apply(ctx, store, f)
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	logger.Info("seed applied",
		"path", path,
		"groups", rep.Groups,
		"users", rep.Users,
		"players", rep.Players,
		"questions", rep.Questions,
		"items", rep.Items,
	)
	return nil
}
