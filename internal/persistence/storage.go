package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/casting-service/internal/config"
	"github.com/spec-kit/casting-service/internal/repository"
)

// Storage bundles the repositories for the configured driver together with
// the handle needed to probe and release it.
type Storage struct {
	Driver string
	Movies repository.MovieRepository
	Actors repository.ActorRepository

	ping  func(context.Context) error
	close func()
}

// OpenStorage connects the repositories selected by cfg.Storage.Driver.
func OpenStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool(), MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.Pool()
		return &Storage{
			Driver: cfg.Storage.Driver,
			Movies: repository.NewMovieRepository(pool),
			Actors: repository.NewActorRepository(pool),
			ping:   pg.Ping,
			close:  pg.Close,
		}, nil
	case config.StorageDriverSQLite:
		lite, err := NewSQLite(cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Driver: cfg.Storage.Driver,
			Movies: repository.NewGormMovieRepository(lite.DB),
			Actors: repository.NewGormActorRepository(lite.DB),
			ping:   lite.Ping,
			close:  lite.Close,
		}, nil
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return NewMemoryStorage(repository.NewMemoryStore()), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewMemoryStorage wraps an in-process store.
func NewMemoryStorage(store *repository.MemoryStore) *Storage {
	return &Storage{
		Driver: config.StorageDriverMemory,
		Movies: store.Movies(),
		Actors: store.Actors(),
		ping:   func(context.Context) error { return nil },
		close:  func() {},
	}
}

// Ping verifies the backing store is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backing store.
func (s *Storage) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}
