package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"trackseed/internal/adapter/faker"
	"trackseed/internal/adapter/memory"
	mgo "trackseed/internal/adapter/mongo"
	msql "trackseed/internal/adapter/mysql"
	"trackseed/internal/config"
	"trackseed/internal/ports"
	"trackseed/internal/schema"
	"trackseed/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log    *slog.Logger
	store  ports.Store
	seed   *usecase.SeedUseCase
	verify *usecase.VerifyUseCase
}

// New opens the configured store and returns once it is reachable. The
// caller owns the returned App and must Close it.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	log = log.With(slog.String("run_id", uuid.NewString()))

	store, err := openStore(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithStore(log, cfg, store), nil
}

// NewWithStore wires the use cases around an already connected store.
func NewWithStore(log *slog.Logger, cfg config.Config, store ports.Store) *App {
	return &App{
		log:   log,
		store: store,
		seed: &usecase.SeedUseCase{
			Log:           log,
			Store:         store,
			Generator:     faker.New(cfg.Seed.FakerSeed),
			Registry:      schema.Default(),
			MaxAttempts:   cfg.Seed.MaxAttempts,
			HashPasswords: cfg.Seed.HashPasswords,
		},
		verify: &usecase.VerifyUseCase{Log: log, Store: store, Registry: schema.Default()},
	}
}

func openStore(ctx context.Context, log *slog.Logger, cfg config.Config) (ports.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		s, err := mgo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMySQL:
		c, err := msql.NewClient(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
		if err := c.Migrate(ctx); err != nil {
			_ = c.Close(ctx)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return c, nil
	case config.DriverMemory:
		log.Info("using in-memory store, nothing will be persisted")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// Seed runs every step of the plan in order and stops at the first failure.
func (a *App) Seed(ctx context.Context, plan config.Plan) ([]usecase.Result, error) {
	results := make([]usecase.Result, 0, len(plan.Seeds))
	for _, step := range plan.Seeds {
		res, err := a.seed.Run(ctx, step.Entity, usecase.Options{
			Count:        step.Count,
			UniqueFields: step.Unique,
			Log:          step.Log,
		})
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (a *App) Verify(ctx context.Context) (usecase.Report, error) {
	return a.verify.Run(ctx)
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	return a.store.Close(ctx)
}
