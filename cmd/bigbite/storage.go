package main

import (
	"context"
	"fmt"

	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"go.uber.org/zap"
)

// storage is the backend selected by storage.driver. mongo is only set for
// the mongo driver, which is the one that also keeps the audit log.
type storage struct {
	foods  repository.FoodStore
	orders repository.OrderStore
	mongo  *repository.MongoRepository
	ping   func(ctx context.Context) error
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		repo, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := repo.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to create MongoDB indexes", zap.Error(err))
		}
		logger.Info("MongoDB connected", zap.String("database", cfg.MongoDB.Database))

		return &storage{
			foods:  repo.Foods(),
			orders: repo.Orders(),
			mongo:  repo,
			ping:   repo.Ping,
			close: func() {
				if err := repo.Close(context.Background()); err != nil {
					logger.Warn("Failed to disconnect MongoDB", zap.Error(err))
				}
			},
		}, nil

	case config.DriverMySQL, config.DriverPostgres:
		db, err := repository.OpenSQL(cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		logger.Info("SQL database connected", zap.String("driver", cfg.Storage.Driver))

		return &storage{
			foods:  repository.NewSQLFoodStore(db),
			orders: repository.NewSQLOrderStore(db),
			ping:   sqlDB.PingContext,
			close: func() {
				if err := sqlDB.Close(); err != nil {
					logger.Warn("Failed to close SQL database", zap.Error(err))
				}
			},
		}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			foods:  repository.NewMemoryFoodStore(),
			orders: repository.NewMemoryOrderStore(),
			ping:   func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
