package store

import (
	"context"
	"fmt"

	"github.com/dimitrije/hydra-collections/internal/config"
	"github.com/dimitrije/hydra-collections/internal/database"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open builds the store named by cfg.StoreDriver. Postgres schemas are
// migrated before the store is returned.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("using postgres object store")
		return NewPostgres(db), nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis object store", zap.String("addr", cfg.Redis.Addr), zap.String("prefix", cfg.Redis.Prefix))
		return NewRedis(client, cfg.Redis.Prefix), nil

	case config.DriverMemory:
		logger.Warn("using in-memory object store, data is lost on restart")
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
