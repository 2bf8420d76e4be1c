package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/infra/memory"
	"trivia-service/internal/infra/postgres"
	redisstore "trivia-service/internal/infra/redis"
	"trivia-service/internal/infra/sqlite"
)

func loadConfig(path string) (config.Config, error) {
	return config.Load(path, path == defaultConfigPath)
}

// openStore connects the configured backend. Postgres migrations run first.
func openStore(ctx context.Context, cfg config.Config) (app.Store, error) {
	driver, err := cfg.StoreDriver()
	if err != nil {
		return nil, err
	}
	log.Printf("using %s store", driver)

	switch driver {
	case config.DriverPostgres:
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("postgres url not configured")
		}
		if err := postgres.Migrate(ctx, cfg.Postgres.URL); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.Open(ctx, cfg.Postgres.URL)
	case config.DriverRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis addr not configured")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return redisstore.NewStore(client), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLite.Path)
	}
	return memory.NewStore(), nil
}
