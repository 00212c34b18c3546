package app

import (
	"context"
	"database/sql"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/config"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/db"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/redis"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/session"

	_ "github.com/lib/pq"
)

type Infra struct {
	DB       *db.DB
	Sessions session.Store
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunAccountsMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	// Sessions live in Redis when configured, otherwise in process
	// memory (single-instance deployments only).
	var sessions session.Store
	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		sessions = session.NewRedisStore(redisClient.Client)
		logger.Info("redis session store ready", nil)
	} else {
		sessions = session.NewMemoryStore()
		logger.Warn("redis not configured, using in-memory sessions", nil)
	}

	return &Infra{
		DB:       &db.DB{DB: sqlDB},
		Sessions: sessions,
	}, nil
}
