// Package bootstrap builds the process-level dependencies shared by the API
// server and the notification worker.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jwalitptl/marketplace-api/internal/config"
	"github.com/jwalitptl/marketplace-api/internal/migrations"
	"github.com/jwalitptl/marketplace-api/internal/repository"
	"github.com/jwalitptl/marketplace-api/internal/repository/memory"
	"github.com/jwalitptl/marketplace-api/internal/repository/postgres"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/messaging"
	"github.com/jwalitptl/marketplace-api/pkg/messaging/redis"
)

func NewLogger(cfg config.LogConfig) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Pretty,
	})
	logger.SetGlobal(l)
	return l
}

// OpenStore connects the configured entity store, applying migrations first
// when auto_migrate is set.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, l *logger.Logger) (repository.Store, error) {
	if strings.EqualFold(cfg.Driver, "memory") {
		l.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}

	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		l.Info("database migrations applied")
	}

	return postgres.NewStore(db), nil
}

// OpenBroker returns the Redis broker when enabled and an in-process broker
// otherwise. The boolean reports whether the broker is process-local.
func OpenBroker(ctx context.Context, cfg config.RedisConfig, l *logger.Logger) (messaging.Broker, bool, error) {
	if !cfg.Enabled {
		return messaging.NewMemoryBroker(), true, nil
	}

	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:          cfg.URL,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
	}, *l.With("redis").Zerolog())
	if err != nil {
		return nil, false, fmt.Errorf("failed to open broker: %w", err)
	}
	return broker, false, nil
}
