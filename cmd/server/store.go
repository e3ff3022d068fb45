package main

import (
	"context"
	"fmt"
	"log/slog"

	"ws-backend/contract"
	"ws-backend/internal"
	"ws-backend/repositories"
	"ws-backend/repositories/cache"
	"ws-backend/repositories/postgres"
)

// openStore builds the Store selected by STORE_DRIVER, optionally behind the
// Redis room cache. The returned func releases everything that was opened.
func openStore(ctx context.Context, config internal.Config, log *slog.Logger) (contract.Store, func(), error) {
	var (
		store   contract.Store
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch config.StoreDriver {
	case "postgres":
		db, err := postgres.New(ctx, postgres.Config{
			DSN:             config.DatabaseURL,
			MaxOpenConns:    config.DBMaxOpenConns,
			MaxIdleConns:    config.DBMaxIdleConns,
			ConnMaxLifetime: config.DBConnLifetime,
			PingTimeout:     config.DBPingTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			log.Info("Closing Postgres pool...")
			_ = db.Close()
		})
		if err := postgres.Migrate(ctx, db); err != nil {
			closeAll()
			return nil, nil, err
		}
		store = postgres.NewStore(db)
	default:
		db, err := repositories.OpenBadger(config.BadgerFilepath)
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		closers = append(closers, func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		})
		store = repositories.NewBadgerStore(db, log, nil)
	}

	if config.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cache.Config{URL: config.RedisURL, PingTimeout: config.DBPingTimeout})
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		store = cache.NewRoomCache(store, rdb, config.RoomCacheTTL, log)
		log.Info("Room lookups cached in Redis", "ttl", config.RoomCacheTTL)
	}

	return store, closeAll, nil
}
