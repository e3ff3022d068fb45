// Package cache puts a Redis lookaside cache in front of room lookups.
package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"ws-backend/contract"
	"ws-backend/domain"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	URL         string
	PingTimeout time.Duration
}

func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RoomCache remembers rooms known to exist for ttl. Misses are never cached,
// so a room created after a failed lookup is found on the next message.
// Redis errors fall through to the store.
type RoomCache struct {
	contract.Store
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRoomCache(store contract.Store, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *RoomCache {
	return &RoomCache{Store: store, rdb: rdb, ttl: ttl, log: log}
}

func roomKey(id domain.RoomID) string { return "room:exists:" + id.String() }

func (c *RoomCache) RoomExists(ctx context.Context, id domain.RoomID) (bool, error) {
	err := c.rdb.Get(ctx, roomKey(id)).Err()
	switch {
	case err == nil:
		return true, nil
	case !stderrors.Is(err, redis.Nil):
		c.log.Warn("Room cache unavailable", "room_id", id, "error", err)
	}

	exists, err := c.Store.RoomExists(ctx, id)
	if err != nil || !exists {
		return exists, err
	}
	if err := c.rdb.Set(ctx, roomKey(id), 1, c.ttl).Err(); err != nil {
		c.log.Warn("Unable to cache room", "room_id", id, "error", fmt.Errorf("set: %w", err))
	}
	return true, nil
}
