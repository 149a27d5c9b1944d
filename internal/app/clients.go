package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/workpulse-backend/internal/cache"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/platform/neo4jdb"
	"github.com/yungbote/workpulse-backend/internal/platform/redisdb"
	"github.com/yungbote/workpulse-backend/internal/realtime/bus"
)

// Clients holds the optional external backends. Nil Redis or Neo4j means the
// in-process fallbacks are in use.
type Clients struct {
	Redis *goredis.Client
	Neo4j *neo4jdb.Client
	Cache cache.Store
	Bus   bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redisdb.New(cfg.Redis, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	out := Clients{Redis: rdb}
	if rdb != nil {
		store, err := cache.NewRedisStore(rdb, cfg.CachePrefix, log)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis cache: %w", err)
		}
		b, err := bus.NewRedisBus(rdb, cfg.RedisChannel, log)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
		out.Cache, out.Bus = store, b
	} else {
		out.Cache = cache.NewMemoryStore(nil)
		out.Bus = bus.NewLocalBus()
	}

	n4j, err := neo4jdb.New(cfg.Neo4j, log)
	if err != nil {
		out.Close(context.Background())
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	if n4j == nil {
		log.Info("NEO4J_URI not set; dependency graph served from the relational store")
	}
	out.Neo4j = n4j
	return out, nil
}

func (c Clients) Close(ctx context.Context) {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}
