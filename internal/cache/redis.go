package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type redisStore struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
}

func NewRedisStore(rdb goredis.UniversalClient, prefix string, log *logger.Logger) (Store, error) {
	if rdb == nil {
		return nil, fmt.Errorf("cache: redis client required")
	}
	if prefix == "" {
		prefix = "workpulse"
	}
	return &redisStore{rdb: rdb, prefix: prefix, log: log.With("service", "RedisCache")}, nil
}

func (s *redisStore) key(k string) string { return s.prefix + ":" + k }

func (s *redisStore) Get(ctx context.Context, key string, dst any) error {
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrMiss
	}
	if err != nil {
		s.log.Warn("cache get failed", "key", key, "error", err)
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (s *redisStore) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		s.log.Warn("cache set failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	return s.rdb.Del(ctx, full...).Err()
}
