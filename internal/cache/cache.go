// Package cache holds derived results (suggestion lists, insight lists) for a
// bounded time so repeated reads do not recompute them.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is a TTL key/value store. Values are JSON encoded.
type Store interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Remember returns the cached value for key, or computes it with fn and
// stores it for ttl. A failed computation is returned unchanged and nothing
// is written. Store failures degrade to a recompute.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, bool, error) {
	var cached T
	if s != nil {
		if err := s.Get(ctx, key, &cached); err == nil {
			return cached, true, nil
		}
	}
	out, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	if s != nil {
		_ = s.Set(ctx, key, out, ttl)
	}
	return out, false, nil
}

// Fresh reports whether a value computed at last is still within ttl at now.
func Fresh(last, now time.Time, ttl time.Duration) bool {
	if last.IsZero() || ttl <= 0 {
		return false
	}
	age := now.Sub(last)
	return age >= 0 && age < ttl
}

func SuggestionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("suggestions:%s", userID)
}

func InsightsKey(userID uuid.UUID, projectKey string) string {
	if projectKey == "" {
		projectKey = "all"
	}
	return fmt.Sprintf("insights:%s:%s", userID, projectKey)
}
