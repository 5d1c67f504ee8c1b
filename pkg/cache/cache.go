package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// GetOrLoad is a read-through helper: it returns the cached value for key, or
// calls load, stores its result for ttl and returns it. Cache failures are
// reported through onErr and otherwise treated as misses; load errors are
// returned unchanged and never cached.
func GetOrLoad[T any](ctx context.Context, c Service, key string, ttl time.Duration,
	load func(context.Context) (T, error), onErr func(op string, err error)) (T, bool, error) {
	var out T
	if c != nil {
		err := c.Get(ctx, key, &out)
		if err == nil {
			return out, true, nil
		}
		if !errors.Is(err, ErrCacheMiss) && onErr != nil {
			onErr("get", err)
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}
	if c != nil {
		if err := c.Set(ctx, key, v, ttl); err != nil && onErr != nil {
			onErr("set", err)
		}
	}
	return v, false, nil
}
