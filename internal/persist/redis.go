package persist

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis stores values under a per-user prefix so several sessions can
// share one instance. No TTL: snapshots live until overwritten.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

var _ Adapter = (*Redis)(nil)

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           0,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, r.key(key), value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}
