// internal/kv/redis.go
//
// Redis-backed Store. Vercel KV and Upstash expose the Redis protocol, so the
// same client serves the hosted store (rediss://…) and a local redis-server.

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// addAndIncr adds ARGV[1] to the set KEYS[1] and bumps KEYS[2] only when the
// member was new, so a duplicate vote can never touch the counters.
var addAndIncr = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 1 then
  redis.call('INCR', KEYS[2])
  return 1
end
return 0
`)

// Redis wraps a go-redis client.
type Redis struct {
	rdb *redis.Client
}

// OpenRedis parses a redis URL, connects and checks the connection.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("kv: parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	r := NewRedis(redis.NewClient(opts))
	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// NewRedis wraps an existing client; the Store owns it from then on.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Ping verifies the server answers PONG.
func (r *Redis) Ping(ctx context.Context) error {
	ret, err := r.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("kv: redis ping: %w", err)
	}
	if ret != "PONG" {
		return fmt.Errorf("kv: redis ping: unexpected reply %q", ret)
	}
	return nil
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	return r.rdb.Incr(ctx, key).Result()
}

func (r *Redis) SAdd(ctx context.Context, key, member string) (bool, error) {
	n, err := r.rdb.SAdd(ctx, key, member).Result()
	return n == 1, err
}

func (r *Redis) GetInt(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (r *Redis) SIsMember(ctx context.Context, key, member string) (bool, error) {
	return r.rdb.SIsMember(ctx, key, member).Result()
}

// AddAndIncr runs the add-then-increment script atomically on the server.
func (r *Redis) AddAndIncr(ctx context.Context, setKey, member, counterKey string) (bool, error) {
	n, err := addAndIncr.Run(ctx, r.rdb, []string{setKey, counterKey}, member).Int64()
	if err != nil {
		return false, fmt.Errorf("kv: add and incr: %w", err)
	}
	return n == 1, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
