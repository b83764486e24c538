package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores JSON values under prefixed keys.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to addr (host:port or a unix socket path) and pings it.
func NewRedis(addr, password, prefix string) (*Redis, error) {
	var opts *redis.Options

	// unix socket detection
	if strings.HasPrefix(addr, "/") {
		opts = &redis.Options{
			Network:  "unix",
			Addr:     addr,
			Password: password,
		}
	} else {
		opts = &redis.Options{
			Addr:     addr,
			Password: password,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &Redis{
		client: client,
		prefix: prefix,
	}, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + "-" + k
}

func (r *Redis) Get(ctx context.Context, key string, v any) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (r *Redis) Set(ctx context.Context, key string, v any, expireAt time.Time) error {
	ttl := time.Duration(0)
	if !expireAt.IsZero() {
		ttl = time.Until(expireAt)
		if ttl <= 0 {
			return r.Delete(ctx, key)
		}
	}
	return r.SetTTL(ctx, key, v, ttl)
}

// SetTTL stores v; a zero ttl keeps the key without expiry.
func (r *Redis) SetTTL(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

func (r *Redis) Close() error {
	return r.client.Close()
}
