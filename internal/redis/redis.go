// Package redis keeps per-resource version tokens used as HTTP ETags.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func NewClient(address, username, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

// Ping fails fast when the configured server is unreachable.
func Ping(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

// Versions hands out an opaque token per resource. Invalidate forces a new
// token on the next read.
type Versions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewVersions(rdb *redis.Client, ttl time.Duration) *Versions {
	return &Versions{rdb: rdb, ttl: ttl}
}

func versionKey(resource string) string {
	return fmt.Sprintf("masjid:%s:etag", resource)
}

func (v *Versions) Current(ctx context.Context, resource string) (string, error) {
	key := versionKey(resource)
	tag, err := v.rdb.Get(ctx, key).Result()
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}

	fresh, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate version: %w", err)
	}
	// a concurrent reader may win the race; both then return the stored token
	if err := v.rdb.SetNX(ctx, key, fresh, v.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return v.rdb.Get(ctx, key).Result()
}

func (v *Versions) Invalidate(ctx context.Context, resource string) error {
	key := versionKey(resource)
	if err := v.rdb.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to invalidate version")
		return err
	}
	return nil
}
