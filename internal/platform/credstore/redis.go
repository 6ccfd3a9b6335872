// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/vizion/internal/platform/constants"
)

// RedisStore implements [Store] using a single Redis key per profile.
type RedisStore struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
}

// NewRedisStore creates a Redis-backed store.
//
// # Parameters
//   - client: Connected Redis client (see platform/redis.NewClient).
//   - profile: Namespace, so several accounts can share one Redis.
//   - ttl: Expiry applied on every Save. Zero keeps the key forever.
func NewRedisStore(client *redis.Client, profile string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, profile: profile, ttl: ttl}
}

// Key returns the Redis key holding this profile's credentials.
func (store *RedisStore) Key() string {
	return constants.RedisPrefixCredentials + store.profile
}

/*
Load retrieves the saved cookies.

Returns:
  - []*http.Cookie: nil when the key is absent or expired
  - error: Connectivity or decoding failures
*/
func (store *RedisStore) Load(ctx context.Context) ([]*http.Cookie, error) {
	data, err := store.client.Get(ctx, store.Key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("credstore: redis get failed: %w", err)
	}

	var saved record
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("credstore: redis decode failed: %w", err)
	}

	return saved.cookies(), nil
}

// Save stores the cookies with the configured TTL.
func (store *RedisStore) Save(ctx context.Context, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return store.Clear(ctx)
	}

	data, err := json.Marshal(toRecord(cookies))
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}

	if err := store.client.Set(ctx, store.Key(), data, store.ttl).Err(); err != nil {
		return fmt.Errorf("credstore: redis set failed: %w", err)
	}

	return nil
}

// Clear deletes the key.
func (store *RedisStore) Clear(ctx context.Context) error {
	if err := store.client.Del(ctx, store.Key()).Err(); err != nil {
		return fmt.Errorf("credstore: redis delete failed: %w", err)
	}
	return nil
}
