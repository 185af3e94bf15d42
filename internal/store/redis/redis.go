// Package redis provides a Redis-backed KV backend for the config store.
package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type KV struct {
	client *redis.Client
}

func New(client *redis.Client) *KV {
	return &KV{client: client}
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	// Config records have no TTL; they live until overwritten.
	return s.client.Set(ctx, key, value, 0).Err()
}
