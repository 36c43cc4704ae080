// Package redisstore keeps credentials in Redis, one string key per entry under a prefix.
// It suits clients sharing one signed-in session across processes or hosts.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-gym-client/credentials"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Repo = (*Store)(nil)

type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

func New(rdb redis.UniversalClient, prefix string) (*Store, error) {
	if rdb == nil {
		return nil, errors.New("[redisstore.New] redis client is required")
	}
	if prefix == "" {
		prefix = "gym"
	}
	return &Store{rdb: rdb, prefix: prefix}, nil
}

func (s *Store) Get(ctx context.Context, key credentials.Key) (string, error) {
	v, err := s.rdb.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", gymerrors.ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key credentials.Key, value string) error {
	if err := s.rdb.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key credentials.Key) error {
	if err := s.rdb.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *Store) redisKey(key credentials.Key) string {
	return s.prefix + ":" + string(key)
}
