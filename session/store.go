// Package session maps opaque session tokens to the person they were issued
// for. Sessions live in Redis and expire on their own.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v3"
	"github.com/redis/go-redis/v9"

	"happenings/entity"
)

const keyPrefix = "happenings:session:"

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) RedisStore {
	if rdb == nil {
		panic("missing redis client")
	}
	if ttl <= 0 {
		panic("session ttl must be positive")
	}

	return RedisStore{rdb: rdb, ttl: ttl}
}

// Create starts a session for the person and returns its token.
func (s RedisStore) Create(ctx context.Context, personID entity.PersonID) (string, error) {
	token := shortuuid.New()

	if err := s.rdb.Set(ctx, keyPrefix+token, personID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("could not store session: %w", err)
	}

	return token, nil
}

// Person returns the person the session was created for. Unknown and expired
// tokens give entity.ErrNoCurrentPerson.
func (s RedisStore) Person(ctx context.Context, token string) (entity.PersonID, error) {
	if token == "" {
		return "", entity.ErrNoCurrentPerson
	}

	personID, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", entity.ErrNoCurrentPerson
	}
	if err != nil {
		return "", fmt.Errorf("could not read session: %w", err)
	}

	return entity.PersonID(personID), nil
}

func (s RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("could not delete session: %w", err)
	}

	return nil
}
