package activesession

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// RedisStore keeps records in Redis under {prefix}{Key(deviceID)}. Keys get
// a TTL slightly past the validity window; Load still enforces the window
// itself so behavior matches FileStore.
type RedisStore struct {
	client redis.UniversalClient
	opts   options
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	o := defaultOptions()
	o.keyPrefix = DefaultConfig().RedisPrefix
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, opts: o}
}

func (s *RedisStore) key(deviceID string) string {
	return s.opts.keyPrefix + Key(deviceID)
}

func (s *RedisStore) Save(ctx context.Context, sessionID, username, userID, deviceID string) error {
	rec, err := newRecord(s.opts.clock.Now(), sessionID, username, userID, deviceID)
	if err != nil {
		return err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return errors.Join(ErrStoreIO, err)
	}
	if err := s.client.Set(ctx, s.key(deviceID), data, s.opts.ttl+time.Minute).Err(); err != nil {
		return errors.Join(ErrStoreIO, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, deviceID string) (*Record, error) {
	key := s.key(deviceID)

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, notFound(ErrStoreIO, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, notFound(err)
	}

	expired, err := check(rec, deviceID, s.opts.clock.Now(), s.opts.ttl)
	if expired {
		if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
			s.opts.logger.WarnContext(ctx, "expired active session not removed",
				logger.Component("activesession"),
				logger.Error(delErr),
			)
		}
	}
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

func (s *RedisStore) Clear(ctx context.Context, deviceID string) error {
	if err := s.client.Del(ctx, s.key(deviceID)).Err(); err != nil {
		return errors.Join(ErrStoreIO, err)
	}
	return nil
}

// Healthcheck pings the Redis server.
func (s *RedisStore) Healthcheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrStoreIO, err)
	}
	return nil
}
