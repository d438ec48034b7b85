package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultRedisPrefix = "tlw:output:"

// RedisOptions configures a Redis-backed artifact store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// TTL of zero keeps artifacts forever.
	TTL time.Duration
}

// RedisStore keeps artifacts as Redis string values.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// DialRedis connects and pings before returning the store.
func DialRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", opts.Addr, err)
	}
	return NewRedisStore(rdb, opts.Prefix, opts.TTL), nil
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key for a stamp.
func (s *RedisStore) Key(stamp string) string {
	return s.prefix + stamp
}

func (s *RedisStore) Save(ctx context.Context, a Artifact) (string, error) {
	base := Stamp(a.CompletedAt)
	for attempt := 1; attempt <= maxStampAttempts; attempt++ {
		stamp := candidateStamp(base, attempt)
		ok, err := s.rdb.SetNX(ctx, s.Key(stamp), a.Body, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("failed to store artifact %s: %w", stamp, err)
		}
		if ok {
			return stamp, nil
		}
	}
	return "", fmt.Errorf("no free artifact key for %s after %d attempts", base, maxStampAttempts)
}

func (s *RedisStore) Load(ctx context.Context, stamp string) ([]byte, error) {
	if err := ValidateStamp(stamp); err != nil {
		return nil, err
	}
	data, err := s.rdb.Get(ctx, s.Key(stamp)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s: %w", stamp, err)
	}
	return data, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
