package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ipmon/internal/config"
	"ipmon/internal/types"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps the IP in a single string key without expiry
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore connects to redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, fmt.Errorf("redis configuration is nil or empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rc := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis connect error: %w", err)
	}

	return newRedisStore(rc, cfg.Key, logger), nil
}

func newRedisStore(rc *redis.Client, key string, logger *zap.Logger) *RedisStore {
	if key == "" {
		key = config.DefaultRedisKey
	}
	return &RedisStore{client: rc, key: key, logger: logger}
}

// Load reads the saved IP
func (s *RedisStore) Load(ctx context.Context) (string, error) {
	ip, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && ip == "") {
		return "", types.ErrIPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", s.key, err)
	}
	return ip, nil
}

// Save overwrites the key with ip
func (s *RedisStore) Save(ctx context.Context, ip string) error {
	if err := s.client.Set(ctx, s.key, ip, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", s.key, err)
	}
	s.logger.Debug("Saved public IP", zap.String("key", s.key), zap.String("ip", ip))
	return nil
}

// Close closes the redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
