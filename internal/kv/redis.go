package kv

import (
	"context"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/quizcraft/internal/envutil"
)

// RedisConfig configures the Redis-backed set store.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	DialTimeout time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		KeyPrefix:   "quizcraft:",
		DialTimeout: 5 * time.Second,
	}
}

// RedisConfigFromEnv reads QUIZCRAFT_REDIS_* variables. An empty Addr
// means Redis is not configured.
func RedisConfigFromEnv() RedisConfig {
	cfg := DefaultRedisConfig()
	cfg.Addr = envutil.String("QUIZCRAFT_REDIS_ADDR", cfg.Addr)
	cfg.Password = envutil.String("QUIZCRAFT_REDIS_PASSWORD", cfg.Password)
	cfg.DB = envutil.Int("QUIZCRAFT_REDIS_DB", cfg.DB)
	cfg.KeyPrefix = envutil.String("QUIZCRAFT_REDIS_PREFIX", cfg.KeyPrefix)
	return cfg
}

// RedisSetStore keeps sets as Redis sets, so several processes can share
// one ledger.
type RedisSetStore struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisSetStore connects and pings the server.
func NewRedisSetStore(ctx context.Context, cfg RedisConfig) (*RedisSetStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisSetStore{rdb: rdb, prefix: cfg.KeyPrefix}, nil
}

func (s *RedisSetStore) GetSet(ctx context.Context, key string) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, s.prefix+key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", key, err)
	}
	sort.Strings(members)
	if members == nil {
		members = []string{}
	}
	return members, nil
}

func (s *RedisSetStore) PutSet(ctx context.Context, key string, values []string) error {
	k := s.prefix + key
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(values) > 0 {
			members := make([]any, len(values))
			for i, v := range values {
				members[i] = v
			}
			pipe.SAdd(ctx, k, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put set %s: %w", key, err)
	}
	return nil
}

// AddToSet is a single SADD, safe against writers in other processes.
func (s *RedisSetStore) AddToSet(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	members := make([]any, len(values))
	for i, v := range values {
		members[i] = v
	}
	if err := s.rdb.SAdd(ctx, s.prefix+key, members...).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", key, err)
	}
	return nil
}

func (s *RedisSetStore) Close() error {
	return s.rdb.Close()
}
