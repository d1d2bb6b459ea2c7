package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Desarso/intentagent/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "intentagent"

// RedisConfig holds configuration for the Redis connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL expires idle sessions. Zero keeps them forever.
	TTL time.Duration
}

// RedisStore keeps each session as a Redis list of JSON messages and a
// per-tenant set of session ids.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects and validates the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: cfg.TTL}, nil
}

func redisSessionKey(tenantID, sessionID string) string {
	return fmt.Sprintf("%s:session:%s:%s", redisKeyPrefix, tenantID, sessionID)
}

func redisTenantKey(tenantID string) string {
	return fmt.Sprintf("%s:sessions:%s", redisKeyPrefix, tenantID)
}

func (s *RedisStore) AddMessage(ctx context.Context, tenantID, sessionID string, role models.Role, content string) error {
	if err := validateAppend(tenantID, sessionID, role); err != nil {
		return err
	}
	payload, err := json.Marshal(models.Message{Role: role, Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := redisSessionKey(tenantID, sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.SAdd(ctx, redisTenantKey(tenantID), sessionID)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	return nil
}

func (s *RedisStore) GetHistory(ctx context.Context, tenantID, sessionID string) ([]models.Message, error) {
	raw, err := s.rdb.LRange(ctx, redisSessionKey(tenantID, sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}

	msgs := make([]models.Message, 0, len(raw))
	for i, item := range raw {
		var m models.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("corrupt message %d in session %s/%s: %w", i, tenantID, sessionID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *RedisStore) ListSessions(ctx context.Context, tenantID string) ([]SessionInfo, error) {
	ids, err := s.rdb.SMembers(ctx, redisTenantKey(tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers failed: %w", err)
	}
	sort.Strings(ids)

	result := make([]SessionInfo, 0, len(ids))
	for _, id := range ids {
		n, err := s.rdb.LLen(ctx, redisSessionKey(tenantID, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("llen failed: %w", err)
		}
		if n == 0 {
			// expired by TTL
			continue
		}
		result = append(result, SessionInfo{TenantID: tenantID, SessionID: id, MessageCount: int(n)})
	}
	return result, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// RawClient exposes the underlying client (tests use it for cleanup).
func (s *RedisStore) RawClient() *redis.Client {
	return s.rdb
}

func redisConfigFromStore(config *StoreConfig) (RedisConfig, error) {
	cfg := RedisConfig{Addr: config.Connection, Password: config.Options["password"]}
	if v := config.Options["db"]; v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid redis db %q: %w", v, err)
		}
		cfg.DB = db
	}
	if v := config.Options["ttl"]; v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid redis ttl %q: %w", v, err)
		}
		cfg.TTL = ttl
	}
	return cfg, nil
}
