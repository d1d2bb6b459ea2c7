package stores

import (
	"context"
	"fmt"
)

// NewStore creates a new session store based on the configuration
func NewStore(ctx context.Context, config *StoreConfig) (SessionStore, error) {
	switch config.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(config)
	case "postgres":
		return NewPostgresStore(config)
	case "redis":
		cfg, err := redisConfigFromStore(config)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
