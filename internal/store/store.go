package store

import (
	"context"
	"fmt"

	"ipmon/internal/config"
	"ipmon/internal/types"

	"go.uber.org/zap"
)

// Store persists the last observed public IP.
// Load returns types.ErrIPNotFound when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, ip string) error
	Close() error
}

// New creates the store selected by cfg.Backend
func New(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.File, logger), nil
	case "redis":
		return NewRedisStore(ctx, &cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidBackend, cfg.Backend)
	}
}
