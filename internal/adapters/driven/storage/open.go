// Package storage selects and opens the persistence gateway configured
// by the store settings.
package storage

import (
	"context"
	"fmt"

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/memory"
	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/redis"
	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/remote"
	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/sqlite"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// Open returns the gateway for s.Backend. The caller closes it.
func Open(ctx context.Context, s domain.StoreSettings) (driven.PersistenceGateway, error) {
	logger.Debug("opening %s store", s.Backend)

	switch s.Backend {
	case domain.StoreBackendMemory:
		return memory.NewGateway(), nil
	case domain.StoreBackendSQLite, "":
		store, err := sqlite.NewStore(s.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case domain.StoreBackendRedis:
		gw, err := redis.NewGateway(ctx, redis.Options{Addr: s.RedisAddr})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return gw, nil
	case domain.StoreBackendHTTP:
		gw, err := remote.NewGateway(remote.Options{
			BaseURL:           s.BaseURL,
			Token:             s.Token,
			RequestsPerSecond: s.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("open http store: %w", err)
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, s.Backend)
	}
}
