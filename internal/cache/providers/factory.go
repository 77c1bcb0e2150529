package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/cache"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
)

// New builds the store selected by cfg.Type. It is meant to be called once at startup.
func New(ctx context.Context, cfg config.Store) (cache.Store, error) {
	switch cfg.Type {
	case config.StoreTypeRedis:
		return NewRedis(ctx, cfg)
	case config.StoreTypeMemory:
		zap.S().Warnw("using in-process memory store; cache is not shared between instances")
		return NewMemory(cfg.Memory)
	default:
		return nil, fmt.Errorf("unknown store type '%s'", cfg.Type)
	}
}
