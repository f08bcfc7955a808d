package repository

import (
	"fmt"

	"github.com/navikt/roombook/internal/config"
	"github.com/navikt/roombook/internal/repository/memory"
	"github.com/navikt/roombook/internal/repository/mongo"
	"github.com/navikt/roombook/internal/repository/redis"
)

// NewRepository creates the repository selected by the store configuration
func NewRepository(cfg config.Config) (Repository, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		repo, err := redis.NewRepository(cfg.Redis, cfg.Store.LockTTL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendMongo:
		repo, err := mongo.NewRepository(cfg.Mongo, cfg.Store.LockTTL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendMemory, "":
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
