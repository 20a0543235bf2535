package app

import (
	"fmt"

	"github.com/sunghyun2815/music-news-automation/internal/config"
	"github.com/sunghyun2815/music-news-automation/internal/storage"
)

// openDeliveryStore builds the configured delivery-state backend.
func openDeliveryStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StateBackend {
	case "file":
		fs := storage.NewFileStore(cfg.StateFilePath, cfg.StateTTL)
		if err := fs.Load(); err != nil {
			return nil, err
		}
		return fs, nil
	case "postgres":
		return storage.NewPostgresStore(cfg.DatabaseURL, cfg.StateTTL)
	case "redis":
		return storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, 0, cfg.StateTTL)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}
