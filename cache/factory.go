package cache

import (
	"fmt"
	"log"

	"github.com/merkulive/photoshare/config"
)

// NewProvider 根据配置创建缓存提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "redis":
		provider, err := NewRedisCache(RedisConfig{
			Address:  cfg.CacheRedisAddr,
			Password: cfg.CacheRedisPassword,
			DB:       cfg.CacheRedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		log.Println("Cache provider initialized: redis")
		return provider, nil
	case "memory", "":
		provider, err := NewMemoryCache(DefaultMemoryConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory cache: %w", err)
		}
		log.Println("Cache provider initialized: memory")
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.CacheType)
	}
}
