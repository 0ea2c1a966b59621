package pipeline

import (
	"context"

	"github.com/matzehuels/staffline/pkg/cache"
)

// OpenCache opens the backend selected in opts. dir is the file cache
// directory. Every backend is wrapped with [cache.Observe].
func OpenCache(ctx context.Context, opts Options, dir string) (cache.Cache, error) {
	backend := opts.CacheBackend
	if backend == "" {
		backend = DefaultCacheBackend
	}
	if err := ValidateCacheBackend(backend); err != nil {
		return nil, err
	}

	var c cache.Cache
	switch backend {
	case CacheFile:
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		c = fc
	case CacheRedis:
		addr := opts.RedisAddr
		if addr == "" {
			addr = DefaultRedisAddr
		}
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: addr})
		if err != nil {
			return nil, err
		}
		c = rc
	default:
		c = cache.NewNullCache()
	}
	return cache.Observe(c), nil
}
