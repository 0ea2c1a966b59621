package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/staffline/pkg/observability"
)

// Observe reports the operations of c to the registered cache hooks. The
// key type passed to hooks is the key's kind prefix.
func Observe(c Cache) Cache {
	return observed{c}
}

type observed struct{ Cache }

func (o observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (o observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// keyType returns the kind prefix of a key, skipping scope prefixes.
func keyType(key string) string {
	for _, kind := range []string{KindLayout, KindArtifact, KindSequence} {
		if strings.Contains(key, kind+":") {
			return kind
		}
	}
	return "unknown"
}
