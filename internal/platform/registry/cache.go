package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CacheTTL bounds how stale a cached projection can be. Callers that render
// patient names accept up to this much drift after a rename.
const CacheTTL = 30 * time.Second

// kv is the slice of redis the cache needs; tests back it with a map.
type kv interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

type redisKV struct {
	rdb *redis.Client
}

func (r redisKV) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) {
	r.rdb.Set(ctx, key, value, ttl)
}

// Cache is a read-through layer in front of a Source. Misses and redis
// failures fall through to the source; the cache never turns a hit into an
// error.
type Cache struct {
	source Source
	store  kv
	logger zerolog.Logger
}

// NewCache wraps source with a redis-backed read-through cache. The redisURL
// is parsed with redis.ParseURL; a bad URL is an error because a silently
// disabled cache would hide a config typo.
func NewCache(source Source, redisURL string, logger zerolog.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Cache{
		source: source,
		store:  redisKV{rdb: redis.NewClient(opts)},
		logger: logger.With().Str("component", "registry_cache").Logger(),
	}, nil
}

func newCacheWithStore(source Source, store kv, logger zerolog.Logger) *Cache {
	return &Cache{source: source, store: store, logger: logger}
}

func cacheKey(id int) string {
	return fmt.Sprintf("registry:patient:%d", id)
}

func (c *Cache) Patient(ctx context.Context, id int) (*PatientRef, error) {
	if val, ok := c.store.Get(ctx, cacheKey(id)); ok {
		var ref PatientRef
		if err := json.Unmarshal([]byte(val), &ref); err == nil {
			return &ref, nil
		}
	}

	ref, err := c.source.Patient(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, *ref)
	return ref, nil
}

func (c *Cache) Patients(ctx context.Context, ids []int) ([]PatientRef, error) {
	refs := make([]PatientRef, 0, len(ids))
	missing := make([]int, 0, len(ids))

	for _, id := range ids {
		val, ok := c.store.Get(ctx, cacheKey(id))
		if !ok {
			missing = append(missing, id)
			continue
		}
		var ref PatientRef
		if err := json.Unmarshal([]byte(val), &ref); err != nil {
			missing = append(missing, id)
			continue
		}
		refs = append(refs, ref)
	}

	if len(missing) > 0 {
		fetched, err := c.source.Patients(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, ref := range fetched {
			c.put(ctx, ref)
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (c *Cache) put(ctx context.Context, ref PatientRef) {
	data, err := json.Marshal(ref)
	if err != nil {
		return
	}
	c.store.Set(ctx, cacheKey(ref.ID), string(data), CacheTTL)
}
