package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/evergreen-ci/utility/ttlcache"
)

type (
	// Using a custom type to avoid collisions with other context keys.
	cacheContextKey string
)

const (
	usersCache      cacheContextKey = "users"
	driversCache    cacheContextKey = "drivers"
	passengersCache cacheContextKey = "passengers"

	lifetime = time.Second
)

var validCaches = []cacheContextKey{
	usersCache,
	driversCache,
	passengersCache,
}

// Embed adds one short-lived cache per cacheable collection to the context.
// Caches already present are left in place.
func Embed(ctx context.Context, namePrefix string) context.Context {
	for _, collection := range validCaches {
		if ctx.Value(collection) != nil {
			continue
		}
		cacheName := fmt.Sprintf("%s-db-cache-%s", namePrefix, collection)
		cache := ttlcache.WithOtel(ttlcache.NewInMemory[any](), cacheName)
		ctx = context.WithValue(ctx, collection, cache)
	}

	return ctx
}

func GetFromCache[T any](ctx context.Context, collection, id string) (T, bool) {
	cache, ok := getCache[T](ctx, cacheContextKey(collection))
	if !ok {
		return *new(T), false
	}

	return cache.Get(ctx, id, 0)
}

func SetInCache[T any](ctx context.Context, collection, id string, value T) {
	cache, ok := getCache[T](ctx, cacheContextKey(collection))
	if !ok {
		return
	}

	cache.Put(ctx, id, value, time.Now().Add(lifetime))
}

// Evict drops the cached document for id so the next read goes to the
// database.
func Evict(ctx context.Context, collection, id string) {
	cache, ok := getCache[any](ctx, cacheContextKey(collection))
	if !ok {
		return
	}

	cache.Delete(ctx, id)
}

func getCache[T any](ctx context.Context, collection cacheContextKey) (ttlcache.Cache[T], bool) {
	if !validCache(collection) {
		return nil, false
	}

	cache, ok := ctx.Value(collection).(ttlcache.Cache[T])
	return cache, ok
}

func validCache(collection cacheContextKey) bool {
	for _, validCollection := range validCaches {
		if collection == validCollection {
			return true
		}
	}
	return false
}
