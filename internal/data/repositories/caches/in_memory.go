package caches

import (
	"time"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/metric"
)

var (
	metricUpdateInterval = 10 * time.Minute
	HitRate              = "in_memory_cache_hit_rate"
	ItemCount            = "in_memory_cache_item_count"
	EvacuateCount        = "in_memory_cache_evacuate_count"
	ExpiryCount          = "in_memory_cache_expiry_count"
)

type InMemoryCache struct {
	cache        *freecache.Cache
	ttlInSeconds int
}

// NewInMemoryCache builds a freecache-backed vector cache of sizeMB
// megabytes. Entries expire after ttlSeconds; 0 keeps them for the life of
// the process.
func NewInMemoryCache(name string, sizeMB, ttlSeconds int) *InMemoryCache {
	cache := freecache.NewCache(sizeMB * 1024 * 1024)
	go publishMetric(cache, name)
	return &InMemoryCache{cache: cache, ttlInSeconds: ttlSeconds}
}

func (i *InMemoryCache) Get(key string) ([]float32, bool) {
	v, err := i.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	if len(v)%4 != 0 {
		log.Warn().Str("key", key).Int("len", len(v)).Msg("Dropping cache entry with odd payload length")
		i.cache.Del([]byte(key))
		return nil, false
	}
	return system.ByteOrder.Float32Vector(v), true
}

func (i *InMemoryCache) Set(key string, vec []float32) error {
	err := i.cache.Set([]byte(key), system.Float32VectorBytes(vec), i.ttlInSeconds)
	if err != nil {
		metric.Count("inference.cache.set.failure", 1, nil)
	}
	return err
}

func publishMetric(cache *freecache.Cache, cacheName string) {
	ticker := time.NewTicker(metricUpdateInterval)
	cacheMetricTags := metric.BuildTag(metric.NewTag("cache_name", cacheName))
	defer func() {
		ticker.Stop()
		if r := recover(); r != nil {
			metric.Count("trainset-builder.in-memory.panic.count", 1, nil)
		}
	}()
	for range ticker.C {
		metric.Gauge(HitRate, cache.HitRate(), cacheMetricTags)
		metric.Gauge(ItemCount, float64(cache.EntryCount()), cacheMetricTags)
		metric.Gauge(EvacuateCount, float64(cache.EvacuateCount()), cacheMetricTags)
		metric.Gauge(ExpiryCount, float64(cache.ExpiredCount()), cacheMetricTags)
	}
}
