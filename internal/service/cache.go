// cache.go — LRU-кэш записей каталога с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bm_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш каталога.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bm_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша каталога.",
	})
)

// CatalogCache — in-memory LRU-кэш записей каталога с автоматическим TTL.
// Кэш per-instance: короткий TTL ограничивает окно устаревших цен.
type CatalogCache struct {
	cache *expirable.LRU[string, *model.CatalogEntry]
}

// NewCatalogCache создаёт LRU-кэш каталога.
// maxSize — максимальное количество записей, ttl — время жизни записи.
func NewCatalogCache(maxSize int, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		cache: expirable.NewLRU[string, *model.CatalogEntry](maxSize, nil, ttl),
	}
}

// Get возвращает запись каталога из кэша по bookID.
// Обновляет Prometheus-метрики hit/miss.
func (c *CatalogCache) Get(bookID string) (*model.CatalogEntry, bool) {
	val, ok := c.cache.Get(bookID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CatalogCache) Set(bookID string, entry *model.CatalogEntry) {
	c.cache.Add(bookID, entry)
}

// Delete удаляет запись из кэша (инвалидация после изменения цены).
func (c *CatalogCache) Delete(bookID string) {
	c.cache.Remove(bookID)
}
