// CacheService — LRU-кэш разобранных дней журнала с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/survey-recorder/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sr_ledger_cache_hits_total",
		Help: "Общее количество попаданий в кэш журнала.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sr_ledger_cache_misses_total",
		Help: "Общее количество промахов кэша журнала.",
	})
)

// CacheService — кэш записей журнала по дате.
// Значения только читаются: изменение журнала инвалидирует день целиком.
type CacheService struct {
	cache *expirable.LRU[string, []model.LogEntry]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество дней в кэше.
// ttl — время жизни дня после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, []model.LogEntry](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает записи дня из кэша.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(date string) ([]model.LogEntry, bool) {
	val, ok := c.cache.Get(date)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет день в кэше.
func (c *CacheService) Set(date string, entries []model.LogEntry) {
	c.cache.Add(date, entries)
}

// Delete удаляет день из кэша (вызывается при изменении журнала).
func (c *CacheService) Delete(date string) {
	c.cache.Remove(date)
}
