// gc.go — сервис очистки (Garbage Collection) журнала транзакций.
//
// Завершённые (committed / rolled_back) WAL-записи старше retention
// удаляются с диска. Pending-записи не трогаются: их разбирает сверка.
package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/survey-recorder/internal/storage/wal"
)

// DefaultWALRetention — сколько хранятся завершённые транзакции.
const DefaultWALRetention = 24 * time.Hour

// Prometheus метрики GC
var (
	// gcRunsTotal — количество запусков GC.
	gcRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sr_wal_gc_runs_total",
		Help: "Общее количество запусков очистки WAL",
	})

	// gcEntriesDeletedTotal — количество удалённых WAL-записей.
	gcEntriesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sr_wal_gc_entries_deleted_total",
		Help: "Общее количество завершённых WAL-записей, удалённых GC",
	})

	// gcDurationSeconds — длительность выполнения GC.
	gcDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sr_wal_gc_duration_seconds",
		Help:    "Длительность выполнения очистки WAL в секундах",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// GCResult — результат одного запуска GC.
type GCResult struct {
	// DeletedCount — количество удалённых WAL-записей
	DeletedCount int
	// Errors — количество ошибок
	Errors int
	// Duration — длительность выполнения
	Duration time.Duration
}

// GCService — сервис очистки WAL.
type GCService struct {
	walEngine *wal.WAL
	retention time.Duration
	logger    *slog.Logger

	mu sync.Mutex // защита от параллельного запуска RunOnce
}

// NewGCService создаёт сервис GC.
func NewGCService(walEngine *wal.WAL, retention time.Duration, logger *slog.Logger) *GCService {
	return &GCService{
		walEngine: walEngine,
		retention: retention,
		logger:    logger.With(slog.String("component", "gc")),
	}
}

// RunOnce выполняет один цикл GC.
func (gc *GCService) RunOnce() *GCResult {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	start := time.Now()
	result := &GCResult{}

	deleted, err := gc.walEngine.CleanCompleted(gc.retention)
	if err != nil {
		gc.logger.Error("GC: ошибка очистки WAL", slog.String("error", err.Error()))
		result.Errors++
	}
	result.DeletedCount = deleted
	result.Duration = time.Since(start)

	gcRunsTotal.Inc()
	gcEntriesDeletedTotal.Add(float64(deleted))
	gcDurationSeconds.Observe(result.Duration.Seconds())

	gc.logger.Debug("GC завершён",
		slog.Int("deleted", result.DeletedCount),
		slog.Int("errors", result.Errors),
		slog.Duration("duration", result.Duration),
	)

	return result
}
