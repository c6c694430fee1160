// reconcile.go — сервис сверки хранилища записей с журналом.
//
// Reconciliation сравнивает:
//   - Файлы записей на диске со строками всех дней журнала
//   - Незавершённые транзакции WAL
//
// Обнаруживает проблемы:
//   - orphaned_artifact: файл на диске без строки в журнале
//   - orphaned_entry: строка журнала без файла на диске
//   - interrupted_transaction: транзакция WAL, не завершённая дольше pendingGrace
//
// Проблемы только фиксируются (лог WARN, метрики, отчёт), данные не исправляются.
// После сверки каталог записей пересобирается из журнала.
package service

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/survey-recorder/internal/api/generated"
	"github.com/bigkaa/survey-recorder/internal/api/middleware"
	"github.com/bigkaa/survey-recorder/internal/storage/filestore"
	"github.com/bigkaa/survey-recorder/internal/storage/index"
	"github.com/bigkaa/survey-recorder/internal/storage/ledger"
	"github.com/bigkaa/survey-recorder/internal/storage/wal"
)

// pendingGrace — возраст, после которого pending-транзакция считается прерванной.
const pendingGrace = time.Minute

// Prometheus метрики Reconciliation
var (
	// reconcileRunsTotal — количество запусков reconciliation.
	reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sr_reconcile_runs_total",
		Help: "Общее количество запусков reconciliation",
	})

	// reconcileIssuesTotal — количество обнаруженных проблем по типу.
	reconcileIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sr_reconcile_issues_total",
		Help: "Общее количество проблем, обнаруженных reconciliation",
	}, []string{"type"})

	// reconcileDurationSeconds — длительность выполнения reconciliation.
	reconcileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sr_reconcile_duration_seconds",
		Help:    "Длительность выполнения reconciliation в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// ReconcileService — сервис сверки хранилища и журнала.
type ReconcileService struct {
	store     *filestore.FileStore
	ledger    *ledger.Ledger
	idx       *index.Index
	walEngine *wal.WAL
	now       func() time.Time
	logger    *slog.Logger

	mu        sync.Mutex // защита от параллельного запуска
	inProcess bool       // reconciliation в процессе выполнения
}

// NewReconcileService создаёт сервис reconciliation.
func NewReconcileService(
	store *filestore.FileStore,
	ldg *ledger.Ledger,
	idx *index.Index,
	walEngine *wal.WAL,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		store:     store,
		ledger:    ldg,
		idx:       idx,
		walEngine: walEngine,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "reconcile")),
	}
}

// IsInProgress возвращает true, если reconciliation выполняется.
func (rs *ReconcileService) IsInProgress() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.inProcess
}

// RecoverPending обрабатывает транзакции, оставшиеся от предыдущего запуска.
// Каждая фиксируется как interrupted_transaction и закрывается Rollback.
// Файлы и журнал не изменяются: последствия видны как сироты при сверке.
func (rs *ReconcileService) RecoverPending() ([]generated.ReconcileIssue, error) {
	pending, err := rs.walEngine.Pending()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения WAL: %w", err)
	}

	issues := make([]generated.ReconcileIssue, 0, len(pending))
	for _, entry := range pending {
		issue := interruptedIssue(entry)
		issues = append(issues, issue)
		reconcileIssuesTotal.WithLabelValues(string(issue.Type)).Inc()

		rs.logger.Warn("Незавершённая транзакция после перезапуска",
			slog.String("tx_id", entry.TransactionID),
			slog.String("operation", string(entry.Operation)),
			slog.String("filename", entry.Filename),
		)

		if err := rs.walEngine.Rollback(entry.TransactionID); err != nil {
			rs.logger.Error("Ошибка закрытия незавершённой транзакции",
				slog.String("tx_id", entry.TransactionID),
				slog.String("error", err.Error()),
			)
		}
	}
	return issues, nil
}

// RunOnce выполняет один цикл reconciliation.
// Потокобезопасен: если reconciliation уже выполняется, возвращает nil, true.
//
// Возвращает:
//   - *generated.ReconcileResponse — результат сверки
//   - bool — true если reconciliation уже выполнялась (skipped)
func (rs *ReconcileService) RunOnce() (*generated.ReconcileResponse, bool) {
	rs.mu.Lock()
	if rs.inProcess {
		rs.mu.Unlock()
		rs.logger.Warn("Reconciliation уже выполняется, пропуск")
		return nil, true
	}
	rs.inProcess = true
	rs.mu.Unlock()

	defer func() {
		rs.mu.Lock()
		rs.inProcess = false
		rs.mu.Unlock()
	}()

	startedAt := rs.now().UTC()
	rs.logger.Info("Reconciliation начата")

	result := rs.reconcile()

	// Пересобираем каталог из журнала
	if err := rs.idx.Build(rs.ledger); err != nil {
		rs.logger.Error("Ошибка пересборки каталога",
			slog.String("error", err.Error()),
		)
	}

	completedAt := rs.now().UTC()
	duration := completedAt.Sub(startedAt)

	summary := generated.ReconcileSummary{Ok: result.matched}
	for _, issue := range result.issues {
		switch issue.Type {
		case generated.OrphanedArtifact:
			summary.OrphanedArtifacts++
		case generated.OrphanedEntry:
			summary.OrphanedEntries++
		case generated.InterruptedTransaction:
			summary.InterruptedTransactions++
		}
	}

	reconcileRunsTotal.Inc()
	reconcileDurationSeconds.Observe(duration.Seconds())
	for _, issue := range result.issues {
		reconcileIssuesTotal.WithLabelValues(string(issue.Type)).Inc()
		rs.logger.Warn("Расхождение хранилища и журнала",
			slog.String("type", string(issue.Type)),
			slog.String("filename", issue.Filename),
			slog.String("description", issue.Description),
		)
	}

	rs.logger.Info("Reconciliation завершена",
		slog.Int("artifacts_checked", result.artifacts),
		slog.Int("entries_checked", result.entries),
		slog.Int("issues", len(result.issues)),
		slog.Int("ok", summary.Ok),
		slog.Int("catalog_entries", rs.idx.Count()),
		slog.Duration("duration", duration),
	)

	return &generated.ReconcileResponse{
		StartedAt:        startedAt,
		CompletedAt:      completedAt,
		ArtifactsChecked: result.artifacts,
		EntriesChecked:   result.entries,
		Issues:           result.issues,
		Summary:          summary,
	}, false
}

type reconcileResult struct {
	issues    []generated.ReconcileIssue
	artifacts int
	entries   int
	matched   int
}

// reconcile выполняет сверку данных на диске.
func (rs *ReconcileService) reconcile() reconcileResult {
	res := reconcileResult{issues: []generated.ReconcileIssue{}}

	recordings, err := rs.store.List()
	if err != nil {
		rs.logger.Error("Ошибка чтения хранилища записей",
			slog.String("error", err.Error()),
		)
		return res
	}
	artifacts := make(map[string]bool, len(recordings))
	for _, rec := range recordings {
		artifacts[rec.Filename] = true
	}
	res.artifacts = len(artifacts)
	middleware.RecordingsTotal.Set(float64(len(artifacts)))

	// filename → дата дня журнала
	entries := make(map[string]string)
	dates, err := rs.ledger.Dates()
	if err != nil {
		rs.logger.Error("Ошибка получения дат журнала",
			slog.String("error", err.Error()),
		)
		return res
	}
	for _, date := range dates {
		dayEntries, err := rs.ledger.ReadDate(date)
		if err != nil {
			rs.logger.Warn("Пропуск нечитаемого журнала при сверке",
				slog.String("date", date),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, e := range dayEntries {
			res.entries++
			entries[e.Filename] = date
		}
	}

	// 1. Файл без строки журнала (orphaned_artifact)
	for name := range artifacts {
		if _, ok := entries[name]; ok {
			res.matched++
			continue
		}
		res.issues = append(res.issues, generated.ReconcileIssue{
			Type:        generated.OrphanedArtifact,
			Filename:    name,
			Description: "Файл записи без строки в журнале",
		})
	}

	// 2. Строка журнала без файла (orphaned_entry)
	for name, date := range entries {
		if artifacts[name] {
			continue
		}
		d := date
		res.issues = append(res.issues, generated.ReconcileIssue{
			Type:        generated.OrphanedEntry,
			Filename:    name,
			LedgerDate:  &d,
			Description: "Строка журнала без файла записи",
		})
	}

	// 3. Транзакции, не завершённые дольше pendingGrace
	pending, err := rs.walEngine.Pending()
	if err != nil {
		rs.logger.Error("Ошибка чтения WAL",
			slog.String("error", err.Error()),
		)
	}
	now := rs.now()
	for _, entry := range pending {
		if now.Sub(entry.StartedAt) < pendingGrace {
			continue
		}
		res.issues = append(res.issues, interruptedIssue(entry))
	}

	sort.Slice(res.issues, func(i, j int) bool {
		if res.issues[i].Type != res.issues[j].Type {
			return res.issues[i].Type < res.issues[j].Type
		}
		return res.issues[i].Filename < res.issues[j].Filename
	})

	return res
}

func interruptedIssue(entry *wal.Entry) generated.ReconcileIssue {
	return generated.ReconcileIssue{
		Type:     generated.InterruptedTransaction,
		Filename: entry.Filename,
		Description: fmt.Sprintf("Транзакция %s (%s) не завершена с %s",
			entry.TransactionID, entry.Operation, entry.StartedAt.UTC().Format(time.RFC3339)),
	}
}
