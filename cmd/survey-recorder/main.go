// Точка входа сервиса записи аудио-опросов.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bigkaa/survey-recorder/internal/api/handlers"
	"github.com/bigkaa/survey-recorder/internal/config"
	"github.com/bigkaa/survey-recorder/internal/server"
	"github.com/bigkaa/survey-recorder/internal/service"
	"github.com/bigkaa/survey-recorder/internal/storage/filestore"
	"github.com/bigkaa/survey-recorder/internal/storage/index"
	"github.com/bigkaa/survey-recorder/internal/storage/ledger"
	"github.com/bigkaa/survey-recorder/internal/storage/wal"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Survey Recorder запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("recordings_dir", cfg.RecordingsDir),
		slog.String("logs_dir", cfg.LogsDir),
	)

	// --- Инициализация компонентов ---

	// 1. Хранилище аудиофайлов
	store, err := filestore.New(cfg.RecordingsDir)
	if err != nil {
		logger.Error("Ошибка инициализации FileStore", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logDiskUsage(logger, cfg.RecordingsDir)

	// 2. Дневной журнал загрузок
	ldg, err := ledger.New(cfg.LogsDir, cfg.LedgerLookbackDays, logger)
	if err != nil {
		logger.Error("Ошибка инициализации журнала", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. WAL-движок
	walEngine, err := wal.New(cfg.WALDir, logger)
	if err != nil {
		logger.Error("Ошибка инициализации WAL", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Каталог записей из журнала
	idx := index.New(logger)
	if err := idx.Build(ldg); err != nil {
		logger.Error("Ошибка построения каталога", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Сервисы
	uploadSvc := service.NewUploadService(walEngine, store, ldg, idx, logger)
	recordingSvc := service.NewRecordingService(walEngine, store, ldg, idx, logger)
	logSvc := service.NewLogService(ldg, service.NewCacheService(cfg.LedgerCacheSize, cfg.LedgerCacheTTL), logger)
	reconcileSvc := service.NewReconcileService(store, ldg, idx, walEngine, logger)
	gcSvc := service.NewGCService(walEngine, service.DefaultWALRetention, logger)

	// 6. Восстановление после перезапуска и стартовая сверка
	interrupted, err := reconcileSvc.RecoverPending()
	if err != nil {
		logger.Error("Ошибка восстановления WAL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(interrupted) > 0 {
		logger.Warn("Незавершённые WAL-транзакции закрыты",
			slog.Int("count", len(interrupted)),
		)
	}
	reconcileSvc.RunOnce()

	// 7. Фоновые задачи по расписанию
	scheduler := service.NewScheduler(logger)
	if err := scheduler.Add("reconcile", cfg.ReconcileSchedule, func() { reconcileSvc.RunOnce() }); err != nil {
		logger.Error("Ошибка планировщика", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := scheduler.Add("wal_gc", cfg.WALCleanSchedule, func() { gcSvc.RunOnce() }); err != nil {
		logger.Error("Ошибка планировщика", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()

	// 8. Handlers
	apiHandler := handlers.NewAPIHandler(
		handlers.NewRecordingsHandler(uploadSvc, recordingSvc),
		handlers.NewLogsHandler(logSvc),
		handlers.NewMaintenanceHandler(reconcileSvc),
		handlers.NewHealthHandler(recordingSvc, logger),
		handlers.NewOpenAPIHandler(logger),
		server.NewMetricsHandler(),
	)

	// 9. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler)

	runErr := srv.Run()

	// --- Graceful shutdown фоновых процессов ---
	logger.Info("Остановка фоновых процессов...")
	scheduler.Stop()

	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
	logger.Info("Survey Recorder остановлен")
}
