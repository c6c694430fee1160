// upload.go — сервис сохранения записей с WAL-транзакциями.
package service

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/survey-recorder/internal/api/middleware"
	"github.com/bigkaa/survey-recorder/internal/domain/model"
	"github.com/bigkaa/survey-recorder/internal/storage/filename"
	"github.com/bigkaa/survey-recorder/internal/storage/filestore"
	"github.com/bigkaa/survey-recorder/internal/storage/index"
	"github.com/bigkaa/survey-recorder/internal/storage/ledger"
	"github.com/bigkaa/survey-recorder/internal/storage/wal"
)

// DownloadPathPrefix — префикс ссылки на скачивание записи.
const DownloadPathPrefix = "/api/recordings/"

// UploadParams — проверенная загрузка.
type UploadParams struct {
	// Reader — поток данных аудиофайла
	Reader io.Reader
	// Metadata — метаданные, прошедшие валидацию
	Metadata model.UploadMetadata
	// ClientIP и UserAgent попадают в журнал как есть
	ClientIP  string
	UserAgent string
}

// UploadResult — результат загрузки.
type UploadResult struct {
	RecordingID string
	Filename    string
	DownloadURL string
	// LedgerDate — день журнала с записью; пусто, если запись в журнал не удалась
	LedgerDate string
}

// UploadService — сервис загрузки записей.
type UploadService struct {
	walEngine *wal.WAL
	store     *filestore.FileStore
	ledger    *ledger.Ledger
	idx       *index.Index
	now       func() time.Time
	logger    *slog.Logger
}

// NewUploadService создаёт сервис загрузки записей.
func NewUploadService(
	walEngine *wal.WAL,
	store *filestore.FileStore,
	ldg *ledger.Ledger,
	idx *index.Index,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		walEngine: walEngine,
		store:     store,
		ledger:    ldg,
		idx:       idx,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "upload_service")),
	}
}

// Upload сохраняет запись и добавляет строку в журнал текущего дня.
//
// Поток:
//  1. Генерация имени файла и recordingId
//  2. WAL Begin
//  3. Сохранение файла
//  4. Добавление записи в журнал
//  5. index.Add
//  6. WAL Commit
//
// Ошибка сохранения файла откатывает транзакцию. Ошибка журнала
// не отменяет загрузку: файл остаётся, транзакция остаётся pending
// и обнаруживается сверкой.
func (s *UploadService) Upload(params UploadParams) (*UploadResult, *Error) {
	meta := params.Metadata
	name := filename.Generate(meta.ItemName, s.now())
	recordingID := uuid.New().String()

	walEntry, err := s.walEngine.Begin(wal.OpRecordingCreate, name)
	if err != nil {
		s.logger.Error("Ошибка создания WAL-транзакции",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
		return nil, internalError("Failed to save recording")
	}

	saved, err := s.store.Save(params.Reader, name)
	if err != nil {
		s.logger.Error("Ошибка сохранения файла записи",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		// Save сам удаляет временный файл, целевое имя не публикуется
		if rbErr := s.walEngine.Rollback(walEntry.TransactionID); rbErr != nil {
			s.logger.Error("Ошибка отката WAL",
				slog.String("tx_id", walEntry.TransactionID),
				slog.String("error", rbErr.Error()),
			)
		}
		middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
		return nil, internalError("Failed to save recording")
	}

	entry := model.LogEntry{
		RecordingID: recordingID,
		Filename:    name,
		ItemName:    meta.ItemName,
		DurationMs:  meta.DurationMs,
		Timestamp:   meta.Timestamp,
		Locale:      meta.Locale,
		SessionID:   meta.SessionID,
		IP:          params.ClientIP,
		UserAgent:   params.UserAgent,
		AppVersion:  meta.AppVersion,
		FileSize:    saved.Size,
		DeviceInfo:  meta.DeviceInfo,
	}

	middleware.RecordingsTotal.Inc()
	middleware.UploadedBytesTotal.Add(float64(saved.Size))

	date, err := s.ledger.Append(entry)
	if err != nil {
		// Файл сохранён: потерять запись пользователя хуже, чем получить сироту
		s.logger.Error("Ошибка записи в журнал, файл сохранён без записи",
			slog.String("filename", name),
			slog.String("tx_id", walEntry.TransactionID),
			slog.String("error", err.Error()),
		)
		middleware.OperationsTotal.WithLabelValues("upload", "ledger_error").Inc()
		return &UploadResult{
			RecordingID: recordingID,
			Filename:    name,
			DownloadURL: DownloadPathPrefix + name,
		}, nil
	}

	s.idx.Add(entry)

	if err := s.walEngine.Commit(walEntry.TransactionID, date); err != nil {
		s.logger.Error("Ошибка коммита WAL (данные сохранены)",
			slog.String("tx_id", walEntry.TransactionID),
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
	}

	middleware.OperationsTotal.WithLabelValues("upload", "success").Inc()

	s.logger.Info("Запись загружена",
		slog.String("recording_id", recordingID),
		slog.String("filename", name),
		slog.String("item_name", meta.ItemName),
		slog.Int64("size", saved.Size),
		slog.Float64("duration_ms", meta.DurationMs),
	)

	return &UploadResult{
		RecordingID: recordingID,
		Filename:    name,
		DownloadURL: DownloadPathPrefix + name,
		LedgerDate:  date,
	}, nil
}
