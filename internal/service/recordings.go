// recordings.go — сервис выдачи и удаления записей.
package service

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/bigkaa/survey-recorder/internal/api/middleware"
	"github.com/bigkaa/survey-recorder/internal/domain/model"
	"github.com/bigkaa/survey-recorder/internal/storage/filename"
	"github.com/bigkaa/survey-recorder/internal/storage/filestore"
	"github.com/bigkaa/survey-recorder/internal/storage/index"
	"github.com/bigkaa/survey-recorder/internal/storage/ledger"
	"github.com/bigkaa/survey-recorder/internal/storage/wal"
)

// ListFilter — необязательные фильтры списка записей.
type ListFilter struct {
	// Item — подстрока названия позиции, без учёта регистра
	Item string
	// Date — календарный день YYYY-MM-DD по часам сервера
	Date string
}

// RecordingService — сервис списка, скачивания и удаления записей.
type RecordingService struct {
	walEngine *wal.WAL
	store     *filestore.FileStore
	ledger    *ledger.Ledger
	idx       *index.Index
	location  *time.Location
	logger    *slog.Logger
}

// NewRecordingService создаёт сервис записей.
func NewRecordingService(
	walEngine *wal.WAL,
	store *filestore.FileStore,
	ldg *ledger.Ledger,
	idx *index.Index,
	logger *slog.Logger,
) *RecordingService {
	return &RecordingService{
		walEngine: walEngine,
		store:     store,
		ledger:    ldg,
		idx:       idx,
		location:  time.Local,
		logger:    logger.With(slog.String("component", "recording_service")),
	}
}

// List возвращает записи хранилища, новые первыми.
// Название позиции берётся из каталога журнала, а если записи нет,
// восстанавливается из имени файла.
func (s *RecordingService) List(filter ListFilter) ([]model.Recording, *Error) {
	if filter.Date != "" {
		if err := ledger.ValidateDate(filter.Date); err != nil {
			return nil, validationError("Invalid date %q, expected YYYY-MM-DD", filter.Date)
		}
	}

	recordings, err := s.store.List()
	if err != nil {
		s.logger.Error("Ошибка чтения хранилища записей", slog.String("error", err.Error()))
		return nil, internalError("Failed to list recordings")
	}

	item := strings.ToLower(filter.Item)
	result := make([]model.Recording, 0, len(recordings))
	for _, rec := range recordings {
		if name, ok := s.idx.ItemName(rec.Filename); ok {
			rec.ItemName = name
		} else {
			rec.ItemName = filename.ItemNameFromFilename(rec.Filename)
		}

		if item != "" && !strings.Contains(strings.ToLower(rec.ItemName), item) {
			continue
		}
		if filter.Date != "" && rec.CreatedAt.In(s.location).Format(ledger.DateLayout) != filter.Date {
			continue
		}
		result = append(result, rec)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// Serve отдаёт файл записи клиенту через http.ServeContent
// (Range requests, If-Modified-Since).
func (s *RecordingService) Serve(w http.ResponseWriter, r *http.Request, name string) *Error {
	file, err := s.store.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, filestore.ErrInvalidFilename):
			return invalidFilename()
		case errors.Is(err, filestore.ErrNotFound):
			return notFound("Recording %s not found", name)
		}
		s.logger.Error("Ошибка открытия файла записи",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		return internalError("Failed to read recording")
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		s.logger.Error("Ошибка получения stat файла",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		return internalError("Failed to read recording")
	}

	w.Header().Set("Content-Type", model.AudioContentType)
	w.Header().Set("Content-Disposition", contentDisposition(name))
	w.Header().Set("Accept-Ranges", "bytes")

	http.ServeContent(w, r, name, stat.ModTime(), file)

	middleware.OperationsTotal.WithLabelValues("download", "success").Inc()

	s.logger.Debug("Запись скачана",
		slog.String("filename", name),
		slog.Int64("size", stat.Size()),
	)
	return nil
}

// Delete удаляет файл записи и строку журнала о нём.
//
// Поток:
//  1. WAL Begin
//  2. Удаление файла (нет файла → Rollback, 404, журнал не трогается)
//  3. Удаление строки из журнала в пределах окна поиска
//  4. index.Remove
//  5. WAL Commit
func (s *RecordingService) Delete(name string) *Error {
	if err := filename.Validate(name); err != nil {
		return invalidFilename()
	}

	walEntry, err := s.walEngine.Begin(wal.OpRecordingDelete, name)
	if err != nil {
		s.logger.Error("Ошибка создания WAL-транзакции",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		return internalError("Failed to delete recording")
	}

	if err := s.store.Delete(name); err != nil {
		s.rollback(walEntry.TransactionID)
		if errors.Is(err, filestore.ErrNotFound) {
			middleware.OperationsTotal.WithLabelValues("delete", "not_found").Inc()
			return notFound("Recording %s not found", name)
		}
		s.logger.Error("Ошибка удаления файла записи",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		middleware.OperationsTotal.WithLabelValues("delete", "error").Inc()
		return internalError("Failed to delete recording")
	}
	middleware.RecordingsTotal.Dec()

	date, found, err := s.ledger.RemoveByFilename(name)
	switch {
	case err != nil:
		// Файл уже удалён: строка журнала остаётся сиротой до сверки
		s.logger.Error("Ошибка удаления записи из журнала",
			slog.String("filename", name),
			slog.String("tx_id", walEntry.TransactionID),
			slog.String("error", err.Error()),
		)
	case !found:
		s.logger.Warn("Запись о файле не найдена в журнале за окно поиска",
			slog.String("filename", name),
		)
	}

	s.idx.Remove(name)

	if err == nil {
		if err := s.walEngine.Commit(walEntry.TransactionID, date); err != nil {
			s.logger.Error("Ошибка коммита WAL",
				slog.String("tx_id", walEntry.TransactionID),
				slog.String("error", err.Error()),
			)
		}
	}

	middleware.OperationsTotal.WithLabelValues("delete", "success").Inc()

	s.logger.Info("Запись удалена",
		slog.String("filename", name),
		slog.String("ledger_date", date),
		slog.Bool("ledger_found", found),
	)
	return nil
}

func (s *RecordingService) rollback(txID string) {
	if err := s.walEngine.Rollback(txID); err != nil {
		s.logger.Error("Ошибка отката WAL",
			slog.String("tx_id", txID),
			slog.String("error", err.Error()),
		)
	}
}

// Count возвращает количество записей в хранилище.
func (s *RecordingService) Count() (int, error) {
	return s.store.Count()
}

// contentDisposition собирает заголовок вложения с корректным экранированием имени.
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
