// logs.go — чтение дневного журнала загрузок через кэш.
package service

import (
	"log/slog"
	"sync"

	"github.com/bigkaa/survey-recorder/internal/domain/model"
	"github.com/bigkaa/survey-recorder/internal/storage/ledger"
)

// LogService — выдача записей журнала за день.
type LogService struct {
	ledger *ledger.Ledger
	cache  *CacheService
	logger *slog.Logger

	// gen — счётчик изменений по дате; день, прочитанный до изменения,
	// не попадает в кэш
	mu  sync.Mutex
	gen map[string]uint64
}

// NewLogService создаёт сервис журнала и подписывает кэш на изменения журнала.
// cache может быть nil: тогда журнал читается с диска на каждый запрос.
func NewLogService(ldg *ledger.Ledger, cache *CacheService, logger *slog.Logger) *LogService {
	s := &LogService{
		ledger: ldg,
		cache:  cache,
		logger: logger.With(slog.String("component", "log_service")),
		gen:    make(map[string]uint64),
	}
	if cache != nil {
		ldg.OnChange(s.invalidate)
	}
	return s
}

func (s *LogService) invalidate(date string) {
	s.mu.Lock()
	s.gen[date]++
	s.cache.Delete(date)
	s.mu.Unlock()
}

// ByDate возвращает записи за дату в порядке добавления.
// Пустая дата означает сегодня. Нет файла — пустой список.
func (s *LogService) ByDate(date string) ([]model.LogEntry, *Error) {
	if date == "" {
		date = s.ledger.Today()
	}
	if err := ledger.ValidateDate(date); err != nil {
		return nil, validationError("Invalid date %q, expected YYYY-MM-DD", date)
	}

	var gen uint64
	if s.cache != nil {
		if entries, ok := s.cache.Get(date); ok {
			return entries, nil
		}
		s.mu.Lock()
		gen = s.gen[date]
		s.mu.Unlock()
	}

	entries, err := s.ledger.ReadDate(date)
	if err != nil {
		s.logger.Error("Ошибка чтения журнала",
			slog.String("date", date),
			slog.String("error", err.Error()),
		)
		return nil, internalError("Failed to read upload log")
	}

	if s.cache != nil {
		s.mu.Lock()
		if s.gen[date] == gen {
			s.cache.Set(date, entries)
		}
		s.mu.Unlock()
	}
	return entries, nil
}
