// Пакет index — потокобезопасный in-memory каталог записей журнала.
//
// Каталог строится при старте из всех файлов дневного журнала (Build)
// и обновляется синхронно при загрузке и удалении (Add, Remove).
// Даёт исходное название позиции по имени файла без чтения журналов
// с диска.
//
// Не персистентный: при рестарте и после reconcile пересобирается из журнала.
//
// Add и Remove вызываются после того, как изменение уже записано в журнал.
// Пока Build читает журнал, такие операции применяются к текущему каталогу
// и запоминаются; перед подменой каталога они повторяются поверх
// прочитанного, поэтому изменение, сделанное во время построения, не
// теряется и не воскресает.
package index

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bigkaa/survey-recorder/internal/domain/model"
)

// Source — источник записей для построения каталога (дневной журнал).
type Source interface {
	Dates() ([]string, error)
	ReadDate(date string) ([]model.LogEntry, error)
}

// op — изменение каталога, сделанное во время построения.
type op struct {
	filename string
	itemName string
	remove   bool
}

// Index — каталог filename → исходное название позиции.
type Index struct {
	// buildMu сериализует построения
	buildMu sync.Mutex

	mu       sync.RWMutex
	items    map[string]string
	building bool
	pending  []op

	logger *slog.Logger
}

// New создаёт пустой каталог. Для заполнения вызовите Build.
func New(logger *slog.Logger) *Index {
	return &Index{
		items:  make(map[string]string),
		logger: logger.With(slog.String("component", "index")),
	}
}

// Build заменяет содержимое каталога записями из всех дней журнала.
// При повторении имени файла в нескольких днях побеждает более поздний день.
// Нечитаемые дни пропускаются с предупреждением.
func (idx *Index) Build(src Source) error {
	idx.buildMu.Lock()
	defer idx.buildMu.Unlock()

	idx.mu.Lock()
	idx.building = true
	idx.pending = nil
	idx.mu.Unlock()

	items, days, err := readSource(src, idx.logger)
	if err != nil {
		idx.mu.Lock()
		idx.building = false
		idx.pending = nil
		idx.mu.Unlock()
		return err
	}

	idx.mu.Lock()
	replayed := len(idx.pending)
	for _, o := range idx.pending {
		if o.remove {
			delete(items, o.filename)
		} else {
			items[o.filename] = o.itemName
		}
	}
	idx.items = items
	idx.building = false
	idx.pending = nil
	idx.mu.Unlock()

	idx.logger.Info("Каталог записей построен",
		slog.Int("entries", len(items)),
		slog.Int("days", days),
		slog.Int("replayed", replayed),
	)
	return nil
}

func readSource(src Source, logger *slog.Logger) (map[string]string, int, error) {
	dates, err := src.Dates()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения дат журнала: %w", err)
	}

	items := make(map[string]string)
	for _, date := range dates {
		dayEntries, err := src.ReadDate(date)
		if err != nil {
			logger.Warn("Пропуск нечитаемого журнала при построении каталога",
				slog.String("date", date),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, e := range dayEntries {
			items[e.Filename] = e.ItemName
		}
	}
	return items, len(dates), nil
}

// Add добавляет или заменяет запись для файла.
func (idx *Index) Add(entry model.LogEntry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.items[entry.Filename] = entry.ItemName
	if idx.building {
		idx.pending = append(idx.pending, op{filename: entry.Filename, itemName: entry.ItemName})
	}
}

// Remove удаляет запись о файле. Возвращает true, если запись была.
func (idx *Index) Remove(filename string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.building {
		idx.pending = append(idx.pending, op{filename: filename, remove: true})
	}
	if _, ok := idx.items[filename]; !ok {
		return false
	}
	delete(idx.items, filename)
	return true
}

// ItemName возвращает исходное название позиции для файла.
func (idx *Index) ItemName(filename string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	name, ok := idx.items[filename]
	return name, ok
}

// Count возвращает количество записей в каталоге.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.items)
}
