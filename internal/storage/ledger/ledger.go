// Пакет ledger — дневной журнал загрузок.
//
// Каждый календарный день (по часам сервера) — отдельный файл
// recording_log_YYYY-MM-DD.json с JSON-массивом записей в порядке добавления.
// Запись выполняется read-modify-write всего файла; все изменения
// сериализуются через один мьютекс, поэтому параллельные загрузки
// не теряют записи. Файл заменяется атомарно: temp → fsync → rename.
// Файлы журнала никогда не удаляются, только перезаписываются.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/bigkaa/survey-recorder/internal/domain/model"
)

const (
	// filePrefix и fileSuffix образуют имя файла журнала.
	filePrefix = "recording_log_"
	fileSuffix = ".json"
	// DateLayout — формат даты в имени файла и в API.
	DateLayout = "2006-01-02"
	// DefaultLookbackDays — окно поиска записи при удалении.
	DefaultLookbackDays = 7
)

// ErrInvalidDate — строка не является датой YYYY-MM-DD.
var ErrInvalidDate = errors.New("некорректная дата, ожидается YYYY-MM-DD")

// Ledger — дневной журнал загрузок в директории dir.
type Ledger struct {
	dir          string
	lookbackDays int
	now          func() time.Time
	logger       *slog.Logger

	// mu сериализует все изменения файлов журнала
	mu sync.Mutex

	onChange func(date string)
}

// New создаёт журнал. Директория создаётся, если её нет, и проверяется на запись.
func New(dir string, lookbackDays int, logger *slog.Logger) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию журнала %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".ledger_write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o640); err != nil {
		return nil, fmt.Errorf("директория журнала %s недоступна для записи: %w", dir, err)
	}
	os.Remove(testFile)

	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	return &Ledger{
		dir:          dir,
		lookbackDays: lookbackDays,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "ledger")),
	}, nil
}

// SetClock подменяет источник текущего времени (для тестов).
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// OnChange регистрирует callback, вызываемый после каждого изменения
// файла журнала. Используется для инвалидации кэша чтения.
func (l *Ledger) OnChange(fn func(date string)) {
	l.onChange = fn
}

// Today возвращает текущую дату сервера в формате YYYY-MM-DD.
func (l *Ledger) Today() string {
	return l.now().Format(DateLayout)
}

// Dir возвращает путь к директории журнала.
func (l *Ledger) Dir() string {
	return l.dir
}

// Append добавляет запись в журнал текущего дня и возвращает дату файла.
//
// Отсутствующий файл трактуется как пустой журнал. Прочие ошибки чтения
// только логируются: запись продолжается с пустым списком, а нечитаемый
// файл сохраняется рядом как *.corrupt-<unix>.
func (l *Ledger) Append(entry model.LogEntry) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	date := l.Today()
	path := l.path(date)

	entries, err := readFile(path)
	if err != nil {
		l.logger.Warn("Не удалось прочитать журнал, начинаем с пустого списка",
			slog.String("date", date),
			slog.String("error", err.Error()),
		)
		l.preserveUnreadable(path)
		entries = nil
	}

	entries = append(entries, entry)

	if err := writeFile(path, entries); err != nil {
		return "", fmt.Errorf("ошибка записи журнала %s: %w", date, err)
	}

	l.changed(date)

	l.logger.Debug("Запись добавлена в журнал",
		slog.String("date", date),
		slog.String("filename", entry.Filename),
		slog.Int("entries", len(entries)),
	)

	return date, nil
}

// ReadDate возвращает записи журнала за дату. Отсутствие файла — не ошибка:
// возвращается пустой срез.
func (l *Ledger) ReadDate(date string) ([]model.LogEntry, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	entries, err := readFile(l.path(date))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала %s: %w", date, err)
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	return entries, nil
}

// RemoveByFilename удаляет запись о файле из журнала.
// День загрузки отдельно не хранится, поэтому просматриваются сегодняшний
// и предыдущие дни в пределах окна lookbackDays (от новых к старым).
// Перезаписывается первый файл, в котором найдено совпадение, после чего
// поиск прекращается.
//
// Возвращает дату изменённого файла и found=false, если запись не найдена.
func (l *Ledger) RemoveByFilename(name string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.now()
	for i := 0; i < l.lookbackDays; i++ {
		date := today.AddDate(0, 0, -i).Format(DateLayout)
		path := l.path(date)

		entries, err := readFile(path)
		if err != nil {
			l.logger.Warn("Пропуск нечитаемого журнала при удалении",
				slog.String("date", date),
				slog.String("error", err.Error()),
			)
			continue
		}

		kept := make([]model.LogEntry, 0, len(entries))
		for _, e := range entries {
			if e.Filename != name {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(entries) {
			continue
		}

		if err := writeFile(path, kept); err != nil {
			return "", false, fmt.Errorf("ошибка перезаписи журнала %s: %w", date, err)
		}
		l.changed(date)
		return date, true, nil
	}

	return "", false, nil
}

// Dates возвращает даты всех существующих файлов журнала по возрастанию.
func (l *Ledger) Dates() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования директории журнала: %w", err)
	}

	dates := make([]string, 0, len(matches))
	for _, m := range matches {
		date := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), filePrefix), fileSuffix)
		if ValidateDate(date) == nil {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// FileName возвращает имя файла журнала для даты.
func FileName(date string) string {
	return filePrefix + date + fileSuffix
}

// ValidateDate проверяет строгий формат YYYY-MM-DD.
func ValidateDate(date string) error {
	t, err := time.Parse(DateLayout, date)
	if err != nil || t.Format(DateLayout) != date {
		return fmt.Errorf("%q: %w", date, ErrInvalidDate)
	}
	return nil
}

func (l *Ledger) path(date string) string {
	return filepath.Join(l.dir, FileName(date))
}

func (l *Ledger) changed(date string) {
	if l.onChange != nil {
		l.onChange(date)
	}
}

// preserveUnreadable откладывает нечитаемый файл журнала, чтобы
// перезапись не уничтожила его содержимое.
func (l *Ledger) preserveUnreadable(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	backup := fmt.Sprintf("%s.corrupt-%d", path, l.now().Unix())
	if err := os.Rename(path, backup); err != nil {
		l.logger.Error("Не удалось сохранить копию нечитаемого журнала",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}
	l.logger.Warn("Нечитаемый журнал сохранён в копию", slog.String("backup", backup))
}

// readFile читает файл журнала. Отсутствующий файл — пустой журнал.
func readFile(path string) ([]model.LogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var entries []model.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("ошибка десериализации: %w", err)
	}
	return entries, nil
}

// writeFile атомарно записывает журнал на диск.
// Паттерн: temp файл → fsync → atomic rename.
func writeFile(path string, entries []model.LogEntry) error {
	if entries == nil {
		entries = []model.LogEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}
