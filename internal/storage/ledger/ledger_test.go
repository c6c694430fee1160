package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/bigkaa/survey-recorder/internal/domain/model"
)

// testLogger возвращает логгер для тестов (вывод подавляется).
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// newTestLedger создаёт журнал с фиксированными часами.
func newTestLedger(t *testing.T, now time.Time) *Ledger {
	t.Helper()
	l, err := New(t.TempDir(), DefaultLookbackDays, testLogger())
	if err != nil {
		t.Fatalf("ошибка создания журнала: %v", err)
	}
	l.SetClock(func() time.Time { return now })
	return l
}

func entry(name, item string) model.LogEntry {
	return model.LogEntry{
		RecordingID: "rec-" + name,
		Filename:    name,
		ItemName:    item,
		DurationMs:  2500,
		Timestamp:   "2026-10-16T09:15:02.417Z",
	}
}

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)

// TestAppend_ReadDate проверяет добавление и чтение в порядке добавления.
func TestAppend_ReadDate(t *testing.T) {
	l := newTestLedger(t, testNow)

	for i := 0; i < 3; i++ {
		date, err := l.Append(entry(fmt.Sprintf("f%d.webm", i), "Idli"))
		if err != nil {
			t.Fatalf("ошибка добавления: %v", err)
		}
		if date != "2026-10-16" {
			t.Errorf("дата: ожидалось 2026-10-16, получено %s", date)
		}
	}

	entries, err := l.ReadDate("2026-10-16")
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ожидалось 3 записи, получено %d", len(entries))
	}
	for i, e := range entries {
		if e.Filename != fmt.Sprintf("f%d.webm", i) {
			t.Errorf("порядок нарушен: [%d] = %s", i, e.Filename)
		}
	}

	// Файл — JSON-массив
	data, err := os.ReadFile(filepath.Join(l.Dir(), "recording_log_2026-10-16.json"))
	if err != nil {
		t.Fatalf("файл журнала не найден: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("файл журнала не является JSON-массивом: %v", err)
	}
	if raw[0]["itemName"] != "Idli" || raw[0]["durationMs"] != float64(2500) {
		t.Errorf("неожиданное содержимое: %v", raw[0])
	}
}

// TestReadDate_Missing проверяет пустой результат для отсутствующего дня.
func TestReadDate_Missing(t *testing.T) {
	l := newTestLedger(t, testNow)

	entries, err := l.ReadDate("2020-01-01")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("ожидался пустой непустой-nil срез, получено %#v", entries)
	}
}

// TestReadDate_InvalidDate проверяет отказ для некорректных дат.
func TestReadDate_InvalidDate(t *testing.T) {
	l := newTestLedger(t, testNow)

	for _, date := range []string{"", "2026-1-1", "16-10-2026", "2026-02-30", "../../etc", "2026-10-16.json"} {
		if _, err := l.ReadDate(date); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ReadDate(%q): ожидалась ErrInvalidDate, получено %v", date, err)
		}
	}
}

// TestAppend_Concurrent проверяет, что параллельные добавления не теряются.
func TestAppend_Concurrent(t *testing.T) {
	l := newTestLedger(t, testNow)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := l.Append(entry(fmt.Sprintf("c%d.webm", i), "Vada")); err != nil {
				t.Errorf("ошибка добавления: %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := l.ReadDate(l.Today())
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if len(entries) != n {
		t.Errorf("ожидалось %d записей, получено %d", n, len(entries))
	}
}

// TestAppend_CorruptFile проверяет продолжение работы при нечитаемом журнале.
func TestAppend_CorruptFile(t *testing.T) {
	l := newTestLedger(t, testNow)
	path := filepath.Join(l.Dir(), FileName("2026-10-16"))

	if err := os.WriteFile(path, []byte("{not json"), 0o640); err != nil {
		t.Fatalf("ошибка подготовки: %v", err)
	}

	if _, err := l.Append(entry("new.webm", "Idli")); err != nil {
		t.Fatalf("добавление не должно прерываться: %v", err)
	}

	entries, err := l.ReadDate("2026-10-16")
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if len(entries) != 1 || entries[0].Filename != "new.webm" {
		t.Errorf("неожиданные записи: %+v", entries)
	}

	backups, _ := filepath.Glob(path + ".corrupt-*")
	if len(backups) != 1 {
		t.Errorf("ожидалась копия нечитаемого журнала, найдено %d", len(backups))
	}
}

// TestRemoveByFilename проверяет удаление записи в окне поиска.
func TestRemoveByFilename(t *testing.T) {
	l := newTestLedger(t, testNow.AddDate(0, 0, -3))
	if _, err := l.Append(entry("old.webm", "Idli")); err != nil {
		t.Fatalf("ошибка добавления: %v", err)
	}
	if _, err := l.Append(entry("keep.webm", "Idli")); err != nil {
		t.Fatalf("ошибка добавления: %v", err)
	}

	changed := ""
	l.OnChange(func(date string) { changed = date })
	l.SetClock(func() time.Time { return testNow })

	date, found, err := l.RemoveByFilename("old.webm")
	if err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if !found || date != "2026-10-13" {
		t.Fatalf("ожидалось found=true date=2026-10-13, получено %v %s", found, date)
	}
	if changed != "2026-10-13" {
		t.Errorf("OnChange не вызван для %s", date)
	}

	entries, _ := l.ReadDate("2026-10-13")
	if len(entries) != 1 || entries[0].Filename != "keep.webm" {
		t.Errorf("неожиданные записи после удаления: %+v", entries)
	}
}

// TestRemoveByFilename_OutsideWindow проверяет, что старые журналы не просматриваются.
func TestRemoveByFilename_OutsideWindow(t *testing.T) {
	l := newTestLedger(t, testNow.AddDate(0, 0, -DefaultLookbackDays))
	if _, err := l.Append(entry("ancient.webm", "Idli")); err != nil {
		t.Fatalf("ошибка добавления: %v", err)
	}
	l.SetClock(func() time.Time { return testNow })

	_, found, err := l.RemoveByFilename("ancient.webm")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if found {
		t.Error("запись за пределами окна не должна находиться")
	}
}

// TestRemoveByFilename_NotFound проверяет, что журнал не меняется без совпадений.
func TestRemoveByFilename_NotFound(t *testing.T) {
	l := newTestLedger(t, testNow)
	if _, err := l.Append(entry("a.webm", "Idli")); err != nil {
		t.Fatalf("ошибка добавления: %v", err)
	}

	path := filepath.Join(l.Dir(), FileName(l.Today()))
	before, _ := os.ReadFile(path)

	_, found, err := l.RemoveByFilename("missing.webm")
	if err != nil || found {
		t.Fatalf("ожидалось found=false без ошибки, получено %v %v", found, err)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("журнал изменён без совпадений")
	}
}

// TestDates проверяет перечисление дат журналов.
func TestDates(t *testing.T) {
	l := newTestLedger(t, testNow)
	for _, d := range []int{0, -1, -5} {
		l.SetClock(func() time.Time { return testNow.AddDate(0, 0, d) })
		if _, err := l.Append(entry(fmt.Sprintf("d%d.webm", -d), "x")); err != nil {
			t.Fatalf("ошибка добавления: %v", err)
		}
	}
	_ = os.WriteFile(filepath.Join(l.Dir(), "recording_log_garbage.json"), []byte("[]"), 0o640)

	dates, err := l.Dates()
	if err != nil {
		t.Fatalf("ошибка: %v", err)
	}
	expected := []string{"2026-10-11", "2026-10-15", "2026-10-16"}
	if fmt.Sprint(dates) != fmt.Sprint(expected) {
		t.Errorf("ожидалось %v, получено %v", expected, dates)
	}
}
