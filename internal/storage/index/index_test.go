package index

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/bigkaa/survey-recorder/internal/domain/model"
)

// testLogger возвращает логгер для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// fakeSource — журнал в памяти.
type fakeSource struct {
	days   map[string][]model.LogEntry
	broken map[string]bool
}

func (f *fakeSource) Dates() ([]string, error) {
	var dates []string
	for d := range f.days {
		dates = append(dates, d)
	}
	for d := range f.broken {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

func (f *fakeSource) ReadDate(date string) ([]model.LogEntry, error) {
	if f.broken[date] {
		return nil, errors.New("нечитаемый журнал")
	}
	return f.days[date], nil
}

func logEntry(name, item string) model.LogEntry {
	return model.LogEntry{RecordingID: "id-" + name, Filename: name, ItemName: item, DurationMs: 1000}
}

// TestNew проверяет создание пустого каталога.
func TestNew(t *testing.T) {
	idx := New(testLogger())

	if idx.Count() != 0 {
		t.Errorf("ожидалось 0 записей, получено %d", idx.Count())
	}
}

// TestBuild проверяет построение из всех дней журнала.
func TestBuild(t *testing.T) {
	src := &fakeSource{
		days: map[string][]model.LogEntry{
			"2026-10-14": {logEntry("a.webm", "Idli"), logEntry("dup.webm", "Old")},
			"2026-10-15": {logEntry("b.webm", "Masala Dosa"), logEntry("dup.webm", "New")},
		},
		broken: map[string]bool{"2026-10-16": true},
	}

	idx := New(testLogger())
	if err := idx.Build(src); err != nil {
		t.Fatalf("ошибка построения: %v", err)
	}

	if idx.Count() != 3 {
		t.Errorf("ожидалось 3 записи, получено %d", idx.Count())
	}

	item, ok := idx.ItemName("b.webm")
	if !ok || item != "Masala Dosa" {
		t.Errorf("ItemName(b.webm) = %q, %v", item, ok)
	}

	if item, _ := idx.ItemName("dup.webm"); item != "New" {
		t.Errorf("повтор должен разрешаться в пользу позднего дня: %q", item)
	}
}

// TestBuild_Replaces проверяет, что повторное построение заменяет содержимое.
func TestBuild_Replaces(t *testing.T) {
	idx := New(testLogger())
	idx.Add(logEntry("stale.webm", "x"))

	if err := idx.Build(&fakeSource{days: map[string][]model.LogEntry{}}); err != nil {
		t.Fatalf("ошибка построения: %v", err)
	}
	if idx.Count() != 0 {
		t.Errorf("ожидался пустой каталог, получено %d", idx.Count())
	}
}

// hookSource вызывает during в середине чтения журнала.
type hookSource struct {
	fakeSource
	during func()
}

func (h *hookSource) ReadDate(date string) ([]model.LogEntry, error) {
	entries, err := h.fakeSource.ReadDate(date)
	if h.during != nil {
		h.during()
		h.during = nil
	}
	return entries, err
}

// TestBuild_KeepsChangesDuringBuild проверяет, что загрузка и удаление,
// выполненные пока журнал читается, переживают подмену каталога.
func TestBuild_KeepsChangesDuringBuild(t *testing.T) {
	idx := New(testLogger())
	idx.Add(logEntry("old.webm", "Vada"))

	src := &hookSource{
		fakeSource: fakeSource{days: map[string][]model.LogEntry{
			"2026-10-16": {logEntry("old.webm", "Vada"), logEntry("kept.webm", "Idli")},
		}},
	}
	src.during = func() {
		// Журнал уже прочитан: этих изменений в нём нет
		idx.Add(logEntry("new.webm", "Dosa"))
		idx.Remove("old.webm")
		idx.Add(logEntry("flip.webm", "Upma"))
		idx.Remove("flip.webm")
	}

	if err := idx.Build(src); err != nil {
		t.Fatalf("ошибка построения: %v", err)
	}

	if item, ok := idx.ItemName("new.webm"); !ok || item != "Dosa" {
		t.Errorf("добавленная во время построения запись потеряна: %q, %v", item, ok)
	}
	if _, ok := idx.ItemName("old.webm"); ok {
		t.Error("удалённая во время построения запись не должна воскресать")
	}
	if _, ok := idx.ItemName("flip.webm"); ok {
		t.Error("изменения должны повторяться по порядку")
	}
	if idx.Count() != 2 {
		t.Errorf("ожидалось 2 записи, получено %d", idx.Count())
	}

	// После построения изменения больше не копятся
	idx.Add(logEntry("after.webm", "Poha"))
	if err := idx.Build(&fakeSource{days: map[string][]model.LogEntry{}}); err != nil {
		t.Fatalf("ошибка построения: %v", err)
	}
	if idx.Count() != 0 {
		t.Errorf("ожидался пустой каталог, получено %d", idx.Count())
	}
}

// brokenDates — источник, не отдающий список дат.
type brokenDates struct{ fakeSource }

func (brokenDates) Dates() ([]string, error) { return nil, errors.New("нет доступа") }

// TestBuild_Error проверяет, что при ошибке каталог остаётся прежним.
func TestBuild_Error(t *testing.T) {
	idx := New(testLogger())
	idx.Add(logEntry("a.webm", "Idli"))

	if err := idx.Build(&brokenDates{}); err == nil {
		t.Fatal("ожидалась ошибка построения")
	}
	if _, ok := idx.ItemName("a.webm"); !ok {
		t.Error("каталог не должен меняться при ошибке построения")
	}
}

// TestAddRemove проверяет добавление и удаление.
func TestAddRemove(t *testing.T) {
	idx := New(testLogger())
	idx.Add(logEntry("a.webm", "Idli"))

	if _, ok := idx.ItemName("a.webm"); !ok {
		t.Fatal("запись должна быть в каталоге")
	}
	if !idx.Remove("a.webm") {
		t.Error("Remove должен вернуть true для существующей записи")
	}
	if idx.Remove("a.webm") {
		t.Error("Remove должен вернуть false для отсутствующей записи")
	}
	if _, ok := idx.ItemName("a.webm"); ok {
		t.Error("запись должна быть удалена")
	}
}

// TestConcurrentAccess проверяет параллельные операции (запускать с -race).
func TestConcurrentAccess(t *testing.T) {
	idx := New(testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			idx.Add(logEntry(fmt.Sprintf("f%d.webm", i), "x"))
		}(i)
		go func(i int) {
			defer wg.Done()
			idx.ItemName(fmt.Sprintf("f%d.webm", i))
			idx.Count()
		}(i)
	}
	wg.Wait()

	if idx.Count() != 50 {
		t.Errorf("ожидалось 50 записей, получено %d", idx.Count())
	}
}
