package service

import (
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/survey-recorder/internal/api/generated"
	"github.com/bigkaa/survey-recorder/internal/domain/model"
	"github.com/bigkaa/survey-recorder/internal/storage/wal"
)

func TestReconcileRunOnce_NoIssues(t *testing.T) {
	env := setupTestEnv(t)
	upload := NewUploadService(env.wal, env.store, env.ledger, env.idx, env.logger)
	for _, item := range []string{"Idli", "Vada", "Dosa"} {
		if _, err := upload.Upload(testUploadParams(item, []byte("data"))); err != nil {
			t.Fatal(err)
		}
	}

	rs := NewReconcileService(env.store, env.ledger, env.idx, env.wal, env.logger)
	result, skipped := rs.RunOnce()
	if skipped {
		t.Fatal("Reconciliation пропущена")
	}

	if len(result.Issues) != 0 {
		t.Errorf("Ожидалось 0 проблем, получено %d: %+v", len(result.Issues), result.Issues)
	}
	if result.ArtifactsChecked != 3 || result.EntriesChecked != 3 || result.Summary.Ok != 3 {
		t.Errorf("Счётчики: artifacts=%d entries=%d ok=%d",
			result.ArtifactsChecked, result.EntriesChecked, result.Summary.Ok)
	}
	if result.CompletedAt.Before(result.StartedAt) {
		t.Error("CompletedAt раньше StartedAt")
	}
}

func TestReconcileRunOnce_Orphans(t *testing.T) {
	env := setupTestEnv(t)

	// Файл без строки журнала
	env.writeArtifact(t, "survey_lost_x_1.webm", []byte("1"))
	// Строка журнала без файла
	if _, err := env.ledger.Append(model.LogEntry{Filename: "survey_gone_x_2.webm", ItemName: "Gone"}); err != nil {
		t.Fatal(err)
	}
	// Согласованная пара
	env.writeArtifact(t, "survey_ok_x_3.webm", []byte("3"))
	if _, err := env.ledger.Append(model.LogEntry{Filename: "survey_ok_x_3.webm", ItemName: "Ok"}); err != nil {
		t.Fatal(err)
	}

	rs := NewReconcileService(env.store, env.ledger, env.idx, env.wal, env.logger)
	result, _ := rs.RunOnce()

	if len(result.Issues) != 2 {
		t.Fatalf("Ожидалось 2 проблемы, получено %d: %+v", len(result.Issues), result.Issues)
	}
	if result.Issues[0].Type != generated.OrphanedArtifact || result.Issues[0].Filename != "survey_lost_x_1.webm" {
		t.Errorf("Issues[0]: %+v", result.Issues[0])
	}
	if result.Issues[1].Type != generated.OrphanedEntry || result.Issues[1].Filename != "survey_gone_x_2.webm" {
		t.Errorf("Issues[1]: %+v", result.Issues[1])
	}
	if result.Issues[1].LedgerDate == nil || *result.Issues[1].LedgerDate != env.ledger.Today() {
		t.Errorf("LedgerDate: %v", result.Issues[1].LedgerDate)
	}
	if result.Summary.OrphanedArtifacts != 1 || result.Summary.OrphanedEntries != 1 || result.Summary.Ok != 1 {
		t.Errorf("Summary: %+v", result.Summary)
	}

	// Сверка только фиксирует: данные не изменены
	if !env.artifactExists(t, "survey_lost_x_1.webm") {
		t.Error("Файл-сирота не должен удаляться")
	}
	entries, _ := env.ledger.ReadDate(env.ledger.Today())
	if len(entries) != 2 {
		t.Errorf("Журнал не должен меняться: %d записей", len(entries))
	}

	// Каталог пересобран из журнала
	if name, ok := env.idx.ItemName("survey_ok_x_3.webm"); !ok || name != "Ok" {
		t.Errorf("Каталог не пересобран: %q, %v", name, ok)
	}
}

func TestReconcileRunOnce_InterruptedTransaction(t *testing.T) {
	env := setupTestEnv(t)

	if _, err := env.wal.Begin(wal.OpRecordingCreate, "survey_half_x_1.webm"); err != nil {
		t.Fatal(err)
	}

	rs := NewReconcileService(env.store, env.ledger, env.idx, env.wal, env.logger)

	// Свежая транзакция ещё может завершиться
	result, _ := rs.RunOnce()
	if result.Summary.InterruptedTransactions != 0 {
		t.Errorf("Свежая транзакция не должна считаться прерванной: %+v", result.Issues)
	}

	rs.now = func() time.Time { return time.Now().Add(2 * pendingGrace) }
	result, _ = rs.RunOnce()
	if result.Summary.InterruptedTransactions != 1 {
		t.Fatalf("Ожидалась 1 прерванная транзакция: %+v", result.Issues)
	}
	if result.Issues[0].Type != generated.InterruptedTransaction || result.Issues[0].Filename != "survey_half_x_1.webm" {
		t.Errorf("Issue: %+v", result.Issues[0])
	}
}

func TestRecoverPending(t *testing.T) {
	env := setupTestEnv(t)

	if _, err := env.wal.Begin(wal.OpRecordingDelete, "survey_a_x_1.webm"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.wal.Begin(wal.OpRecordingCreate, "survey_b_x_2.webm"); err != nil {
		t.Fatal(err)
	}

	rs := NewReconcileService(env.store, env.ledger, env.idx, env.wal, env.logger)
	issues, err := rs.RecoverPending()
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(issues) != 2 {
		t.Errorf("Ожидалось 2 прерванных транзакции, получено %d", len(issues))
	}
	if n := env.pendingCount(t); n != 0 {
		t.Errorf("Транзакции должны быть закрыты, pending: %d", n)
	}
}

// TestReconcileRunOnce_Concurrent проверяет защиту от параллельного запуска.
func TestReconcileRunOnce_Concurrent(t *testing.T) {
	env := setupTestEnv(t)
	rs := NewReconcileService(env.store, env.ledger, env.idx, env.wal, env.logger)

	rs.mu.Lock()
	rs.inProcess = true
	rs.mu.Unlock()

	if !rs.IsInProgress() {
		t.Fatal("IsInProgress должен вернуть true")
	}
	if result, skipped := rs.RunOnce(); !skipped || result != nil {
		t.Errorf("Ожидался пропуск, получено skipped=%v result=%v", skipped, result)
	}

	rs.mu.Lock()
	rs.inProcess = false
	rs.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs.RunOnce()
		}()
	}
	wg.Wait()

	if rs.IsInProgress() {
		t.Error("После завершения IsInProgress должен вернуть false")
	}
}
