package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bigkaa/survey-recorder/internal/storage/filestore"
	"github.com/bigkaa/survey-recorder/internal/storage/index"
	"github.com/bigkaa/survey-recorder/internal/storage/ledger"
	"github.com/bigkaa/survey-recorder/internal/storage/wal"
)

// testEnv — хранилища сервиса во временной директории.
type testEnv struct {
	root   string
	store  *filestore.FileStore
	ledger *ledger.Ledger
	idx    *index.Index
	wal    *wal.WAL
	logger *slog.Logger
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupTestEnv создаёт тестовое окружение со всеми хранилищами.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	logger := testLogger()

	store, err := filestore.New(filepath.Join(root, "recordings"))
	if err != nil {
		t.Fatalf("Ошибка создания FileStore: %v", err)
	}
	ldg, err := ledger.New(filepath.Join(root, "logs"), ledger.DefaultLookbackDays, logger)
	if err != nil {
		t.Fatalf("Ошибка создания журнала: %v", err)
	}
	w, err := wal.New(filepath.Join(root, "wal"), logger)
	if err != nil {
		t.Fatalf("Ошибка создания WAL: %v", err)
	}

	return &testEnv{
		root:   root,
		store:  store,
		ledger: ldg,
		idx:    index.New(logger),
		wal:    w,
		logger: logger,
	}
}

// writeArtifact кладёт файл записи в хранилище напрямую, минуя сервис.
func (e *testEnv) writeArtifact(t *testing.T, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.store.DataDir(), name), data, 0o640); err != nil {
		t.Fatalf("Ошибка записи файла: %v", err)
	}
}

// artifactExists проверяет наличие файла записи на диске.
func (e *testEnv) artifactExists(t *testing.T, name string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(e.store.DataDir(), name))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("Ошибка stat %s: %v", name, err)
	}
	return err == nil
}

// pendingCount возвращает количество незавершённых транзакций.
func (e *testEnv) pendingCount(t *testing.T) int {
	t.Helper()
	pending, err := e.wal.Pending()
	if err != nil {
		t.Fatalf("Ошибка чтения WAL: %v", err)
	}
	return len(pending)
}
