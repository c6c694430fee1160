// Пакет filestore — хранилище аудиофайлов записей на диске.
// Обеспечивает запись только на создание (temp → fsync → rename),
// листинг, открытие для отдачи и удаление с защитой от path traversal.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bigkaa/survey-recorder/internal/domain/model"
	"github.com/bigkaa/survey-recorder/internal/storage/filename"
)

var (
	// ErrNotFound — файл записи отсутствует.
	ErrNotFound = errors.New("файл записи не найден")
	// ErrInvalidFilename — имя файла небезопасно (разделители пути, "..").
	ErrInvalidFilename = filename.ErrInvalid
	// ErrExists — файл с таким именем уже существует.
	ErrExists = errors.New("файл записи уже существует")
)

// FileStore — управление аудиофайлами в корневой директории.
type FileStore struct {
	// dataDir — корневая директория хранения (SR_RECORDINGS_DIR)
	dataDir string
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// Filename — имя файла в dataDir
	Filename string
	// FullPath — абсолютный путь файла на диске
	FullPath string
	// Size — размер записанных данных в байтах
	Size int64
}

// New создаёт FileStore. Директория создаётся рекурсивно, если её нет.
func New(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию записей %s: %w", dataDir, err)
	}

	return &FileStore{dataDir: dataDir}, nil
}

// Save записывает данные из reader в dataDir/name.
// Только создание: существующий файл не перезаписывается (ErrExists).
//
// Паттерн: temp файл → запись → fsync → link в целевое имя.
// При ошибке temp файл удаляется.
func (fs *FileStore) Save(reader io.Reader, name string) (*SaveResult, error) {
	if err := filename.Validate(name); err != nil {
		return nil, err
	}

	fullPath := filepath.Join(fs.dataDir, name)
	tmpPath := fullPath + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// os.Link, в отличие от Rename, не заменяет существующий файл
	if err := os.Link(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrExists)
		}
		return nil, fmt.Errorf("ошибка публикации файла: %w", err)
	}
	os.Remove(tmpPath)

	return &SaveResult{
		Filename: name,
		FullPath: fullPath,
		Size:     size,
	}, nil
}

// List возвращает все записи (*.webm) с размером и временем создания.
// ItemName не заполняется: его подставляет вызывающий код.
func (fs *FileStore) List() ([]model.Recording, error) {
	entries, err := os.ReadDir(fs.dataDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории записей: %w", err)
	}

	recordings := make([]model.Recording, 0, len(entries))
	for _, entry := range entries {
		if !isRecording(entry) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Файл удалён между ReadDir и Stat
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("ошибка stat %s: %w", entry.Name(), err)
		}

		recordings = append(recordings, model.Recording{
			Filename:  entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	return recordings, nil
}

// Count возвращает количество записей в хранилище.
func (fs *FileStore) Count() (int, error) {
	entries, err := os.ReadDir(fs.dataDir)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения директории записей: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if isRecording(entry) {
			count++
		}
	}
	return count, nil
}

// Open открывает файл записи для чтения. Вызывающий код обязан закрыть файл.
// Имя проверяется до обращения к файловой системе.
func (fs *FileStore) Open(name string) (*os.File, error) {
	if err := filename.Validate(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(fs.dataDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", name, err)
	}

	return f, nil
}

// Delete удаляет файл записи. Возвращает ErrNotFound, если файла не было.
func (fs *FileStore) Delete(name string) error {
	if err := filename.Validate(name); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(fs.dataDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("ошибка удаления файла %s: %w", name, err)
	}
	return nil
}

// DataDir возвращает путь к директории записей.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// isRecording отбирает обычные файлы с расширением записи.
func isRecording(entry os.DirEntry) bool {
	if !entry.Type().IsRegular() {
		return false
	}
	name := entry.Name()
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, model.AudioExtension)
}
