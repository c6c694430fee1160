// Пакет filename — генерация имён файлов записей и проверка
// безопасности имён, приходящих от клиента.
//
// Формат имени: survey_{item}_{timestamp}_{short}.webm
// Пример: survey_masala_dosa_2026-10-16T09-15-02-417Z_3f9a1c2b.webm
package filename

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/bigkaa/survey-recorder/internal/domain/model"
)

const (
	// Prefix — префикс всех имён записей.
	Prefix = "survey_"
	// Separator — разделитель частей имени.
	Separator = "_"
	// MaxItemLen — максимальная длина части с названием позиции.
	MaxItemLen = 50
	// UnknownItem подставляется вместо пустого названия.
	UnknownItem = "unknown"
	// shortIDLen — длина случайного суффикса (hex-символы UUID).
	shortIDLen = 8
	// timestampLayout — ISO-8601 с миллисекундами, как у клиента.
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// ErrInvalid — имя файла небезопасно для использования как сегмент пути.
var ErrInvalid = errors.New("недопустимое имя файла")

// Generate формирует имя файла записи из названия позиции и текущего времени.
// Ошибок не бывает: для любой строки возвращается безопасное имя.
func Generate(itemName string, now time.Time) string {
	ts := now.UTC().Format(timestampLayout)
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)

	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:shortIDLen]

	return Prefix + SanitizeItemName(itemName) + Separator + ts + Separator + short + model.AudioExtension
}

// SanitizeItemName приводит название к виду [a-z0-9_]: нижний регистр,
// спецсимволы удаляются, пробелы схлопываются в один "_", длина ≤ MaxItemLen.
func SanitizeItemName(itemName string) string {
	var b strings.Builder
	pendingSep := false

	for _, r := range strings.ToLower(strings.TrimSpace(itemName)) {
		switch {
		case unicode.IsSpace(r):
			pendingSep = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteString(Separator)
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}

	safe := b.String()
	if len(safe) > MaxItemLen {
		safe = strings.TrimRight(safe[:MaxItemLen], Separator)
	}
	if safe == "" {
		return UnknownItem
	}
	return safe
}

// ItemNameFromFilename восстанавливает очищенное название позиции из имени файла.
// Последние две части (timestamp и суффикс) разделителя не содержат,
// поэтому всё между префиксом и ними — название.
// Для имён в чужом формате возвращает пустую строку.
func ItemNameFromFilename(name string) string {
	base := strings.TrimSuffix(name, model.AudioExtension)
	if !strings.HasPrefix(base, Prefix) || base == name {
		return ""
	}

	parts := strings.Split(strings.TrimPrefix(base, Prefix), Separator)
	if len(parts) < 3 {
		return ""
	}
	return strings.Join(parts[:len(parts)-2], Separator)
}

// Validate проверяет, что имя от клиента можно использовать как
// сегмент пути: без разделителей, ".." и управляющих символов.
// Небезопасное имя отклоняется целиком, без попыток очистки.
func Validate(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalid
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrInvalid
	}
	for _, r := range name {
		if r == 0 || unicode.IsControl(r) {
			return ErrInvalid
		}
	}
	if filepath.Base(name) != name {
		return ErrInvalid
	}
	return nil
}
