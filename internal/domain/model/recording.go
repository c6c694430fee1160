// Пакет model — доменные модели сервиса записи опросов.
// LogEntry — формат записи дневного журнала на диске,
// Recording — представление аудиофайла в хранилище.
package model

import (
	"time"
)

// AudioExtension — расширение всех сохраняемых записей.
const AudioExtension = ".webm"

// AudioContentType — единственный принимаемый MIME-тип загрузки.
const AudioContentType = "audio/webm"

// Recording — аудиофайл в хранилище. Метаданные берутся из stat
// файловой системы, отдельно не хранятся.
type Recording struct {
	// Filename — имя файла, первичный ключ записи
	Filename string `json:"filename"`

	// Size — размер файла в байтах
	Size int64 `json:"size"`

	// CreatedAt — время создания (mtime, файлы не изменяются после записи)
	CreatedAt time.Time `json:"createdAt"`

	// ItemName — название позиции: из журнала, либо восстановленное из имени файла
	ItemName string `json:"itemName"`
}

// LogEntry — одна запись дневного журнала (recording_log_YYYY-MM-DD.json).
// Ссылается на аудиофайл по имени без гарантий целостности.
type LogEntry struct {
	// RecordingID — идентификатор загрузки (UUID v4), не зависит от имени файла
	RecordingID string `json:"recordingId"`

	// Filename — имя сохранённого файла
	Filename string `json:"filename"`

	// ItemName — название позиции в исходном виде
	ItemName string `json:"itemName"`

	// DurationMs — длительность записи, заявленная клиентом
	DurationMs float64 `json:"durationMs"`

	// Timestamp — время записи на клиенте (ISO-8601 строка)
	Timestamp string `json:"timestamp"`

	// Locale, SessionID, AppVersion — значения клиента без приведения типов:
	// в журнал попадает ровно то, что пришло в metadata (строка, число, null)
	Locale     any    `json:"locale"`
	SessionID  any    `json:"sessionId"`
	IP         string `json:"ip"`
	UserAgent  string `json:"userAgent"`
	AppVersion any    `json:"appVersion"`

	// FileSize — размер сохранённого файла в байтах
	FileSize int64 `json:"fileSize"`

	// DeviceInfo — произвольные сведения об устройстве клиента
	DeviceInfo any `json:"deviceInfo,omitempty"`
}

// UploadMetadata — метаданные, приходящие вместе с файлом в поле metadata.
// Теги validate проверяются gookit/validate: itemName, timestamp и
// durationMs обязательны и не могут быть пустыми (0 считается пустым),
// durationMs не может быть отрицательной. Необязательные поля свободной
// формы и принимаются любого JSON-типа.
type UploadMetadata struct {
	ItemName   string  `json:"itemName" validate:"required"`
	Timestamp  string  `json:"timestamp" validate:"required"`
	DurationMs float64 `json:"durationMs" validate:"required|min:0"`
	Locale     any     `json:"locale"`
	SessionID  any     `json:"sessionId"`
	AppVersion any     `json:"appVersion"`
	DeviceInfo any     `json:"deviceInfo"`
}
