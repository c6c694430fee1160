// Пакет generated — типы, серверный интерфейс и chi-wrapper по контракту
// openapi.yaml. Структура повторяет вывод oapi-codegen (chi-server, models,
// embedded-spec), чтобы handlers работали с привычными ServerInterface,
// HandlerFromMux и *Params.
package generated

import (
	"time"
)

// Значения ReconcileIssueType.
const (
	InterruptedTransaction ReconcileIssueType = "interrupted_transaction"
	OrphanedArtifact       ReconcileIssueType = "orphaned_artifact"
	OrphanedEntry          ReconcileIssueType = "orphaned_entry"
)

// Значения HealthResponseStatus.
const (
	Ok HealthResponseStatus = "ok"
)

// DeleteResponse defines model for DeleteResponse.
type DeleteResponse struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// Error defines model for Error.
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	RecordingsCount int                  `json:"recordingsCount"`
	Status          HealthResponseStatus `json:"status"`
	Timestamp       time.Time            `json:"timestamp"`

	// Uptime Время работы процесса в секундах
	Uptime  float64 `json:"uptime"`
	Version string  `json:"version"`
}

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// LogEntry defines model for LogEntry.
type LogEntry struct {
	// AppVersion Значение клиента без приведения типа
	AppVersion *interface{} `json:"appVersion,omitempty"`

	// DeviceInfo Сведения об устройстве в свободной форме
	DeviceInfo *interface{} `json:"deviceInfo,omitempty"`
	DurationMs float64      `json:"durationMs"`
	FileSize   *int64       `json:"fileSize,omitempty"`
	Filename   string       `json:"filename"`
	Ip         *string      `json:"ip,omitempty"`
	ItemName   string       `json:"itemName"`

	// Locale Значение клиента без приведения типа
	Locale      *interface{} `json:"locale,omitempty"`
	RecordingId string       `json:"recordingId"`

	// SessionId Значение клиента без приведения типа
	SessionId *interface{} `json:"sessionId,omitempty"`
	Timestamp string       `json:"timestamp"`
	UserAgent *string      `json:"userAgent,omitempty"`
}

// ReconcileIssue defines model for ReconcileIssue.
type ReconcileIssue struct {
	Description string             `json:"description"`
	Filename    string             `json:"filename"`
	LedgerDate  *string            `json:"ledgerDate,omitempty"`
	Type        ReconcileIssueType `json:"type"`
}

// ReconcileIssueType defines model for ReconcileIssue.Type.
type ReconcileIssueType string

// ReconcileResponse defines model for ReconcileResponse.
type ReconcileResponse struct {
	ArtifactsChecked int              `json:"artifactsChecked"`
	CompletedAt      time.Time        `json:"completedAt"`
	EntriesChecked   int              `json:"entriesChecked"`
	Issues           []ReconcileIssue `json:"issues"`
	StartedAt        time.Time        `json:"startedAt"`
	Summary          ReconcileSummary `json:"summary"`
}

// ReconcileSummary defines model for ReconcileSummary.
type ReconcileSummary struct {
	InterruptedTransactions int `json:"interruptedTransactions"`
	Ok                      int `json:"ok"`
	OrphanedArtifacts       int `json:"orphanedArtifacts"`
	OrphanedEntries         int `json:"orphanedEntries"`
}

// Recording defines model for Recording.
type Recording struct {
	CreatedAt time.Time `json:"createdAt"`
	Filename  string    `json:"filename"`
	ItemName  string    `json:"itemName"`
	Size      int64     `json:"size"`
}

// UploadResponse defines model for UploadResponse.
type UploadResponse struct {
	DownloadUrl string `json:"downloadUrl"`
	Filename    string `json:"filename"`
	RecordingId string `json:"recordingId"`
}

// DateQuery defines model for DateQuery.
type DateQuery = string

// Filename defines model for Filename.
type Filename = string

// ListRecordingsParams defines parameters for ListRecordings.
type ListRecordingsParams struct {
	// Item Подстрока названия позиции (без учёта регистра)
	Item *string `form:"item,omitempty" json:"item,omitempty"`

	// Date Дата YYYY-MM-DD по часам сервера
	Date *DateQuery `form:"date,omitempty" json:"date,omitempty"`
}

// ListLogsParams defines parameters for ListLogs.
type ListLogsParams struct {
	// Date Дата YYYY-MM-DD по часам сервера
	Date *DateQuery `form:"date,omitempty" json:"date,omitempty"`
}
