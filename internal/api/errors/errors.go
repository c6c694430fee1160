// Пакет errors — конструкторы ошибок API.
// Единый формат: {"error": "CODE", "message": "..."}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // конфликт имени со stdlib, пакет импортируется как apierrors

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeNoFile                = "NO_FILE"
	CodeInvalidFileType       = "INVALID_FILE_TYPE"
	CodeFileTooLarge          = "FILE_TOO_LARGE"
	CodeInvalidMetadata       = "INVALID_METADATA"
	CodeMissingRequiredFields = "MISSING_REQUIRED_FIELDS"
	CodeRecordingTooLong      = "RECORDING_TOO_LONG"
	CodeInvalidFilename       = "INVALID_FILENAME"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeRateLimited           = "RATE_LIMITED"
	CodeReconcileInProgress   = "RECONCILE_IN_PROGRESS"
	CodeInternalError         = "INTERNAL_ERROR"
)

// Body — тело ответа ошибки.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание для клиента.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Body{Error: code, Message: message})
}

// --- Конструкторы для типичных ошибок ---

// NoFile — 400 файл записи отсутствует в запросе.
func NoFile(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeNoFile, message)
}

// InvalidFileType — 415 недопустимый тип файла.
func InvalidFileType(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnsupportedMediaType, CodeInvalidFileType, message)
}

// FileTooLarge — 413 файл превышает лимит.
func FileTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, CodeFileTooLarge, message)
}

// InvalidMetadata — 400 метаданные не являются JSON-объектом.
func InvalidMetadata(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeInvalidMetadata, message)
}

// MissingRequiredFields — 400 нет обязательных полей метаданных.
func MissingRequiredFields(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeMissingRequiredFields, message)
}

// RecordingTooLong — 400 длительность превышает лимит.
func RecordingTooLong(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeRecordingTooLong, message)
}

// InvalidFilename — 400 небезопасное имя файла.
func InvalidFilename(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeInvalidFilename, message)
}

// ValidationError — 400 некорректные параметры запроса.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// RateLimited — 429 превышен лимит запросов.
func RateLimited(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, CodeRateLimited, message)
}

// ReconcileInProgress — 409 сверка уже выполняется.
func ReconcileInProgress(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeReconcileInProgress, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
