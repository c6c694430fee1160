// handler.go — APIHandler реализует generated.ServerInterface,
// делегируя вызовы в отдельные handler'ы по доменам.
package handlers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/bigkaa/survey-recorder/internal/api/generated"
	"github.com/bigkaa/survey-recorder/internal/server"
)

// APIHandler — единая реализация ServerInterface, собирающая
// все доменные handlers в один объект.
type APIHandler struct {
	recordings  *RecordingsHandler
	logs        *LogsHandler
	maintenance *MaintenanceHandler
	health      *HealthHandler
	openapi     *OpenAPIHandler
	metrics     *server.MetricsHandler
}

// NewAPIHandler создаёт единый handler для всех endpoints.
func NewAPIHandler(
	recordings *RecordingsHandler,
	logs *LogsHandler,
	maintenance *MaintenanceHandler,
	health *HealthHandler,
	openapi *OpenAPIHandler,
	metrics *server.MetricsHandler,
) *APIHandler {
	return &APIHandler{
		recordings:  recordings,
		logs:        logs,
		maintenance: maintenance,
		health:      health,
		openapi:     openapi,
		metrics:     metrics,
	}
}

// --- Recordings ---

func (h *APIHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	h.recordings.UploadRecording(w, r)
}

func (h *APIHandler) ListRecordings(w http.ResponseWriter, r *http.Request, params generated.ListRecordingsParams) {
	h.recordings.ListRecordings(w, r, params)
}

func (h *APIHandler) DownloadRecording(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	h.recordings.DownloadRecording(w, r, filename)
}

func (h *APIHandler) DeleteRecording(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	h.recordings.DeleteRecording(w, r, filename)
}

// --- Logs ---

func (h *APIHandler) ListLogs(w http.ResponseWriter, r *http.Request, params generated.ListLogsParams) {
	h.logs.ListLogs(w, r, params)
}

// --- Maintenance ---

func (h *APIHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	h.maintenance.Reconcile(w, r)
}

// --- Health ---

func (h *APIHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.health.GetHealth(w, r)
}

// --- Contract ---

func (h *APIHandler) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	h.openapi.GetOpenAPISpec(w, r)
}

// --- Metrics ---

func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.GetMetrics(w, r)
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
