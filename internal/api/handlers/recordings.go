// recordings.go — HTTP handlers записей: загрузка, список, скачивание, удаление.
package handlers

import (
	"net/http"

	"github.com/bigkaa/survey-recorder/internal/api/errors"
	"github.com/bigkaa/survey-recorder/internal/api/generated"
	"github.com/bigkaa/survey-recorder/internal/api/middleware"
	"github.com/bigkaa/survey-recorder/internal/service"
)

// RecordingsHandler — обработчик endpoints /api/recordings.
type RecordingsHandler struct {
	uploadSvc    *service.UploadService
	recordingSvc *service.RecordingService
}

// NewRecordingsHandler создаёт обработчик записей.
func NewRecordingsHandler(uploadSvc *service.UploadService, recordingSvc *service.RecordingService) *RecordingsHandler {
	return &RecordingsHandler{
		uploadSvc:    uploadSvc,
		recordingSvc: recordingSvc,
	}
}

// UploadRecording обрабатывает POST /api/recordings.
// Multipart-форма уже проверена middleware.ValidateUpload, сюда приходит
// только ValidatedUpload из контекста.
func (h *RecordingsHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	upload, ok := middleware.UploadFromContext(r.Context())
	if !ok {
		errors.NoFile(w, "No audio file provided")
		return
	}

	result, uploadErr := h.uploadSvc.Upload(service.UploadParams{
		Reader:    upload.File,
		Metadata:  upload.Metadata,
		ClientIP:  upload.ClientIP,
		UserAgent: upload.UserAgent,
	})
	if uploadErr != nil {
		errors.WriteError(w, uploadErr.StatusCode, uploadErr.Code, uploadErr.Message)
		return
	}

	writeJSON(w, http.StatusCreated, generated.UploadResponse{
		RecordingId: result.RecordingID,
		Filename:    result.Filename,
		DownloadUrl: result.DownloadURL,
	})
}

// ListRecordings обрабатывает GET /api/recordings.
// Фильтры: item (подстрока без учёта регистра), date (YYYY-MM-DD).
func (h *RecordingsHandler) ListRecordings(w http.ResponseWriter, _ *http.Request, params generated.ListRecordingsParams) {
	var filter service.ListFilter
	if params.Item != nil {
		filter.Item = *params.Item
	}
	if params.Date != nil {
		filter.Date = *params.Date
	}

	items, listErr := h.recordingSvc.List(filter)
	if listErr != nil {
		errors.WriteError(w, listErr.StatusCode, listErr.Code, listErr.Message)
		return
	}

	resp := make([]generated.Recording, 0, len(items))
	for _, rec := range items {
		resp = append(resp, generated.Recording{
			Filename:  rec.Filename,
			Size:      rec.Size,
			CreatedAt: rec.CreatedAt,
			ItemName:  rec.ItemName,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// DownloadRecording обрабатывает GET /api/recordings/{filename}.
// Range и If-Modified-Since обслуживает http.ServeContent.
func (h *RecordingsHandler) DownloadRecording(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	if serveErr := h.recordingSvc.Serve(w, r, filename); serveErr != nil {
		errors.WriteError(w, serveErr.StatusCode, serveErr.Code, serveErr.Message)
	}
}

// DeleteRecording обрабатывает DELETE /api/recordings/{filename}.
func (h *RecordingsHandler) DeleteRecording(w http.ResponseWriter, _ *http.Request, filename generated.Filename) {
	if delErr := h.recordingSvc.Delete(filename); delErr != nil {
		errors.WriteError(w, delErr.StatusCode, delErr.Code, delErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, generated.DeleteResponse{
		Message:  "Recording deleted successfully",
		Filename: filename,
	})
}
