package handlers

import (
	"net/http"

	"github.com/bigkaa/survey-recorder/internal/api/errors"
	"github.com/bigkaa/survey-recorder/internal/api/generated"
	"github.com/bigkaa/survey-recorder/internal/service"
)

// LogsHandler — обработчик GET /api/logs.
type LogsHandler struct {
	logSvc *service.LogService
}

// NewLogsHandler создаёт обработчик журнала.
func NewLogsHandler(logSvc *service.LogService) *LogsHandler {
	return &LogsHandler{logSvc: logSvc}
}

// ListLogs возвращает строки журнала за день в порядке добавления.
// Без параметра date — текущий день; дня нет — пустой массив.
func (h *LogsHandler) ListLogs(w http.ResponseWriter, _ *http.Request, params generated.ListLogsParams) {
	var date string
	if params.Date != nil {
		date = *params.Date
	}

	entries, logErr := h.logSvc.ByDate(date)
	if logErr != nil {
		errors.WriteError(w, logErr.StatusCode, logErr.Code, logErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
