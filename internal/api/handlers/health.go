// health.go — обработчик GET /api/health.
// Клиент опрашивает его для индикатора "API online/offline".
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/survey-recorder/internal/api/errors"
	"github.com/bigkaa/survey-recorder/internal/api/generated"
	"github.com/bigkaa/survey-recorder/internal/config"
)

// RecordingCounter — источник количества записей в хранилище.
type RecordingCounter interface {
	Count() (int, error)
}

// HealthHandler реализует health endpoint.
type HealthHandler struct {
	version   string
	startedAt time.Time
	counter   RecordingCounter
	now       func() time.Time
	logger    *slog.Logger
}

// NewHealthHandler создаёт обработчик health endpoint.
// Uptime отсчитывается от момента создания.
func NewHealthHandler(counter RecordingCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		version:   config.Version,
		startedAt: time.Now(),
		counter:   counter,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "health")),
	}
}

// GetHealth возвращает статус процесса и текущее количество записей.
// Количество считается сканированием директории на каждый запрос.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, _ *http.Request) {
	count, err := h.counter.Count()
	if err != nil {
		h.logger.Error("Ошибка подсчёта записей",
			slog.String("error", err.Error()),
		)
		errors.InternalError(w, "Failed to read recordings directory")
		return
	}

	now := h.now()
	writeJSON(w, http.StatusOK, generated.HealthResponse{
		Status:          generated.Ok,
		Uptime:          now.Sub(h.startedAt).Seconds(),
		RecordingsCount: count,
		Version:         h.version,
		Timestamp:       now.UTC(),
	})
}
