package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/survey-recorder/internal/api/errors"
	"github.com/bigkaa/survey-recorder/internal/api/generated"
)

// OpenAPIHandler отдаёт встроенный контракт API в JSON.
type OpenAPIHandler struct {
	logger *slog.Logger
}

// NewOpenAPIHandler создаёт обработчик /api/openapi.json.
func NewOpenAPIHandler(logger *slog.Logger) *OpenAPIHandler {
	return &OpenAPIHandler{logger: logger.With(slog.String("component", "openapi"))}
}

// GetOpenAPISpec обрабатывает GET /api/openapi.json.
func (h *OpenAPIHandler) GetOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	doc, err := generated.GetSwagger()
	if err != nil {
		h.logger.Error("Ошибка загрузки OpenAPI контракта",
			slog.String("error", err.Error()),
		)
		errors.InternalError(w, "Failed to load API contract")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
