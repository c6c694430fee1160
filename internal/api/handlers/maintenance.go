// maintenance.go — обработчик POST /api/maintenance/reconcile.
// Делегирует сверку в ReconcileService.
package handlers

import (
	"net/http"

	"github.com/bigkaa/survey-recorder/internal/api/errors"
	"github.com/bigkaa/survey-recorder/internal/api/generated"
)

// ReconcileRunner — интерфейс для запуска reconciliation.
// Позволяет тестировать handler без полного ReconcileService.
type ReconcileRunner interface {
	// RunOnce выполняет один цикл reconciliation.
	// Возвращает результат и флаг "уже выполняется".
	RunOnce() (*generated.ReconcileResponse, bool)
	// IsInProgress возвращает true, если reconciliation выполняется.
	IsInProgress() bool
}

// MaintenanceHandler — обработчик endpoints обслуживания.
type MaintenanceHandler struct {
	reconciler ReconcileRunner
}

// NewMaintenanceHandler создаёт обработчик maintenance endpoints.
func NewMaintenanceHandler(reconciler ReconcileRunner) *MaintenanceHandler {
	return &MaintenanceHandler{reconciler: reconciler}
}

// Reconcile запускает синхронный цикл сверки и возвращает отчёт.
// Если сверка уже выполняется — 409 RECONCILE_IN_PROGRESS.
func (h *MaintenanceHandler) Reconcile(w http.ResponseWriter, _ *http.Request) {
	result, inProgress := h.reconciler.RunOnce()
	if inProgress {
		errors.ReconcileInProgress(w, "Reconciliation is already in progress")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
