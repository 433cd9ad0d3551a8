package handler

import (
	"log/slog"
	"net/http"

	"github.com/rsawyer/homewarden/internal/clock"
	"github.com/rsawyer/homewarden/internal/report"
	"github.com/rsawyer/homewarden/internal/store"
)

type DashboardHandler struct {
	maintenanceStore *store.MaintenanceStore
	taskStore        *store.TaskStore
	clk              clock.Clock
	logger           *slog.Logger
}

func NewDashboardHandler(ms *store.MaintenanceStore, ts *store.TaskStore, clk clock.Clock, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{maintenanceStore: ms, taskStore: ts, clk: clk, logger: logger}
}

// Summary returns the headline counts for both collections in one response,
// which is what the dashboard's stat cards render from.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	items, err := h.maintenanceStore.ListActive()
	if err != nil {
		h.logger.Error("dashboard maintenance list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	tasks, err := h.taskStore.ListActive()
	if err != nil {
		h.logger.Error("dashboard task list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	today := clock.Today(h.clk)
	writeJSON(w, http.StatusOK, map[string]any{
		"maintenance": report.SummarizeMaintenance(items, today),
		"tasks":       report.SummarizeTasks(tasks, today),
	})
}

// Charts returns the per-bucket counts behind the dashboard pie charts. Empty
// collections come back as a single "No Data" bucket, never an empty map.
func (h *DashboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	items, err := h.maintenanceStore.ListActive()
	if err != nil {
		h.logger.Error("dashboard maintenance list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build charts")
		return
	}
	tasks, err := h.taskStore.ListActive()
	if err != nil {
		h.logger.Error("dashboard task list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build charts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"maintenance_by_category": report.CountBy(report.MaintenanceCategories(items)),
		"maintenance_by_priority": report.CountBy(report.MaintenancePriorities(items)),
		"tasks_by_category":       report.CountBy(report.TaskCategories(tasks)),
		"tasks_by_status":         report.CountBy(report.TaskStatuses(tasks)),
	})
}
