package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rsawyer/homewarden/internal/auth"
	"github.com/rsawyer/homewarden/internal/clock"
	"github.com/rsawyer/homewarden/internal/maintenance"
	"github.com/rsawyer/homewarden/internal/model"
	"github.com/rsawyer/homewarden/internal/schedule"
	"github.com/rsawyer/homewarden/internal/store"
	"github.com/rsawyer/homewarden/internal/websocket"
)

type MaintenanceHandler struct {
	store  *store.MaintenanceStore
	hub    *websocket.Hub
	clk    clock.Clock
	logger *slog.Logger
}

func NewMaintenanceHandler(s *store.MaintenanceStore, hub *websocket.Hub, clk clock.Clock, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{store: s, hub: hub, clk: clk, logger: logger}
}

func (h *MaintenanceHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

// maintenanceView decorates an item with its computed schedule state for
// list/detail responses. DaysUntilDue is omitted when there is no schedule.
type maintenanceView struct {
	model.MaintenanceItem
	DueState       maintenance.DueState `json:"due_state"`
	DaysUntilDue   *int                 `json:"days_until_due,omitempty"`
	FrequencyLabel string               `json:"frequency_label"`
}

func (h *MaintenanceHandler) view(item model.MaintenanceItem) maintenanceView {
	today := clock.Today(h.clk)
	v := maintenanceView{
		MaintenanceItem: item,
		DueState:        maintenance.Classify(item, today),
		FrequencyLabel:  schedule.Label(item.FrequencyMonths, item.IsRecurring),
	}
	if days, ok := maintenance.DaysUntilDue(item, today); ok {
		v.DaysUntilDue = &days
	}
	return v
}

type maintenanceRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Location        string   `json:"location"`
	FrequencyMonths *int     `json:"frequency_months"`
	IsRecurring     bool     `json:"is_recurring"`
	NextDueDate     string   `json:"next_due_date"`
	Priority        string   `json:"priority"`
	EstimatedCost   *float64 `json:"estimated_cost"`
	Notes           string   `json:"notes"`
	Tags            string   `json:"tags"`
	AssignedTo      string   `json:"assigned_to"`
}

// apply validates the request and copies its fields onto item. The item is
// only written once everything has passed.
func (req *maintenanceRequest) apply(item *model.MaintenanceItem) string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}

	priority := model.PriorityMedium
	if req.Priority != "" {
		p, ok := model.ParsePriority(req.Priority)
		if !ok {
			return "unknown priority"
		}
		priority = p
	}

	if req.IsRecurring {
		if req.FrequencyMonths == nil || *req.FrequencyMonths < 1 {
			return "recurring items need a frequency of at least one month"
		}
	}
	if req.EstimatedCost != nil && *req.EstimatedCost < 0 {
		return "estimated cost must be non-negative"
	}

	nextDue, err := parseDate(req.NextDueDate)
	if err != nil {
		return "next_due_date must be YYYY-MM-DD"
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Category = req.Category
	item.Location = req.Location
	item.FrequencyMonths = req.FrequencyMonths
	item.IsRecurring = req.IsRecurring
	item.NextDueDate = nextDue
	item.Priority = priority
	item.EstimatedCost = req.EstimatedCost
	item.Notes = req.Notes
	item.Tags = req.Tags
	item.AssignedTo = req.AssignedTo
	return ""
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var item model.MaintenanceItem
	if msg := req.apply(&item); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	item.CreatedBy = auth.Username(r.Context())

	created, err := h.store.Create(item)
	if err != nil {
		h.logger.Error("create maintenance item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create maintenance item")
		return
	}

	h.broadcast(websocket.NewEvent("maintenance_item", "created", created.ID, nil))

	writeJSON(w, http.StatusCreated, h.view(*created))
}

// List returns active items decorated with due state, ordered by priority and
// urgency so the dashboard renders them without re-sorting.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListActive()
	if err != nil {
		h.logger.Error("list maintenance items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list maintenance items")
		return
	}

	today := clock.Today(h.clk)
	maintenance.Sort(items, today)

	views := make([]maintenanceView, 0, len(items))
	for _, item := range items {
		views = append(views, h.view(item))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.view(*item))
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.apply(item); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.store.Update(*item)
	if err != nil {
		h.logger.Error("update maintenance item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update maintenance item")
		return
	}

	h.broadcast(websocket.NewEvent("maintenance_item", "updated", item.ID, nil))

	writeJSON(w, http.StatusOK, h.view(*updated))
}

// Delete deactivates the item. Records stay; the item just stops appearing in
// lists and summaries.
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := h.store.Deactivate(item.ID); err != nil {
		h.logger.Error("deactivate maintenance item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete maintenance item")
		return
	}

	h.broadcast(websocket.NewEvent("maintenance_item", "deleted", item.ID, nil))

	w.WriteHeader(http.StatusNoContent)
}

func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	var req struct {
		CompletionDate string   `json:"completion_date"`
		ActualCost     *float64 `json:"actual_cost"`
		Notes          string   `json:"notes"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	completionDate, err := parseDate(req.CompletionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "completion_date must be YYYY-MM-DD")
		return
	}

	now := h.clk.Now()
	if err := maintenance.Complete(item, completionDate, req.ActualCost, now); err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	saved, err := h.store.SaveLifecycle(*item)
	if err != nil {
		h.logger.Error("save maintenance completion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete maintenance item")
		return
	}

	completedBy := auth.Username(r.Context())
	if _, err := h.store.AddRecord(item.ID, *item.LastCompletedDate, req.ActualCost, completedBy, req.Notes); err != nil {
		h.logger.Error("record maintenance completion", "error", err)
	}

	h.broadcast(websocket.NewEvent("maintenance_item", "completed", item.ID,
		map[string]any{"status": string(saved.Status)}))

	writeJSON(w, http.StatusOK, h.view(*saved))
}

func (h *MaintenanceHandler) Start(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := maintenance.StartProgress(item); err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	saved, err := h.store.SaveLifecycle(*item)
	if err != nil {
		h.logger.Error("save maintenance start", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start maintenance item")
		return
	}

	h.broadcast(websocket.NewEvent("maintenance_item", "started", item.ID, nil))

	writeJSON(w, http.StatusOK, h.view(*saved))
}

func (h *MaintenanceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := maintenance.Cancel(item); err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	saved, err := h.store.SaveLifecycle(*item)
	if err != nil {
		h.logger.Error("save maintenance cancel", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel maintenance item")
		return
	}

	h.broadcast(websocket.NewEvent("maintenance_item", "cancelled", item.ID, nil))

	writeJSON(w, http.StatusOK, h.view(*saved))
}

// Records returns the completion history of an item, newest first.
func (h *MaintenanceHandler) Records(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}

	records, err := h.store.ListRecords(item.ID)
	if err != nil {
		h.logger.Error("list maintenance records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []model.MaintenanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *MaintenanceHandler) load(w http.ResponseWriter, r *http.Request) (*model.MaintenanceItem, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	item, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get maintenance item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get maintenance item")
		return nil, false
	}
	if item == nil || !item.IsActive {
		writeError(w, http.StatusNotFound, "maintenance item not found")
		return nil, false
	}
	return item, true
}

func (h *MaintenanceHandler) writeLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, maintenance.ErrCancelled),
		errors.Is(err, maintenance.ErrCompleted),
		errors.Is(err, maintenance.ErrNoFrequency),
		errors.Is(err, maintenance.ErrNegativeCost):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
