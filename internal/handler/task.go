package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rsawyer/homewarden/internal/auth"
	"github.com/rsawyer/homewarden/internal/clock"
	"github.com/rsawyer/homewarden/internal/model"
	"github.com/rsawyer/homewarden/internal/store"
	"github.com/rsawyer/homewarden/internal/task"
	"github.com/rsawyer/homewarden/internal/websocket"
)

type TaskHandler struct {
	store  *store.TaskStore
	hub    *websocket.Hub
	clk    clock.Clock
	logger *slog.Logger
}

func NewTaskHandler(s *store.TaskStore, hub *websocket.Hub, clk clock.Clock, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{store: s, hub: hub, clk: clk, logger: logger}
}

func (h *TaskHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

// taskView decorates a task with overdue state for list/detail responses.
type taskView struct {
	model.Task
	Overdue      bool `json:"overdue"`
	DaysUntilDue *int `json:"days_until_due,omitempty"`
}

func (h *TaskHandler) view(t model.Task) taskView {
	today := clock.Today(h.clk)
	v := taskView{
		Task:    t,
		Overdue: task.IsOverdue(t, today),
	}
	if days, ok := task.DaysUntilDue(t, today); ok {
		v.DaysUntilDue = &days
	}
	return v
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to"`
	DueDate     string `json:"due_date"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

func (req *taskRequest) apply(t *model.Task) string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}

	priority := model.PriorityMedium
	if req.Priority != "" {
		p, ok := model.ParsePriority(req.Priority)
		if !ok {
			return "unknown priority"
		}
		priority = p
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return "due_date must be YYYY-MM-DD"
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Category = model.ParseTaskCategory(req.Category)
	t.Priority = priority
	t.AssignedTo = req.AssignedTo
	t.DueDate = dueDate
	t.Location = req.Location
	t.Notes = req.Notes
	return ""
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var t model.Task
	if msg := req.apply(&t); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	t.CreatedBy = auth.Username(r.Context())

	created, err := h.store.Create(t)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.broadcast(websocket.NewEvent("task", "created", created.ID, nil))

	writeJSON(w, http.StatusCreated, h.view(*created))
}

// List returns active tasks sorted by priority and urgency. An optional
// ?assignee= filter narrows to one person's tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var tasks []model.Task
	var err error
	if assignee := r.URL.Query().Get("assignee"); assignee != "" {
		tasks, err = h.store.ListByAssignee(assignee)
	} else {
		tasks, err = h.store.ListActive()
	}
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	today := clock.Today(h.clk)
	task.Sort(tasks, today)

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, h.view(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.view(*t))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.apply(t); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.store.Update(*t)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.broadcast(websocket.NewEvent("task", "updated", t.ID, nil))

	writeJSON(w, http.StatusOK, h.view(*updated))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := h.store.Deactivate(t.ID); err != nil {
		h.logger.Error("deactivate task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.broadcast(websocket.NewEvent("task", "deleted", t.ID, nil))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := task.StartProgress(t, h.clk.Now()); err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	saved, err := h.store.SaveLifecycle(*t)
	if err != nil {
		h.logger.Error("save task start", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start task")
		return
	}

	h.broadcast(websocket.NewEvent("task", "started", t.ID, nil))

	writeJSON(w, http.StatusOK, h.view(*saved))
}

// Complete marks the task done, attributing the completion to the logged-in
// user in the task notes.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := task.Complete(t, auth.Username(r.Context()), h.clk.Now()); err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	saved, err := h.store.SaveLifecycle(*t)
	if err != nil {
		h.logger.Error("save task completion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}

	h.broadcast(websocket.NewEvent("task", "completed", t.ID, nil))

	writeJSON(w, http.StatusOK, h.view(*saved))
}

func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := task.Cancel(t); err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	saved, err := h.store.SaveLifecycle(*t)
	if err != nil {
		h.logger.Error("save task cancel", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel task")
		return
	}

	h.broadcast(websocket.NewEvent("task", "cancelled", t.ID, nil))

	writeJSON(w, http.StatusOK, h.view(*saved))
}

func (h *TaskHandler) load(w http.ResponseWriter, r *http.Request) (*model.Task, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	t, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return nil, false
	}
	if t == nil || !t.IsActive {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	return t, true
}

func (h *TaskHandler) writeLifecycleError(w http.ResponseWriter, err error) {
	if errors.Is(err, task.ErrTerminal) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
