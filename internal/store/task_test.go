package store

import (
	"testing"
	"time"

	"github.com/rsawyer/homewarden/internal/database"
	"github.com/rsawyer/homewarden/internal/model"
)

func setupTaskTestDB(t *testing.T) *TaskStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTaskStore(db)
}

func TestTaskCRUD(t *testing.T) {
	ts := setupTaskTestDB(t)

	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	task, err := ts.Create(model.Task{
		Title:      "Mow the lawn",
		Category:   model.CategoryGardening,
		Priority:   model.PriorityLow,
		AssignedTo: "alex",
		CreatedBy:  "sam",
		DueDate:    &due,
		Location:   "Backyard",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != model.StatusPending {
		t.Errorf("status = %q, want pending on creation", task.Status)
	}
	if task.Category != model.CategoryGardening {
		t.Errorf("category = %q", task.Category)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v", task.DueDate, due)
	}
	if task.StartDate != nil || task.CompletedDate != nil {
		t.Error("new tasks have no start or completion dates")
	}

	task.Priority = model.PriorityHigh
	updated, err := ts.Update(*task)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Priority != model.PriorityHigh {
		t.Errorf("priority = %q, want high", updated.Priority)
	}
}

func TestTaskUnknownCategoryFoldsToOther(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Create(model.Task{Title: "Odd one", Category: "misc", Priority: model.PriorityMedium})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Category != model.CategoryOther {
		t.Errorf("category = %q, want other", task.Category)
	}
}

func TestTaskSaveLifecycle(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Create(model.Task{Title: "Clean gutters", Category: model.CategoryMaintenance, Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	start := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	completed := time.Date(2024, 4, 2, 16, 30, 0, 0, time.UTC)
	task.Status = model.StatusCompleted
	task.StartDate = &start
	task.CompletedDate = &completed
	task.Notes = "Completed by: alex"

	saved, err := ts.SaveLifecycle(*task)
	if err != nil {
		t.Fatalf("save lifecycle: %v", err)
	}
	if saved.Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", saved.Status)
	}
	if saved.CompletedDate == nil || !saved.CompletedDate.Equal(completed) {
		t.Errorf("completed date = %v, want %v", saved.CompletedDate, completed)
	}
	if saved.Notes != "Completed by: alex" {
		t.Errorf("notes = %q", saved.Notes)
	}
}

func TestTaskDeactivateAndListByAssignee(t *testing.T) {
	ts := setupTaskTestDB(t)

	a, err := ts.Create(model.Task{Title: "A", Category: model.CategoryCleaning, Priority: model.PriorityMedium, AssignedTo: "alex"})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := ts.Create(model.Task{Title: "B", Category: model.CategoryCleaning, Priority: model.PriorityMedium, AssignedTo: "sam"}); err != nil {
		t.Fatalf("create b: %v", err)
	}

	mine, err := ts.ListByAssignee("alex")
	if err != nil {
		t.Fatalf("list by assignee: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "A" {
		t.Errorf("mine = %v", mine)
	}

	if err := ts.Deactivate(a.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	all, err := ts.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(all) != 1 || all[0].Title != "B" {
		t.Errorf("active = %v", all)
	}
}
