package task

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rsawyer/homewarden/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func newTask(status model.Status) model.Task {
	return model.Task{
		Title:    "Vacuum stairs",
		Status:   status,
		Priority: model.PriorityMedium,
		Category: model.CategoryCleaning,
	}
}

func TestStartProgressSetsStartDateOnce(t *testing.T) {
	tk := newTask(model.StatusPending)
	now := time.Date(2024, 3, 10, 9, 15, 0, 0, time.UTC)

	if err := StartProgress(&tk, now); err != nil {
		t.Fatalf("StartProgress: %v", err)
	}
	if tk.Status != model.StatusInProgress {
		t.Errorf("status = %q, want in_progress", tk.Status)
	}
	if tk.StartDate == nil || !tk.StartDate.Equal(date(2024, 3, 10)) {
		t.Errorf("start date = %v, want 2024-03-10", tk.StartDate)
	}

	// Second call is a no-op and must not move the start date.
	later := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	if err := StartProgress(&tk, later); err != nil {
		t.Fatalf("repeat StartProgress: %v", err)
	}
	if !tk.StartDate.Equal(date(2024, 3, 10)) {
		t.Errorf("start date moved to %v, want 2024-03-10", tk.StartDate)
	}
}

func TestStartProgressRejectsTerminal(t *testing.T) {
	for _, status := range []model.Status{model.StatusCompleted, model.StatusCancelled} {
		tk := newTask(status)
		if err := StartProgress(&tk, date(2024, 3, 10)); !errors.Is(err, ErrTerminal) {
			t.Errorf("status %q: err = %v, want ErrTerminal", status, err)
		}
		if tk.StartDate != nil {
			t.Errorf("status %q: rejected command must not mutate", status)
		}
	}
}

func TestComplete(t *testing.T) {
	tk := newTask(model.StatusInProgress)
	tk.Notes = "Check under the sofa"
	now := time.Date(2024, 3, 12, 18, 45, 0, 0, time.UTC)

	if err := Complete(&tk, "Sam", now); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if tk.Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", tk.Status)
	}
	if tk.CompletedDate == nil || !tk.CompletedDate.Equal(now) {
		t.Errorf("completed date = %v, want %v", tk.CompletedDate, now)
	}
	if !strings.Contains(tk.Notes, "Completed by: Sam") {
		t.Errorf("notes = %q, want attribution appended", tk.Notes)
	}
	if !strings.HasPrefix(tk.Notes, "Check under the sofa") {
		t.Errorf("notes = %q, existing content must be preserved", tk.Notes)
	}
}

func TestCompleteWithoutAttribution(t *testing.T) {
	tk := newTask(model.StatusPending)
	if err := Complete(&tk, "", date(2024, 3, 12)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if tk.Notes != "" {
		t.Errorf("notes = %q, want empty", tk.Notes)
	}
}

func TestCompleteRejectsInvalidFields(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*model.Task)
	}{
		{"bad priority", func(tk *model.Task) { tk.Priority = "critical" }},
		{"bad category", func(tk *model.Task) { tk.Category = "chores" }},
		{"bad status", func(tk *model.Task) { tk.Status = "done" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := newTask(model.StatusPending)
			tc.mut(&tk)
			if err := Complete(&tk, "Sam", date(2024, 3, 12)); !errors.Is(err, ErrInvalidField) {
				t.Fatalf("err = %v, want ErrInvalidField", err)
			}
			if tk.CompletedDate != nil {
				t.Error("rejected command must not mutate the task")
			}
		})
	}
}

func TestCancel(t *testing.T) {
	tk := newTask(model.StatusPending)
	if err := Cancel(&tk); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if tk.Status != model.StatusCancelled {
		t.Errorf("status = %q, want cancelled", tk.Status)
	}
	if err := Cancel(&tk); err != nil {
		t.Fatalf("repeat Cancel: %v", err)
	}

	done := newTask(model.StatusCompleted)
	if err := Cancel(&done); !errors.Is(err, ErrTerminal) {
		t.Errorf("err = %v, want ErrTerminal", err)
	}
}

func TestIsOverdue(t *testing.T) {
	today := date(2024, 3, 10)

	tk := newTask(model.StatusPending)
	tk.DueDate = datePtr(2024, 3, 9)
	if !IsOverdue(tk, today) {
		t.Error("pending task due yesterday should be overdue")
	}

	// Due today is not overdue.
	tk.DueDate = datePtr(2024, 3, 10)
	if IsOverdue(tk, today) {
		t.Error("task due today should not be overdue")
	}

	// Terminal short-circuit: completing clears overdue without touching
	// the due date.
	tk.DueDate = datePtr(2024, 3, 9)
	if err := Complete(&tk, "", today); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if IsOverdue(tk, today) {
		t.Error("completed task must never be overdue")
	}

	cancelled := newTask(model.StatusCancelled)
	cancelled.DueDate = datePtr(2024, 3, 1)
	if IsOverdue(cancelled, today) {
		t.Error("cancelled task must never be overdue")
	}

	if IsOverdue(newTask(model.StatusPending), today) {
		t.Error("task with no due date is never overdue")
	}
}

func TestDaysUntilDue(t *testing.T) {
	today := date(2024, 3, 10)

	tk := newTask(model.StatusPending)
	if _, ok := DaysUntilDue(tk, today); ok {
		t.Error("no due date should report absent")
	}

	tk.DueDate = datePtr(2024, 3, 13)
	if days, ok := DaysUntilDue(tk, today); !ok || days != 3 {
		t.Errorf("got (%d, %v), want (3, true)", days, ok)
	}
}

func TestSortOrdering(t *testing.T) {
	today := date(2024, 3, 10)
	in3 := datePtr(2024, 3, 13)

	tasks := []model.Task{
		{Title: "low due in 3", Priority: model.PriorityLow, DueDate: in3},
		{Title: "urgent due in 3", Priority: model.PriorityUrgent, DueDate: in3},
		{Title: "medium no due", Priority: model.PriorityMedium},
		{Title: "medium due later", Priority: model.PriorityMedium, DueDate: datePtr(2024, 4, 1)},
		{Title: "medium due sooner", Priority: model.PriorityMedium, DueDate: datePtr(2024, 3, 11)},
	}
	Sort(tasks, today)

	wantOrder := []string{
		"urgent due in 3",
		"medium due sooner",
		"medium due later",
		"medium no due",
		"low due in 3",
	}
	for i, want := range wantOrder {
		if tasks[i].Title != want {
			t.Errorf("tasks[%d] = %q, want %q", i, tasks[i].Title, want)
		}
	}
}
