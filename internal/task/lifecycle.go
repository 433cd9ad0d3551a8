package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rsawyer/homewarden/internal/clock"
	"github.com/rsawyer/homewarden/internal/model"
	"github.com/rsawyer/homewarden/internal/schedule"
)

var (
	// ErrTerminal is returned by commands invoked on a completed or
	// cancelled task.
	ErrTerminal = errors.New("task is in a terminal status")
	// ErrInvalidField is returned when a task carries a status, priority,
	// or category value outside the closed sets. The command performs no
	// mutation.
	ErrInvalidField = errors.New("task has an unsupported field value")
)

// validate rejects tasks whose enumerated fields fall outside the closed
// sets, so malformed persisted values never flow through a command.
func validate(t model.Task) error {
	if !t.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidField, t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: priority %q", ErrInvalidField, t.Priority)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidField, t.Category)
	}
	return nil
}

// StartProgress moves a pending task to in_progress and stamps the start
// date the first time. Repeat calls while in progress are no-ops; the start
// date is never cleared or overwritten.
func StartProgress(t *model.Task, now time.Time) error {
	if err := validate(*t); err != nil {
		return err
	}
	if t.Status.Terminal() {
		return ErrTerminal
	}
	if t.Status == model.StatusInProgress {
		return nil
	}
	t.Status = model.StatusInProgress
	if t.StartDate == nil {
		today := clock.StartOfDay(now)
		t.StartDate = &today
	}
	return nil
}

// Complete marks the task done at now. When completedBy is non-empty an
// attribution line is appended to the free-text notes, matching how the
// household records who actually did the work.
func Complete(t *model.Task, completedBy string, now time.Time) error {
	if err := validate(*t); err != nil {
		return err
	}
	if t.Status == model.StatusCancelled {
		return ErrTerminal
	}
	t.Status = model.StatusCompleted
	completed := now
	t.CompletedDate = &completed
	if completedBy != "" {
		t.Notes = strings.TrimSpace(t.Notes + "\nCompleted by: " + completedBy)
	}
	return nil
}

// Cancel terminates a pending or in-progress task. Cancelling twice is a
// no-op; completed tasks stay completed.
func Cancel(t *model.Task) error {
	if err := validate(*t); err != nil {
		return err
	}
	switch t.Status {
	case model.StatusCancelled:
		return nil
	case model.StatusCompleted:
		return ErrTerminal
	}
	t.Status = model.StatusCancelled
	return nil
}

// IsOverdue reports whether the task's due date has passed. Completed and
// cancelled tasks are never overdue, regardless of their due date.
func IsOverdue(t model.Task, today time.Time) bool {
	if t.DueDate == nil || t.Status.Terminal() {
		return false
	}
	return schedule.DaysBetween(today, *t.DueDate) < 0
}

// DaysUntilDue returns the whole days from today to the due date, with the
// second result false when the task has no deadline. Sorting puts deadline-
// less tasks last; see Sort.
func DaysUntilDue(t model.Task, today time.Time) (int, bool) {
	if t.DueDate == nil {
		return 0, false
	}
	return schedule.DaysBetween(today, *t.DueDate), true
}

// Sort orders tasks for list display: priority descending (urgent first),
// then days until due ascending with absent due dates sorted last, then
// title. A task with no deadline never outranks one with any concrete due
// date at the same priority.
func Sort(tasks []model.Task, today time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if ri, rj := tasks[i].Priority.Rank(), tasks[j].Priority.Rank(); ri != rj {
			return ri > rj
		}
		di, iOK := DaysUntilDue(tasks[i], today)
		dj, jOK := DaysUntilDue(tasks[j], today)
		if iOK != jOK {
			return iOK
		}
		if iOK && di != dj {
			return di < dj
		}
		return tasks[i].Title < tasks[j].Title
	})
}
