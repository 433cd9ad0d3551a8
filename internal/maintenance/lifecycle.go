package maintenance

import (
	"errors"
	"sort"
	"time"

	"github.com/rsawyer/homewarden/internal/clock"
	"github.com/rsawyer/homewarden/internal/model"
	"github.com/rsawyer/homewarden/internal/schedule"
)

// DueState classifies where a maintenance item stands relative to its next
// due date. The ordering is a strict priority: overdue beats due-soon beats
// upcoming.
type DueState string

const (
	DueOverdue    DueState = "overdue"
	DueSoon       DueState = "due_soon"
	DueUpcoming   DueState = "upcoming"
	DueNoSchedule DueState = "no_schedule"
)

var (
	// ErrCancelled is returned by commands invoked on a cancelled item.
	ErrCancelled = errors.New("maintenance item is cancelled")
	// ErrCompleted is returned by commands that make no sense on a
	// completed one-time item.
	ErrCompleted = errors.New("maintenance item is completed")
	// ErrNoFrequency is returned when a recurring item has no frequency to
	// roll the schedule forward with.
	ErrNoFrequency = errors.New("recurring item has no frequency")
	// ErrNegativeCost rejects negative actual costs.
	ErrNegativeCost = errors.New("actual cost must be non-negative")
)

// Classify returns the due state of an item as of today. Items with no next
// due date have no schedule to be late against.
func Classify(item model.MaintenanceItem, today time.Time) DueState {
	if item.NextDueDate == nil {
		return DueNoSchedule
	}
	days := schedule.DaysBetween(today, *item.NextDueDate)
	switch {
	case days < 0:
		return DueOverdue
	case days <= schedule.DueSoonWindowDays:
		return DueSoon
	default:
		return DueUpcoming
	}
}

// IsOverdue reports whether the item's next due date has passed.
func IsOverdue(item model.MaintenanceItem, today time.Time) bool {
	return Classify(item, today) == DueOverdue
}

// DaysUntilDue returns the whole days from today to the next due date. The
// second result is false when the item has no schedule; callers sort such
// items last rather than comparing against a sentinel.
func DaysUntilDue(item model.MaintenanceItem, today time.Time) (int, bool) {
	if item.NextDueDate == nil {
		return 0, false
	}
	return schedule.DaysBetween(today, *item.NextDueDate), true
}

// Complete marks the item done as of completionDate (or today when nil) and
// records actualCost if supplied. A recurring item rolls its schedule
// forward from the just-set completion date and cycles back to pending; a
// one-time item becomes terminally completed with its historical next-due
// date left untouched. On any error no field is mutated.
func Complete(item *model.MaintenanceItem, completionDate *time.Time, actualCost *float64, now time.Time) error {
	if item.Status == model.StatusCancelled {
		return ErrCancelled
	}
	if actualCost != nil && *actualCost < 0 {
		return ErrNegativeCost
	}

	completed := clock.StartOfDay(now)
	if completionDate != nil {
		completed = clock.StartOfDay(*completionDate)
	}

	if item.IsRecurring {
		if item.FrequencyMonths == nil {
			return ErrNoFrequency
		}
		next, err := schedule.NextDue(completed, *item.FrequencyMonths)
		if err != nil {
			return err
		}
		item.LastCompletedDate = &completed
		item.NextDueDate = &next
		item.Status = model.StatusPending
	} else {
		item.LastCompletedDate = &completed
		item.Status = model.StatusCompleted
	}

	if actualCost != nil {
		cost := *actualCost
		item.ActualCost = &cost
	}
	return nil
}

// StartProgress moves a pending item to in_progress. Calling it again while
// in progress is a no-op; terminal items reject the command.
func StartProgress(item *model.MaintenanceItem) error {
	switch item.Status {
	case model.StatusCancelled:
		return ErrCancelled
	case model.StatusCompleted:
		return ErrCompleted
	case model.StatusInProgress:
		return nil
	}
	item.Status = model.StatusInProgress
	return nil
}

// Cancel terminates a pending or in-progress item. Cancelling twice is a
// no-op; a completed one-time item cannot be cancelled.
func Cancel(item *model.MaintenanceItem) error {
	switch item.Status {
	case model.StatusCancelled:
		return nil
	case model.StatusCompleted:
		return ErrCompleted
	}
	item.Status = model.StatusCancelled
	return nil
}

// Sort orders items by priority (urgent first), then by days until due with
// unscheduled items last, then by name for a stable display order.
func Sort(items []model.MaintenanceItem, today time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		if ri, rj := items[i].Priority.Rank(), items[j].Priority.Rank(); ri != rj {
			return ri > rj
		}
		di, iOK := DaysUntilDue(items[i], today)
		dj, jOK := DaysUntilDue(items[j], today)
		if iOK != jOK {
			return iOK // scheduled before unscheduled
		}
		if iOK && di != dj {
			return di < dj
		}
		return items[i].Name < items[j].Name
	})
}
