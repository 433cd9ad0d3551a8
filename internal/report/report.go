package report

import (
	"time"

	"github.com/rsawyer/homewarden/internal/maintenance"
	"github.com/rsawyer/homewarden/internal/model"
	"github.com/rsawyer/homewarden/internal/task"
)

// NoDataKey is the placeholder bucket returned for empty collections so
// downstream chart consumers always have at least one slice to render.
const NoDataKey = "No Data"

// CountBy tallies occurrences of each distinct value. An empty input yields
// {NoDataKey: 1}, never an empty map.
func CountBy(values []string) map[string]int {
	if len(values) == 0 {
		return map[string]int{NoDataKey: 1}
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	return counts
}

// MaintenanceSummary is the dashboard headline for a maintenance collection.
type MaintenanceSummary struct {
	Total              int `json:"total"`
	Overdue            int `json:"overdue"`
	DueSoon            int `json:"due_soon"`
	CompletedThisMonth int `json:"completed_this_month"`
}

// SummarizeMaintenance computes headline counts over active items as of
// today. Malformed or empty input degrades to zero counts; it never fails.
// The caller is expected to have filtered out deactivated records already.
func SummarizeMaintenance(items []model.MaintenanceItem, today time.Time) MaintenanceSummary {
	s := MaintenanceSummary{Total: len(items)}
	for _, item := range items {
		switch maintenance.Classify(item, today) {
		case maintenance.DueOverdue:
			s.Overdue++
		case maintenance.DueSoon:
			s.DueSoon++
		}
		if completedThisMonth(item.LastCompletedDate, today) {
			s.CompletedThisMonth++
		}
	}
	return s
}

// completedThisMonth matches on month-of-year only, ignoring the year: an
// item completed in March of any year counts during every March. This is a
// documented quirk carried over intentionally; fixing it means also
// comparing Year here.
func completedThisMonth(completed *time.Time, today time.Time) bool {
	return completed != nil && completed.Month() == today.Month()
}

// TaskSummary is the dashboard headline for a task collection.
type TaskSummary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// SummarizeTasks computes headline counts over active tasks as of today.
func SummarizeTasks(tasks []model.Task, today time.Time) TaskSummary {
	s := TaskSummary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusCompleted:
			s.Completed++
		}
		if task.IsOverdue(t, today) {
			s.Overdue++
		}
	}
	return s
}

// MaintenanceCategories collects the category of each item for CountBy.
func MaintenanceCategories(items []model.MaintenanceItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Category)
	}
	return out
}

// MaintenancePriorities collects the priority of each item for CountBy.
func MaintenancePriorities(items []model.MaintenanceItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, string(item.Priority))
	}
	return out
}

// TaskCategories collects the category of each task for CountBy.
func TaskCategories(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, string(t.Category))
	}
	return out
}

// TaskStatuses collects the status of each task for CountBy.
func TaskStatuses(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, string(t.Status))
	}
	return out
}
