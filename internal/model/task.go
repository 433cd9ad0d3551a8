package model

import "time"

// Task is an ad-hoc household assignment with a true status state machine.
// StartDate is set once on the first transition to in_progress and never
// cleared; CompletedDate is set iff the task is completed.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    TaskCategory `json:"category"`
	Priority    Priority     `json:"priority"`
	Status      Status       `json:"status"`

	AssignedTo string `json:"assigned_to"`
	CreatedBy  string `json:"created_by"`

	DueDate       *time.Time `json:"due_date"`
	StartDate     *time.Time `json:"start_date"`
	CompletedDate *time.Time `json:"completed_date"`

	Location string `json:"location"`
	Notes    string `json:"notes"`
	IsActive bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
