package model

import "time"

// MaintenanceItem is a recurring (or one-time) household obligation with a
// schedule. Lifecycle fields (Status, NextDueDate, LastCompletedDate,
// ActualCost) are mutated only by the maintenance package; stores persist
// whatever the lifecycle computed.
type MaintenanceItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"` // free text: HVAC, Plumbing, Exterior...
	Location    string `json:"location"`

	FrequencyMonths   *int       `json:"frequency_months"`
	IsRecurring       bool       `json:"is_recurring"`
	NextDueDate       *time.Time `json:"next_due_date"`
	LastCompletedDate *time.Time `json:"last_completed_date"`

	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`
	IsActive bool     `json:"is_active"`

	EstimatedCost *float64 `json:"estimated_cost"`
	ActualCost    *float64 `json:"actual_cost"`

	Notes      string `json:"notes"`
	Tags       string `json:"tags"` // comma-separated
	CreatedBy  string `json:"created_by"`
	AssignedTo string `json:"assigned_to"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaintenanceRecord is an append-only history entry written on every
// maintenance completion.
type MaintenanceRecord struct {
	ID                int64     `json:"id"`
	MaintenanceItemID int64     `json:"maintenance_item_id"`
	CompletionDate    time.Time `json:"completion_date"`
	ActualCost        *float64  `json:"actual_cost"`
	CompletedBy       string    `json:"completed_by"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
}
