package model

// Status is the lifecycle status shared by maintenance items and tasks.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status admits no further lifecycle commands.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus validates a stored status value. Unknown values are rejected,
// not defaulted, so callers can surface bad persisted data.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.Valid()
}

// Priority orders items for display and aggregation. It is never mutated by
// lifecycle commands.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

// Rank returns the sort weight of the priority, higher meaning more urgent.
// Unknown priorities rank below low so they never mask real ones.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return -1
}

func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

func ParsePriority(s string) (Priority, bool) {
	p := Priority(s)
	return p, p.Valid()
}

// TaskCategory is the closed category set for tasks. Maintenance items keep a
// free-text category (HVAC, Plumbing, ...) and are not constrained by this.
type TaskCategory string

const (
	CategoryCleaning    TaskCategory = "cleaning"
	CategoryMaintenance TaskCategory = "maintenance"
	CategoryShopping    TaskCategory = "shopping"
	CategoryOrganizing  TaskCategory = "organizing"
	CategoryGardening   TaskCategory = "gardening"
	CategoryAdmin       TaskCategory = "admin"
	CategoryOther       TaskCategory = "other"
)

func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryCleaning, CategoryMaintenance, CategoryShopping,
		CategoryOrganizing, CategoryGardening, CategoryAdmin, CategoryOther:
		return true
	}
	return false
}

// ParseTaskCategory tolerates unexpected ingested values by falling back to
// CategoryOther, unlike status and priority which are rejected outright.
func ParseTaskCategory(s string) TaskCategory {
	c := TaskCategory(s)
	if c.Valid() {
		return c
	}
	return CategoryOther
}
