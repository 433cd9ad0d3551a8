package store

import (
	"testing"
	"time"

	"github.com/rsawyer/homewarden/internal/database"
	"github.com/rsawyer/homewarden/internal/model"
)

func setupTestDB(t *testing.T) *MaintenanceStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMaintenanceStore(db)
}

func testItem() model.MaintenanceItem {
	freq := 3
	est := 25.0
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.MaintenanceItem{
		Name:            "HVAC filter replacement",
		Description:     "Replace air filter in main HVAC system",
		Category:        "HVAC",
		Location:        "Basement",
		FrequencyMonths: &freq,
		IsRecurring:     true,
		NextDueDate:     &due,
		Priority:        model.PriorityMedium,
		EstimatedCost:   &est,
		CreatedBy:       "sam",
	}
}

func TestMaintenanceCRUD(t *testing.T) {
	ms := setupTestDB(t)

	item, err := ms.Create(testItem())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Name != "HVAC filter replacement" {
		t.Errorf("name = %q", item.Name)
	}
	if item.Status != model.StatusPending {
		t.Errorf("status = %q, want pending on creation", item.Status)
	}
	if !item.IsActive {
		t.Error("new items must be active")
	}
	if item.FrequencyMonths == nil || *item.FrequencyMonths != 3 {
		t.Errorf("frequency = %v, want 3", item.FrequencyMonths)
	}
	if item.NextDueDate == nil || !item.NextDueDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("next due = %v", item.NextDueDate)
	}

	got, err := ms.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EstimatedCost == nil || *got.EstimatedCost != 25.0 {
		t.Errorf("estimated cost = %v, want 25.0", got.EstimatedCost)
	}

	got.Category = "Heating"
	updated, err := ms.Update(*got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != "Heating" {
		t.Errorf("category = %q, want Heating", updated.Category)
	}
}

func TestMaintenanceGetByIDNotFound(t *testing.T) {
	ms := setupTestDB(t)

	got, err := ms.GetByID(9999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent item")
	}
}

func TestMaintenanceSaveLifecycle(t *testing.T) {
	ms := setupTestDB(t)

	item, err := ms.Create(testItem())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completed := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	next := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	cost := 30.0
	item.Status = model.StatusPending
	item.LastCompletedDate = &completed
	item.NextDueDate = &next
	item.ActualCost = &cost

	saved, err := ms.SaveLifecycle(*item)
	if err != nil {
		t.Fatalf("save lifecycle: %v", err)
	}
	if saved.LastCompletedDate == nil || !saved.LastCompletedDate.Equal(completed) {
		t.Errorf("last completed = %v, want %v", saved.LastCompletedDate, completed)
	}
	if saved.NextDueDate == nil || !saved.NextDueDate.Equal(next) {
		t.Errorf("next due = %v, want %v", saved.NextDueDate, next)
	}
	if saved.ActualCost == nil || *saved.ActualCost != 30.0 {
		t.Errorf("actual cost = %v, want 30.0", saved.ActualCost)
	}
}

func TestMaintenanceDeactivateExcludesFromList(t *testing.T) {
	ms := setupTestDB(t)

	item, err := ms.Create(testItem())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := ms.ListActive()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}

	if err := ms.Deactivate(item.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	items, err = ms.ListActive()
	if err != nil {
		t.Fatalf("list after deactivate: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d, want 0 (deactivated items are excluded)", len(items))
	}

	// The row itself survives.
	got, err := ms.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.IsActive {
		t.Error("deactivated item should still exist with is_active=false")
	}
}

func TestMaintenanceRecords(t *testing.T) {
	ms := setupTestDB(t)

	item, err := ms.Create(testItem())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cost := 28.5
	when := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	rec, err := ms.AddRecord(item.ID, when, &cost, "sam", "replaced with MERV 13")
	if err != nil {
		t.Fatalf("add record: %v", err)
	}
	if rec.CompletedBy != "sam" {
		t.Errorf("completed_by = %q", rec.CompletedBy)
	}

	if _, err := ms.AddRecord(item.ID, when.AddDate(0, 3, 0), nil, "alex", ""); err != nil {
		t.Fatalf("add second record: %v", err)
	}

	records, err := ms.ListRecords(item.ID)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	// Newest first.
	if !records[0].CompletionDate.After(records[1].CompletionDate) {
		t.Error("records should be ordered newest first")
	}
}
