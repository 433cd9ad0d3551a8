package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rsawyer/homewarden/internal/model"
)

type MaintenanceStore struct {
	db *sql.DB
}

func NewMaintenanceStore(db *sql.DB) *MaintenanceStore {
	return &MaintenanceStore{db: db}
}

const maintenanceCols = `id, name, description, category, location, frequency_months, is_recurring,
	next_due_date, last_completed_date, priority, status, is_active,
	estimated_cost, actual_cost, notes, tags, created_by, assigned_to, created_at, updated_at`

func scanMaintenanceItem(scanner interface{ Scan(...any) error }) (*model.MaintenanceItem, error) {
	var m model.MaintenanceItem
	var freqMonths sql.NullInt64
	var nextDue, lastCompleted sql.NullTime
	var estCost, actCost sql.NullFloat64

	err := scanner.Scan(
		&m.ID, &m.Name, &m.Description, &m.Category, &m.Location, &freqMonths, &m.IsRecurring,
		&nextDue, &lastCompleted, &m.Priority, &m.Status, &m.IsActive,
		&estCost, &actCost, &m.Notes, &m.Tags, &m.CreatedBy, &m.AssignedTo, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if freqMonths.Valid {
		v := int(freqMonths.Int64)
		m.FrequencyMonths = &v
	}
	if nextDue.Valid {
		m.NextDueDate = &nextDue.Time
	}
	if lastCompleted.Valid {
		m.LastCompletedDate = &lastCompleted.Time
	}
	if estCost.Valid {
		m.EstimatedCost = &estCost.Float64
	}
	if actCost.Valid {
		m.ActualCost = &actCost.Float64
	}
	return &m, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func (s *MaintenanceStore) Create(m model.MaintenanceItem) (*model.MaintenanceItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO maintenance_items
			(name, description, category, location, frequency_months, is_recurring,
			 next_due_date, priority, status, estimated_cost, notes, tags, created_by, assigned_to)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Description, m.Category, m.Location, nullInt(m.FrequencyMonths), m.IsRecurring,
		nullTime(m.NextDueDate), m.Priority, model.StatusPending, nullFloat(m.EstimatedCost),
		m.Notes, m.Tags, m.CreatedBy, m.AssignedTo,
	)
	if err != nil {
		return nil, fmt.Errorf("insert maintenance item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MaintenanceStore) GetByID(id int64) (*model.MaintenanceItem, error) {
	row := s.db.QueryRow(`SELECT `+maintenanceCols+` FROM maintenance_items WHERE id = ?`, id)
	m, err := scanMaintenanceItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get maintenance item: %w", err)
	}
	return m, nil
}

// ListActive returns all non-deactivated items. Deactivated records are
// excluded here so they never reach classification or aggregation.
func (s *MaintenanceStore) ListActive() ([]model.MaintenanceItem, error) {
	rows, err := s.db.Query(`SELECT ` + maintenanceCols + ` FROM maintenance_items WHERE is_active = 1 ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list maintenance items: %w", err)
	}
	defer rows.Close()

	var items []model.MaintenanceItem
	for rows.Next() {
		m, err := scanMaintenanceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance item: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (s *MaintenanceStore) Update(m model.MaintenanceItem) (*model.MaintenanceItem, error) {
	_, err := s.db.Exec(
		`UPDATE maintenance_items SET
			name = ?, description = ?, category = ?, location = ?, frequency_months = ?,
			is_recurring = ?, next_due_date = ?, priority = ?, estimated_cost = ?,
			notes = ?, tags = ?, assigned_to = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		m.Name, m.Description, m.Category, m.Location, nullInt(m.FrequencyMonths),
		m.IsRecurring, nullTime(m.NextDueDate), m.Priority, nullFloat(m.EstimatedCost),
		m.Notes, m.Tags, m.AssignedTo, m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update maintenance item: %w", err)
	}
	return s.GetByID(m.ID)
}

// SaveLifecycle persists the fields a lifecycle command computed. Nothing
// else is touched, so concurrent descriptive edits are not clobbered.
func (s *MaintenanceStore) SaveLifecycle(m model.MaintenanceItem) (*model.MaintenanceItem, error) {
	_, err := s.db.Exec(
		`UPDATE maintenance_items SET
			status = ?, next_due_date = ?, last_completed_date = ?, actual_cost = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		m.Status, nullTime(m.NextDueDate), nullTime(m.LastCompletedDate), nullFloat(m.ActualCost), m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("save maintenance lifecycle: %w", err)
	}
	return s.GetByID(m.ID)
}

// Deactivate soft-deletes an item. Items are never removed; history stays.
func (s *MaintenanceStore) Deactivate(id int64) error {
	_, err := s.db.Exec(
		`UPDATE maintenance_items SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate maintenance item: %w", err)
	}
	return nil
}

// --- History records ---

const recordCols = `id, maintenance_item_id, completion_date, actual_cost, completed_by, notes, created_at`

func scanMaintenanceRecord(scanner interface{ Scan(...any) error }) (*model.MaintenanceRecord, error) {
	var r model.MaintenanceRecord
	var cost sql.NullFloat64
	err := scanner.Scan(&r.ID, &r.MaintenanceItemID, &r.CompletionDate, &cost, &r.CompletedBy, &r.Notes, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if cost.Valid {
		r.ActualCost = &cost.Float64
	}
	return &r, nil
}

func (s *MaintenanceStore) AddRecord(itemID int64, completionDate time.Time, actualCost *float64, completedBy, notes string) (*model.MaintenanceRecord, error) {
	result, err := s.db.Exec(
		`INSERT INTO maintenance_records (maintenance_item_id, completion_date, actual_cost, completed_by, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		itemID, completionDate, nullFloat(actualCost), completedBy, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert maintenance record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+recordCols+` FROM maintenance_records WHERE id = ?`, id)
	return scanMaintenanceRecord(row)
}

func (s *MaintenanceStore) ListRecords(itemID int64) ([]model.MaintenanceRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+recordCols+` FROM maintenance_records WHERE maintenance_item_id = ? ORDER BY completion_date DESC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list maintenance records: %w", err)
	}
	defer rows.Close()

	var records []model.MaintenanceRecord
	for rows.Next() {
		r, err := scanMaintenanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}
