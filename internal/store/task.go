package store

import (
	"database/sql"
	"fmt"

	"github.com/rsawyer/homewarden/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, title, description, category, priority, status, assigned_to, created_by,
	due_date, start_date, completed_date, location, notes, is_active, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var category string
	var dueDate, startDate, completedDate sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &category, &t.Priority, &t.Status, &t.AssignedTo, &t.CreatedBy,
		&dueDate, &startDate, &completedDate, &t.Location, &t.Notes, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Unknown stored categories fold into "other" on the way in.
	t.Category = model.ParseTaskCategory(category)
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if startDate.Valid {
		t.StartDate = &startDate.Time
	}
	if completedDate.Valid {
		t.CompletedDate = &completedDate.Time
	}
	return &t, nil
}

func (s *TaskStore) Create(t model.Task) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (title, description, category, priority, status, assigned_to, created_by, due_date, location, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Category, t.Priority, model.StatusPending,
		t.AssignedTo, t.CreatedBy, nullTime(t.DueDate), t.Location, t.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListActive returns all non-deactivated tasks.
func (s *TaskStore) ListActive() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks WHERE is_active = 1 ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) ListByAssignee(assignee string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE is_active = 1 AND assigned_to = ? ORDER BY title ASC`,
		assignee,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by assignee: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(t model.Task) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET
			title = ?, description = ?, category = ?, priority = ?, assigned_to = ?,
			due_date = ?, location = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		t.Title, t.Description, t.Category, t.Priority, t.AssignedTo,
		nullTime(t.DueDate), t.Location, t.Notes, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(t.ID)
}

// SaveLifecycle persists the fields a lifecycle command computed: status,
// start/completed dates, and notes (completion attribution appends there).
func (s *TaskStore) SaveLifecycle(t model.Task) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, start_date = ?, completed_date = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		t.Status, nullTime(t.StartDate), nullTime(t.CompletedDate), t.Notes, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("save task lifecycle: %w", err)
	}
	return s.GetByID(t.ID)
}

// Deactivate soft-deletes a task.
func (s *TaskStore) Deactivate(id int64) error {
	_, err := s.db.Exec(`UPDATE tasks SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate task: %w", err)
	}
	return nil
}
