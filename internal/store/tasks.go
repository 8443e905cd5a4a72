package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

// ListTasksOptions contains filter options for listing tasks.
// Zero values mean "no constraint" except where noted.
type ListTasksOptions struct {
	ProjectID    string // exact project match
	InboxOnly    bool   // tasks with no project reference
	Completed    *bool
	Favorite     *bool
	Priority     int // 0 = any
	TagID        string
	Search       string // matches title and notes
	DueAfter     time.Time
	DueBefore    time.Time
	HasDueDate   *bool
	SortBy       string // allow-listed column name
	SortDesc     bool
	Limit        int
}

// CreateTask creates a new task with defaults applied and publishes an
// insert event to the change feed.
func (s *Store) CreateTask(task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if task.Priority == 0 {
		task.Priority = models.PriorityDefault
	}
	if !models.IsValidPriority(task.Priority) {
		return fmt.Errorf("invalid priority %d (must be 1-4)", task.Priority)
	}

	err := s.withWriteLock(func() error {
		now := time.Now()
		task.CreatedAt = now
		task.UpdatedAt = now

		// Retry loop for rare ID collisions
		const maxRetries = 3
		for attempt := 0; attempt < maxRetries; attempt++ {
			id := task.ID
			if id == "" {
				var err error
				id, err = generateID(taskIDPrefix)
				if err != nil {
					return err
				}
			}
			task.ID = id

			_, err := s.conn.Exec(`
				INSERT INTO tasks (id, user_id, title, notes, due_date, all_day, priority, project_id, completed, favorite, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, task.ID, task.UserID, task.Title, task.Notes, task.DueDate, task.AllDay, task.Priority, task.ProjectID, task.Completed, task.Favorite, task.CreatedAt, task.UpdatedAt)

			if err == nil {
				return s.replaceTaskTags(task.ID, task.TagIDs)
			}
			if !strings.Contains(err.Error(), "UNIQUE constraint") {
				return err
			}
			task.ID = ""
		}
		return fmt.Errorf("failed to generate unique task ID after %d attempts", maxRetries)
	})
	if err != nil {
		return err
	}

	s.feed.Publish("tasks", OpInsert, task.UserID, task.ID)
	return nil
}

// GetTask retrieves a task by ID, including its tag associations.
func (s *Store) GetTask(id string) (*models.Task, error) {
	var task models.Task
	var dueDate sql.NullTime
	var notes, projectID sql.NullString

	err := s.conn.QueryRow(`
		SELECT id, user_id, title, notes, due_date, all_day, priority, project_id, completed, favorite, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id).Scan(
		&task.ID, &task.UserID, &task.Title, &notes, &dueDate, &task.AllDay,
		&task.Priority, &projectID, &task.Completed, &task.Favorite, &task.CreatedAt, &task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	task.Notes = notes.String
	task.ProjectID = projectID.String
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	tagIDs, err := s.taskTagIDs(task.ID)
	if err != nil {
		return nil, err
	}
	task.TagIDs = tagIDs

	return &task, nil
}

// UpdateTask updates a task's mutable fields and publishes an update event.
func (s *Store) UpdateTask(task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if !models.IsValidPriority(task.Priority) {
		return fmt.Errorf("invalid priority %d (must be 1-4)", task.Priority)
	}

	err := s.withWriteLock(func() error {
		task.UpdatedAt = time.Now()
		res, err := s.conn.Exec(`
			UPDATE tasks SET title = ?, notes = ?, due_date = ?, all_day = ?, priority = ?,
			                 project_id = ?, completed = ?, favorite = ?, updated_at = ?
			WHERE id = ?
		`, task.Title, task.Notes, task.DueDate, task.AllDay, task.Priority,
			task.ProjectID, task.Completed, task.Favorite, task.UpdatedAt, task.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
		}
		return s.replaceTaskTags(task.ID, task.TagIDs)
	})
	if err != nil {
		return err
	}

	s.feed.Publish("tasks", OpUpdate, task.UserID, task.ID)
	return nil
}

// DeleteTask removes a task and its tag associations and publishes a delete
// event. The undo affordance re-creates the task from its snapshot, so the
// delete itself is a hard delete.
func (s *Store) DeleteTask(userID, id string) error {
	err := s.withWriteLock(func() error {
		if _, err := s.conn.Exec(`DELETE FROM task_tags WHERE task_id = ?`, id); err != nil {
			return err
		}
		res, err := s.conn.Exec(`DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.feed.Publish("tasks", OpDelete, userID, id)
	return nil
}

// ListTasks returns the user's tasks matching the options.
func (s *Store) ListTasks(userID string, opts ListTasksOptions) ([]models.Task, error) {
	query := `SELECT id, user_id, title, notes, due_date, all_day, priority, project_id, completed, favorite, created_at, updated_at
	          FROM tasks WHERE user_id = ?`
	args := []interface{}{userID}

	if opts.InboxOnly {
		query += " AND (project_id IS NULL OR project_id = '')"
	} else if opts.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, opts.ProjectID)
	}

	if opts.Completed != nil {
		query += " AND completed = ?"
		args = append(args, *opts.Completed)
	}
	if opts.Favorite != nil {
		query += " AND favorite = ?"
		args = append(args, *opts.Favorite)
	}
	if opts.Priority > 0 {
		query += " AND priority = ?"
		args = append(args, opts.Priority)
	}
	if opts.TagID != "" {
		query += " AND id IN (SELECT task_id FROM task_tags WHERE tag_id = ?)"
		args = append(args, opts.TagID)
	}
	if opts.Search != "" {
		query += " AND (title LIKE ? OR notes LIKE ?)"
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern)
	}
	if opts.HasDueDate != nil {
		if *opts.HasDueDate {
			query += " AND due_date IS NOT NULL"
		} else {
			query += " AND due_date IS NULL"
		}
	}
	if !opts.DueAfter.IsZero() {
		query += " AND due_date >= ?"
		args = append(args, opts.DueAfter)
	}
	if !opts.DueBefore.IsZero() {
		query += " AND due_date <= ?"
		args = append(args, opts.DueBefore)
	}

	// Sorting - validate column name to prevent SQL injection
	allowedSortCols := map[string]bool{
		"title": true, "due_date": true, "priority": true,
		"created_at": true, "updated_at": true,
	}
	sortCol := "created_at"
	if opts.SortBy != "" && allowedSortCols[opts.SortBy] {
		sortCol = opts.SortBy
	}
	sortDir := "ASC"
	if opts.SortDesc {
		sortDir = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortCol, sortDir)

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	var ids []string
	for rows.Next() {
		var task models.Task
		var dueDate sql.NullTime
		var notes, projectID sql.NullString

		if err := rows.Scan(
			&task.ID, &task.UserID, &task.Title, &notes, &dueDate, &task.AllDay,
			&task.Priority, &projectID, &task.Completed, &task.Favorite, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		task.Notes = notes.String
		task.ProjectID = projectID.String
		if dueDate.Valid {
			task.DueDate = &dueDate.Time
		}
		tasks = append(tasks, task)
		ids = append(ids, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachTags(tasks, ids); err != nil {
		return nil, err
	}
	return tasks, nil
}

// replaceTaskTags rewrites a task's tag associations.
func (s *Store) replaceTaskTags(taskID string, tagIDs []string) error {
	if _, err := s.conn.Exec(`DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := s.conn.Exec(`INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// taskTagIDs fetches the tag IDs linked to one task.
func (s *Store) taskTagIDs(taskID string) ([]string, error) {
	rows, err := s.conn.Query(`SELECT tag_id FROM task_tags WHERE task_id = ? ORDER BY tag_id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// attachTags fills TagIDs for a batch of tasks in a single query.
func (s *Store) attachTags(tasks []models.Task, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := s.conn.Query(
		fmt.Sprintf(`SELECT task_id, tag_id FROM task_tags WHERE task_id IN (%s) ORDER BY tag_id`, strings.Join(placeholders, ",")),
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	byTask := make(map[string][]string)
	for rows.Next() {
		var taskID, tagID string
		if err := rows.Scan(&taskID, &tagID); err != nil {
			return err
		}
		byTask[taskID] = append(byTask[taskID], tagID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range tasks {
		tasks[i].TagIDs = byTask[tasks[i].ID]
	}
	return nil
}
