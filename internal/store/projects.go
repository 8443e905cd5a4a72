package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

// CreateProject creates a new project. Names are unique per user,
// case-insensitively.
func (s *Store) CreateProject(project *models.Project) error {
	if strings.TrimSpace(project.Name) == "" {
		return fmt.Errorf("project name must not be empty")
	}

	err := s.withWriteLock(func() error {
		taken, err := s.projectNameTaken(project.UserID, project.Name, "")
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("project %q: %w", project.Name, ErrDuplicateName)
		}

		id, err := generateID(projectIDPrefix)
		if err != nil {
			return err
		}
		project.ID = id

		now := time.Now()
		project.CreatedAt = now
		project.UpdatedAt = now

		_, err = s.conn.Exec(`
			INSERT INTO projects (id, user_id, name, color, favorite, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, project.ID, project.UserID, project.Name, project.Color, project.Favorite, project.CreatedAt, project.UpdatedAt)
		return err
	})
	if err != nil {
		return err
	}

	s.feed.Publish("projects", OpInsert, project.UserID, project.ID)
	return nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(id string) (*models.Project, error) {
	var p models.Project
	var color sql.NullString

	err := s.conn.QueryRow(`
		SELECT id, user_id, name, color, favorite, created_at, updated_at
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.UserID, &p.Name, &color, &p.Favorite, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p.Color = color.String
	return &p, nil
}

// UpdateProject updates a project's name, color, and favorite flag.
func (s *Store) UpdateProject(project *models.Project) error {
	if strings.TrimSpace(project.Name) == "" {
		return fmt.Errorf("project name must not be empty")
	}

	err := s.withWriteLock(func() error {
		taken, err := s.projectNameTaken(project.UserID, project.Name, project.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("project %q: %w", project.Name, ErrDuplicateName)
		}

		project.UpdatedAt = time.Now()
		res, err := s.conn.Exec(`
			UPDATE projects SET name = ?, color = ?, favorite = ?, updated_at = ? WHERE id = ?
		`, project.Name, project.Color, project.Favorite, project.UpdatedAt, project.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("project %s: %w", project.ID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.feed.Publish("projects", OpUpdate, project.UserID, project.ID)
	return nil
}

// DeleteProject removes a project. Its tasks move to the Inbox.
func (s *Store) DeleteProject(userID, id string) error {
	err := s.withWriteLock(func() error {
		if _, err := s.conn.Exec(`UPDATE tasks SET project_id = '' WHERE project_id = ?`, id); err != nil {
			return err
		}
		res, err := s.conn.Exec(`DELETE FROM projects WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.feed.Publish("projects", OpDelete, userID, id)
	return nil
}

// ListProjects returns all of a user's projects ordered by name.
func (s *Store) ListProjects(userID string) ([]models.Project, error) {
	rows, err := s.conn.Query(`
		SELECT id, user_id, name, color, favorite, created_at, updated_at
		FROM projects WHERE user_id = ? ORDER BY name COLLATE NOCASE
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		var color sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &color, &p.Favorite, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Color = color.String
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectNames returns a map of project id -> display name for the user,
// used by the filter engine's sort/group/badge resolution.
func (s *Store) ProjectNames(userID string) (map[string]string, error) {
	projects, err := s.ListProjects(userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (s *Store) projectNameTaken(userID, name, excludeID string) (bool, error) {
	var count int
	err := s.conn.QueryRow(`
		SELECT COUNT(*) FROM projects WHERE user_id = ? AND name = ? COLLATE NOCASE AND id != ?
	`, userID, name, excludeID).Scan(&count)
	return count > 0, err
}
