package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

// CreateTag creates a new tag.
func (s *Store) CreateTag(tag *models.Tag) error {
	if strings.TrimSpace(tag.Name) == "" {
		return fmt.Errorf("tag name must not be empty")
	}

	err := s.withWriteLock(func() error {
		id, err := generateID(tagIDPrefix)
		if err != nil {
			return err
		}
		tag.ID = id
		tag.CreatedAt = time.Now()

		_, err = s.conn.Exec(`
			INSERT INTO tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)
		`, tag.ID, tag.UserID, tag.Name, tag.Color, tag.CreatedAt)
		return err
	})
	if err != nil {
		return err
	}

	s.feed.Publish("tags", OpInsert, tag.UserID, tag.ID)
	return nil
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(id string) (*models.Tag, error) {
	var tag models.Tag
	var color sql.NullString

	err := s.conn.QueryRow(`
		SELECT id, user_id, name, color, created_at FROM tags WHERE id = ?
	`, id).Scan(&tag.ID, &tag.UserID, &tag.Name, &color, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	tag.Color = color.String
	return &tag, nil
}

// DeleteTag removes a tag and its task associations.
func (s *Store) DeleteTag(userID, id string) error {
	err := s.withWriteLock(func() error {
		if _, err := s.conn.Exec(`DELETE FROM task_tags WHERE tag_id = ?`, id); err != nil {
			return err
		}
		res, err := s.conn.Exec(`DELETE FROM tags WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("tag %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.feed.Publish("tags", OpDelete, userID, id)
	return nil
}

// ListTags returns all of a user's tags ordered by name.
func (s *Store) ListTags(userID string) ([]models.Tag, error) {
	rows, err := s.conn.Query(`
		SELECT id, user_id, name, color, created_at FROM tags WHERE user_id = ? ORDER BY name COLLATE NOCASE
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		var color sql.NullString
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tag.Color = color.String
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
