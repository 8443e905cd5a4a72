package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/taskpro/taskpro/internal/filter"
	"github.com/taskpro/taskpro/internal/models"
)

// CreateFilter creates a new custom filter. Names are unique per user,
// case-insensitively; conditions are validated and stored in canonical form.
func (s *Store) CreateFilter(f *models.Filter) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("filter name must not be empty")
	}
	if err := filter.ValidateConditions(f.Conditions); err != nil {
		return err
	}

	conditions, err := filter.MarshalConditions(f.Conditions)
	if err != nil {
		return err
	}

	err = s.withWriteLock(func() error {
		taken, err := s.filterNameTaken(f.UserID, f.Name, "")
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("filter %q: %w", f.Name, ErrDuplicateName)
		}

		id, err := generateID(filterIDPrefix)
		if err != nil {
			return err
		}
		f.ID = id

		now := time.Now()
		f.CreatedAt = now
		f.UpdatedAt = now

		_, err = s.conn.Exec(`
			INSERT INTO filters (id, user_id, name, conditions, favorite, color, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, f.ID, f.UserID, f.Name, string(conditions), f.Favorite, f.Color, f.CreatedAt, f.UpdatedAt)
		return err
	})
	if err != nil {
		return err
	}

	s.feed.Publish("filters", OpInsert, f.UserID, f.ID)
	return nil
}

// GetFilter retrieves a filter by ID. Standard filter IDs resolve to the
// built-in process-wide definitions.
func (s *Store) GetFilter(id string) (*models.Filter, error) {
	if std := filter.GetStandard(id); std != nil {
		return std, nil
	}

	var f models.Filter
	var conditions string
	var color sql.NullString

	err := s.conn.QueryRow(`
		SELECT id, user_id, name, conditions, favorite, color, created_at, updated_at
		FROM filters WHERE id = ?
	`, id).Scan(&f.ID, &f.UserID, &f.Name, &conditions, &f.Favorite, &color, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("filter %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	f.Color = color.String
	f.Conditions, err = filter.Normalize([]byte(conditions))
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", id, err)
	}
	return &f, nil
}

// UpdateFilter updates a filter's name, conditions, favorite flag, and
// color. Standard filters are rejected.
func (s *Store) UpdateFilter(f *models.Filter) error {
	if filter.IsStandard(f.ID) {
		return filter.ErrStandardFilter
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("filter name must not be empty")
	}
	if err := filter.ValidateConditions(f.Conditions); err != nil {
		return err
	}

	conditions, err := filter.MarshalConditions(f.Conditions)
	if err != nil {
		return err
	}

	err = s.withWriteLock(func() error {
		taken, err := s.filterNameTaken(f.UserID, f.Name, f.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("filter %q: %w", f.Name, ErrDuplicateName)
		}

		f.UpdatedAt = time.Now()
		res, err := s.conn.Exec(`
			UPDATE filters SET name = ?, conditions = ?, favorite = ?, color = ?, updated_at = ? WHERE id = ?
		`, f.Name, string(conditions), f.Favorite, f.Color, f.UpdatedAt, f.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("filter %s: %w", f.ID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.feed.Publish("filters", OpUpdate, f.UserID, f.ID)
	return nil
}

// DeleteFilter removes a custom filter. Standard filters are rejected.
func (s *Store) DeleteFilter(userID, id string) error {
	if filter.IsStandard(id) {
		return filter.ErrStandardFilter
	}

	err := s.withWriteLock(func() error {
		res, err := s.conn.Exec(`DELETE FROM filters WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("filter %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.feed.Publish("filters", OpDelete, userID, id)
	return nil
}

// ListFilters returns the user's custom filters in creation order.
// Standard filters are process constants and are not included; callers that
// want them prepend filter.StandardFilters().
func (s *Store) ListFilters(userID string) ([]models.Filter, error) {
	rows, err := s.conn.Query(`
		SELECT id, user_id, name, conditions, favorite, color, created_at, updated_at
		FROM filters WHERE user_id = ? ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var filters []models.Filter
	for rows.Next() {
		var f models.Filter
		var conditions string
		var color sql.NullString
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &conditions, &f.Favorite, &color, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.Color = color.String
		f.Conditions, err = filter.Normalize([]byte(conditions))
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.ID, err)
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

func (s *Store) filterNameTaken(userID, name, excludeID string) (bool, error) {
	var count int
	err := s.conn.QueryRow(`
		SELECT COUNT(*) FROM filters WHERE user_id = ? AND name = ? COLLATE NOCASE AND id != ?
	`, userID, name, excludeID).Scan(&count)
	return count > 0, err
}
