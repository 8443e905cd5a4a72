package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskpro/taskpro/internal/models"
)

// CreatePlan inserts an admin-managed subscription plan record.
func (s *Store) CreatePlan(plan *models.Plan) error {
	if strings.TrimSpace(plan.Name) == "" {
		return fmt.Errorf("plan name must not be empty")
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	return s.withWriteLock(func() error {
		if plan.ID == "" {
			plan.ID = uuid.NewString()
		}
		now := time.Now()
		plan.CreatedAt = now
		plan.UpdatedAt = now

		_, err := s.conn.Exec(`
			INSERT INTO plans (id, name, monthly_price_cents, yearly_price_cents, features, active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, plan.ID, plan.Name, plan.MonthlyPrice, plan.YearlyPrice, string(features), plan.Active, plan.CreatedAt, plan.UpdatedAt)
		return err
	})
}

// GetPlan retrieves a plan by ID.
func (s *Store) GetPlan(id string) (*models.Plan, error) {
	var plan models.Plan
	var features string

	err := s.conn.QueryRow(`
		SELECT id, name, monthly_price_cents, yearly_price_cents, features, active, created_at, updated_at
		FROM plans WHERE id = ?
	`, id).Scan(&plan.ID, &plan.Name, &plan.MonthlyPrice, &plan.YearlyPrice, &features, &plan.Active, &plan.CreatedAt, &plan.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(features), &plan.Features); err != nil {
		return nil, fmt.Errorf("plan %s features: %w", id, err)
	}
	return &plan, nil
}

// UpdatePlan updates a plan record.
func (s *Store) UpdatePlan(plan *models.Plan) error {
	if strings.TrimSpace(plan.Name) == "" {
		return fmt.Errorf("plan name must not be empty")
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	return s.withWriteLock(func() error {
		plan.UpdatedAt = time.Now()
		res, err := s.conn.Exec(`
			UPDATE plans SET name = ?, monthly_price_cents = ?, yearly_price_cents = ?, features = ?, active = ?, updated_at = ?
			WHERE id = ?
		`, plan.Name, plan.MonthlyPrice, plan.YearlyPrice, string(features), plan.Active, plan.UpdatedAt, plan.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("plan %s: %w", plan.ID, ErrNotFound)
		}
		return nil
	})
}

// ListPlans returns all plan records.
func (s *Store) ListPlans() ([]models.Plan, error) {
	rows, err := s.conn.Query(`
		SELECT id, name, monthly_price_cents, yearly_price_cents, features, active, created_at, updated_at
		FROM plans ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var plan models.Plan
		var features string
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.MonthlyPrice, &plan.YearlyPrice, &features, &plan.Active, &plan.CreatedAt, &plan.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &plan.Features); err != nil {
			return nil, fmt.Errorf("plan %s features: %w", plan.ID, err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
