package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/store"
)

// --- Plans ---

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans()
	if err != nil {
		logFor(r.Context()).Error("list plans", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to list plans")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan models.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if plan.Name == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "plan name is required")
		return
	}

	if err := s.store.CreatePlan(&plan); err != nil {
		logFor(r.Context()).Error("create plan", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to create plan")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.store.GetPlan(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "plan not found")
		return
	}
	if err != nil {
		logFor(r.Context()).Error("get plan", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// handleUpdatePlan applies a partial update: absent fields keep their
// stored values.
func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.store.GetPlan(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "plan not found")
		return
	}
	if err != nil {
		logFor(r.Context()).Error("get plan", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load plan")
		return
	}

	var patch struct {
		Name         *string   `json:"name"`
		MonthlyPrice *int64    `json:"monthly_price_cents"`
		YearlyPrice  *int64    `json:"yearly_price_cents"`
		Features     *[]string `json:"features"`
		Active       *bool     `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if patch.Name != nil {
		plan.Name = *patch.Name
	}
	if patch.MonthlyPrice != nil {
		plan.MonthlyPrice = *patch.MonthlyPrice
	}
	if patch.YearlyPrice != nil {
		plan.YearlyPrice = *patch.YearlyPrice
	}
	if patch.Features != nil {
		plan.Features = *patch.Features
	}
	if patch.Active != nil {
		plan.Active = *patch.Active
	}

	if err := s.store.UpdatePlan(plan); err != nil {
		logFor(r.Context()).Error("update plan", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to update plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// --- Settings ---

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings()
	if err != nil {
		logFor(r.Context()).Error("get settings", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings()
	if err != nil {
		logFor(r.Context()).Error("get settings", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load settings")
		return
	}

	var patch struct {
		SiteName             *string `json:"site_name"`
		MaintenanceMode      *bool   `json:"maintenance_mode"`
		RegistrationEnabled  *bool   `json:"registration_enabled"`
		NotificationsEnabled *bool   `json:"notifications_enabled"`
		BackupFrequency      *string `json:"backup_frequency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if patch.SiteName != nil {
		settings.SiteName = *patch.SiteName
	}
	if patch.MaintenanceMode != nil {
		settings.MaintenanceMode = *patch.MaintenanceMode
	}
	if patch.RegistrationEnabled != nil {
		settings.RegistrationEnabled = *patch.RegistrationEnabled
	}
	if patch.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if patch.BackupFrequency != nil {
		settings.BackupFrequency = *patch.BackupFrequency
	}

	if err := s.store.SaveSettings(settings); err != nil {
		logFor(r.Context()).Error("save settings", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
