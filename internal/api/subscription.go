package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskpro/taskpro/internal/billing"
	"github.com/taskpro/taskpro/internal/models"
)

// subscriptionResponse is the projection consumers render access state from.
type subscriptionResponse struct {
	Status        string `json:"status"`
	PlanType      string `json:"plan_type,omitempty"`
	IsActive      bool   `json:"is_active"`
	IsTrialActive bool   `json:"is_trial_active"`
	DaysRemaining int    `json:"days_remaining"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

func projectionBody(p billing.Projection) subscriptionResponse {
	resp := subscriptionResponse{
		Status:        string(p.Status),
		PlanType:      string(p.PlanType),
		IsActive:      p.IsActive,
		IsTrialActive: p.IsTrialActive,
		DaysRemaining: p.DaysRemaining,
	}
	if p.ExpiresAt != nil {
		resp.ExpiresAt = p.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// handleGetSubscription returns the acting user's access projection,
// provisioning a trial on first contact.
func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	p, err := s.billing.Current(s.userID(r))
	if err != nil {
		logFor(r.Context()).Error("get subscription", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load subscription")
		return
	}
	writeJSON(w, http.StatusOK, projectionBody(p))
}

// handleCheckout starts a provider checkout and returns the approval URL.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanType string `json:"plan_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	plan := models.NormalizePlanType(req.PlanType)
	checkout, err := s.billing.StartCheckout(s.userID(r), plan)
	if err != nil {
		if !models.IsValidPlanType(plan) {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		logFor(r.Context()).Error("start checkout", "err", err)
		writeError(w, http.StatusBadGateway, ErrCodeProviderDown, "payment provider unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"approval_url":    checkout.ApprovalURL,
		"subscription_id": checkout.SubscriptionID,
	})
}

// handleCancelSubscription cancels with the provider, then locally.
func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
			return
		}
	}

	err := s.billing.Cancel(s.userID(r), req.Reason)
	switch {
	case err == nil:
		p, perr := s.billing.Current(s.userID(r))
		if perr != nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
			return
		}
		writeJSON(w, http.StatusOK, projectionBody(p))
	case errors.Is(err, billing.ErrNoProviderSub):
		writeError(w, http.StatusConflict, ErrCodeConflict, "subscription was never activated with the provider")
	default:
		logFor(r.Context()).Error("cancel subscription", "err", err)
		writeError(w, http.StatusBadGateway, ErrCodeProviderDown, "provider cancel failed; subscription unchanged")
	}
}

// handleBillingReturn captures the checkout redirect. The response redirects
// to the application root with the billing parameters stripped, mirroring
// the URL cleanup the protocol requires.
func (s *Server) handleBillingReturn(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.billing.ProcessReturn(s.userID(r), r.URL.Query())
	if err != nil {
		logFor(r.Context()).Error("process checkout return", "outcome", outcome, "err", err)
		writeError(w, http.StatusBadGateway, ErrCodeProviderDown, "activation failed; retry the checkout return")
		return
	}

	switch outcome {
	case billing.ReturnActivated, billing.ReturnDuplicate:
		http.Redirect(w, r, "/?billing=activated", http.StatusSeeOther)
	case billing.ReturnCancelled:
		http.Redirect(w, r, "/?billing=cancelled", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
