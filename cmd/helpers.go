package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskpro/taskpro/internal/billing"
	"github.com/taskpro/taskpro/internal/cache"
	"github.com/taskpro/taskpro/internal/config"
	"github.com/taskpro/taskpro/internal/dateparse"
	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/output"
	"github.com/taskpro/taskpro/internal/paypal"
	"github.com/taskpro/taskpro/internal/store"
)

// appEnv bundles the collaborators CLI commands wire together.
type appEnv struct {
	Store   *store.Store
	Config  *config.Config
	Cache   *cache.Cache
	Billing *billing.Manager
	UserID  string
}

func (e *appEnv) Close() {
	e.Store.Close()
}

// openEnv opens the store and builds the cache and billing manager around it.
func openEnv() (*appEnv, error) {
	st, err := store.Open(getBaseDir())
	if err != nil {
		output.Error("%v", err)
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		st.Close()
		output.Error("load config: %v", err)
		return nil, err
	}

	c := cache.New(st.Feed())
	provider := paypal.New(paypalBaseURL(cfg), cfg.PayPal.ClientID, cfg.PayPal.Secret)
	bm := billing.New(st, provider, c, billing.Config{
		MonthlyPlanID: cfg.PayPal.MonthlyPlanID,
		YearlyPlanID:  cfg.PayPal.YearlyPlanID,
		ReturnURL:     cfg.PayPal.ReturnURL,
		CancelURL:     cfg.PayPal.CancelURL,
	})

	return &appEnv{
		Store:   st,
		Config:  cfg,
		Cache:   c,
		Billing: bm,
		UserID:  cfg.CurrentUserID(),
	}, nil
}

func paypalBaseURL(cfg *config.Config) string {
	if cfg.PayPal.Mode == "live" {
		return paypal.LiveURL
	}
	return paypal.SandboxURL
}

// resolveProject maps a project name or id to its id. Empty and "inbox"
// both mean the Inbox.
func resolveProject(e *appEnv, nameOrID string) (string, error) {
	if nameOrID == "" || nameOrID == models.ProjectInbox {
		return "", nil
	}
	projects, err := e.Store.ListProjects(e.UserID)
	if err != nil {
		return "", err
	}
	for _, p := range projects {
		if p.ID == nameOrID || p.Name == nameOrID {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("project %q not found", nameOrID)
}

// parseDueFlag converts a --due value (keyword or date) to a timestamp.
func parseDueFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := dateparse.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- Undo journal ---
//
// Completion and deletion leave a short-lived snapshot in the store so the
// next invocation can reverse them. The window expires silently.

const undoKey = "last_undo"

// UndoWindow bounds how long a completion or deletion stays reversible.
const UndoWindow = 5 * time.Second

type undoState struct {
	Action  string      `json:"action"` // "complete" or "delete"
	Task    models.Task `json:"task"`   // snapshot before the mutation
	Expires time.Time   `json:"expires"`
}

func saveUndo(st *store.Store, action string, snapshot models.Task) {
	state := undoState{
		Action:  action,
		Task:    snapshot,
		Expires: time.Now().Add(UndoWindow),
	}
	if err := st.SetAppValue(undoKey, state); err != nil {
		output.Warning("could not record undo state: %v", err)
	}
}

// loadUndo returns the live undo state, or nil when none exists or the
// window has passed.
func loadUndo(st *store.Store) (*undoState, error) {
	var state undoState
	err := st.GetAppValue(undoKey, &state)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(state.Expires) {
		return nil, nil
	}
	return &state, nil
}

func clearUndo(st *store.Store) {
	if err := st.DeleteAppValue(undoKey); err != nil {
		output.Warning("could not clear undo state: %v", err)
	}
}
