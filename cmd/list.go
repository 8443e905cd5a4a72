package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/cache"
	"github.com/taskpro/taskpro/internal/filter"
	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/output"
	"github.com/taskpro/taskpro/internal/store"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks for a view, a saved filter, a project or a search.

Views: all, today, upcoming, overdue, inbox, completed, favorites.
Saved filters are referenced by id or name; the standard filters are
today, upcoming and priority1.`,
	GroupID: "tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		view, _ := cmd.Flags().GetString("view")
		for _, name := range []string{"today", "upcoming", "overdue", "inbox", "completed", "favorites"} {
			if on, _ := cmd.Flags().GetBool(name); on {
				view = name
			}
		}
		filterRef, _ := cmd.Flags().GetString("filter")
		project, _ := cmd.Flags().GetString("project")
		search, _ := cmd.Flags().GetString("search")
		sortBy, _ := cmd.Flags().GetString("sort")
		desc, _ := cmd.Flags().GetBool("desc")
		groupBy, _ := cmd.Flags().GetString("group")
		asJSON, _ := cmd.Flags().GetBool("json")

		tasks, scope, err := fetchView(env, view, filterRef, project, search)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		env.Cache.PutTasks(env.UserID, scope, tasks)

		projectNames, err := env.Store.ProjectNames(env.UserID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		ectx := &filter.EvalContext{Now: time.Now(), ProjectNames: projectNames}

		if sortBy != "" {
			tasks = filter.SortTasks(ectx, tasks, sortBy, desc)
		}

		if asJSON {
			return output.JSON(tasks)
		}

		if groupBy == "" {
			for i := range tasks {
				output.Info("%s", output.TaskLine(&tasks[i], projectNames, ectx.Now))
			}
			if len(tasks) == 0 {
				output.Info("No tasks.")
			}
			return nil
		}

		groups := filter.GroupTasks(ectx, tasks, groupBy)
		for _, g := range groups {
			output.Info("%s", output.GroupHeader(g.Key))
			for i := range g.Tasks {
				output.Info("  %s", output.TaskLine(&g.Tasks[i], projectNames, ectx.Now))
			}
		}
		if len(groups) == 0 {
			output.Info("No tasks.")
		}
		return nil
	},
}

// fetchView loads the tasks for the requested view and returns them with
// the cache scope they belong to.
func fetchView(env *appEnv, view, filterRef, project, search string) ([]models.Task, string, error) {
	if filterRef != "" {
		tasks, err := fetchFiltered(env, filterRef)
		return tasks, cache.FilterScope(filterRef), err
	}
	if project != "" {
		id, err := resolveProject(env, project)
		if err != nil {
			return nil, "", err
		}
		if id == "" {
			tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{InboxOnly: true})
			return tasks, cache.ScopeInbox, err
		}
		tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{ProjectID: id})
		return tasks, cache.ProjectScope(id), err
	}
	if search != "" {
		tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{Search: search})
		return tasks, cache.SearchScope(search), err
	}

	open := false
	completed := true
	now := time.Now()
	switch view {
	case "", "all":
		tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{})
		return tasks, cache.ScopeAll, err
	case "today":
		tasks, err := evaluateStandard(env, filter.StandardToday)
		return tasks, cache.ScopeToday, err
	case "upcoming":
		tasks, err := evaluateStandard(env, filter.StandardUpcoming)
		return tasks, cache.ScopeUpcoming, err
	case "overdue":
		tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{
			Completed: &open,
			DueBefore: now.Add(-time.Nanosecond),
		})
		return tasks, cache.ScopeOverdue, err
	case "inbox":
		tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{InboxOnly: true, Completed: &open})
		return tasks, cache.ScopeInbox, err
	case "completed":
		tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{Completed: &completed})
		return tasks, cache.ScopeCompleted, err
	case "favorites":
		fav := true
		tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{Favorite: &fav})
		return tasks, cache.ScopeFavorites, err
	default:
		return nil, "", fmt.Errorf("unknown view %q", view)
	}
}

// fetchFiltered evaluates a saved filter, referenced by id or name, over the
// user's tasks.
func fetchFiltered(env *appEnv, ref string) ([]models.Task, error) {
	f, err := lookupFilter(env, ref)
	if err != nil {
		return nil, err
	}
	return evaluateFilter(env, f)
}

func evaluateStandard(env *appEnv, id string) ([]models.Task, error) {
	f := filter.GetStandard(id)
	if f == nil {
		return nil, fmt.Errorf("unknown standard filter %q", id)
	}
	return evaluateFilter(env, f)
}

func evaluateFilter(env *appEnv, f *models.Filter) ([]models.Task, error) {
	tasks, err := env.Store.ListTasks(env.UserID, store.ListTasksOptions{})
	if err != nil {
		return nil, err
	}
	projectNames, err := env.Store.ProjectNames(env.UserID)
	if err != nil {
		return nil, err
	}
	ectx := &filter.EvalContext{Now: time.Now(), ProjectNames: projectNames}
	return filter.Evaluate(ectx, tasks, f), nil
}

// lookupFilter resolves a filter reference: standard id, stored id, then
// stored name.
func lookupFilter(env *appEnv, ref string) (*models.Filter, error) {
	if f := filter.GetStandard(ref); f != nil {
		return f, nil
	}
	if f, err := env.Store.GetFilter(ref); err == nil {
		return f, nil
	}
	filters, err := env.Store.ListFilters(env.UserID)
	if err != nil {
		return nil, err
	}
	for i := range filters {
		if filters[i].Name == ref {
			return &filters[i], nil
		}
	}
	return nil, fmt.Errorf("filter %q not found", ref)
}

func init() {
	listCmd.Flags().StringP("view", "v", "", "view: all, today, upcoming, overdue, inbox, completed, favorites")
	listCmd.Flags().Bool("today", false, "shorthand for --view today")
	listCmd.Flags().Bool("upcoming", false, "shorthand for --view upcoming")
	listCmd.Flags().Bool("overdue", false, "shorthand for --view overdue")
	listCmd.Flags().Bool("inbox", false, "shorthand for --view inbox")
	listCmd.Flags().Bool("completed", false, "shorthand for --view completed")
	listCmd.Flags().Bool("favorites", false, "shorthand for --view favorites")
	listCmd.Flags().StringP("filter", "f", "", "saved filter id or name")
	listCmd.Flags().String("project", "", "project name or id")
	listCmd.Flags().StringP("search", "s", "", "text search over title and notes")
	listCmd.Flags().String("sort", "", "sort key: title, dueDate, priority, project")
	listCmd.Flags().Bool("desc", false, "sort descending")
	listCmd.Flags().StringP("group", "g", "", "group key: title, priority, project, dueDate")
	listCmd.Flags().Bool("json", false, "output JSON")
	rootCmd.AddCommand(listCmd)
}
