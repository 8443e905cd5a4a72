package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/output"
)

var addCmd = &cobra.Command{
	Use:     "add [title]",
	Aliases: []string{"create", "new"},
	Short:   "Add a new task",
	Long:    `Add a new task with optional due date, priority, project, tags and notes.`,
	GroupID: "tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		title := strings.Join(args, " ")
		task := &models.Task{
			UserID: env.UserID,
			Title:  title,
		}

		if due, _ := cmd.Flags().GetString("due"); due != "" {
			t, err := parseDueFlag(due)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			task.DueDate = t
			task.AllDay = true
		}
		task.Priority, _ = cmd.Flags().GetInt("priority")
		task.Notes, _ = cmd.Flags().GetString("notes")
		task.Favorite, _ = cmd.Flags().GetBool("favorite")

		if project, _ := cmd.Flags().GetString("project"); project != "" {
			id, err := resolveProject(env, project)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			task.ProjectID = id
		}

		if tags, _ := cmd.Flags().GetStringSlice("tag"); len(tags) > 0 {
			ids, err := resolveTags(env, tags)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			task.TagIDs = ids
		}

		if err := env.Store.CreateTask(task); err != nil {
			output.Error("%v", err)
			return err
		}

		output.Success("Added %s", task.ID)
		projectNames, _ := env.Store.ProjectNames(env.UserID)
		output.Info("%s", output.TaskLine(task, projectNames, time.Now()))
		return nil
	},
}

// resolveTags maps tag names to ids, creating missing tags.
func resolveTags(env *appEnv, names []string) ([]string, error) {
	existing, err := env.Store.ListTags(env.UserID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(existing))
	for _, tag := range existing {
		byName[tag.Name] = tag.ID
	}

	var ids []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
			continue
		}
		tag := &models.Tag{UserID: env.UserID, Name: name}
		if err := env.Store.CreateTag(tag); err != nil {
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
		byName[name] = tag.ID
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

func init() {
	addCmd.Flags().StringP("due", "d", "", "due date (today, tomorrow, this-week, next-week, +3d, 2026-02-01, ...)")
	addCmd.Flags().IntP("priority", "p", 0, "priority 1-4 (1 highest, default 4)")
	addCmd.Flags().String("project", "", "project name or id (default Inbox)")
	addCmd.Flags().StringSlice("tag", nil, "tag name (repeatable; missing tags are created)")
	addCmd.Flags().StringP("notes", "n", "", "notes")
	addCmd.Flags().Bool("favorite", false, "mark as favorite")
	rootCmd.AddCommand(addCmd)
}
