package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/output"
)

var updateCmd = &cobra.Command{
	Use:     "update <task-id>",
	Aliases: []string{"edit"},
	Short:   "Update a task's fields",
	GroupID: "tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		task, err := env.Store.GetTask(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if cmd.Flags().Changed("title") {
			task.Title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("notes") {
			task.Notes, _ = cmd.Flags().GetString("notes")
		}
		if cmd.Flags().Changed("priority") {
			task.Priority, _ = cmd.Flags().GetInt("priority")
		}
		if cmd.Flags().Changed("favorite") {
			task.Favorite, _ = cmd.Flags().GetBool("favorite")
		}
		if cmd.Flags().Changed("due") {
			due, _ := cmd.Flags().GetString("due")
			if due == "none" {
				task.DueDate = nil
			} else {
				t, err := parseDueFlag(due)
				if err != nil {
					output.Error("%v", err)
					return err
				}
				task.DueDate = t
				task.AllDay = true
			}
		}
		if cmd.Flags().Changed("project") {
			project, _ := cmd.Flags().GetString("project")
			id, err := resolveProject(env, project)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			task.ProjectID = id
		}
		if cmd.Flags().Changed("tag") {
			tags, _ := cmd.Flags().GetStringSlice("tag")
			ids, err := resolveTags(env, tags)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			task.TagIDs = ids
		}

		if err := env.Store.UpdateTask(task); err != nil {
			output.Error("%v", err)
			return err
		}

		// Any new mutation invalidates a pending undo for this task.
		if state, _ := loadUndo(env.Store); state != nil && state.Task.ID == task.ID {
			clearUndo(env.Store)
		}

		output.Success("Updated %s", task.ID)
		projectNames, _ := env.Store.ProjectNames(env.UserID)
		output.Info("%s", output.TaskLine(task, projectNames, time.Now()))
		return nil
	},
}

func init() {
	updateCmd.Flags().StringP("title", "t", "", "new title")
	updateCmd.Flags().StringP("notes", "n", "", "new notes")
	updateCmd.Flags().IntP("priority", "p", 0, "priority 1-4")
	updateCmd.Flags().StringP("due", "d", "", "due date, or 'none' to clear")
	updateCmd.Flags().String("project", "", "project name or id; 'inbox' moves to Inbox")
	updateCmd.Flags().StringSlice("tag", nil, "replace tags (repeatable)")
	updateCmd.Flags().Bool("favorite", false, "favorite flag")
	rootCmd.AddCommand(updateCmd)
}
