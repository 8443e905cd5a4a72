package cmd

import (
	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/output"
)

var completeCmd = &cobra.Command{
	Use:     "complete <task-id>...",
	Aliases: []string{"done"},
	Short:   "Mark tasks as completed",
	GroupID: "tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		for _, id := range args {
			task, err := env.Store.GetTask(id)
			if err != nil {
				output.Error("%s: %v", id, err)
				return err
			}
			if task.Completed {
				output.Info("%s is already completed", task.ID)
				continue
			}
			snapshot := *task
			task.Completed = true
			if err := env.Store.UpdateTask(task); err != nil {
				output.Error("%v", err)
				return err
			}
			saveUndo(env.Store, "complete", snapshot)
			output.Success("Completed: %s", task.Title)
		}
		return nil
	},
}

var uncompleteCmd = &cobra.Command{
	Use:     "uncomplete <task-id>...",
	Aliases: []string{"reopen"},
	Short:   "Mark completed tasks as open again",
	GroupID: "tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		for _, id := range args {
			task, err := env.Store.GetTask(id)
			if err != nil {
				output.Error("%s: %v", id, err)
				return err
			}
			if !task.Completed {
				output.Info("%s is not completed", task.ID)
				continue
			}
			task.Completed = false
			if err := env.Store.UpdateTask(task); err != nil {
				output.Error("%v", err)
				return err
			}
			// Reopening is itself a new mutation, so any pending undo
			// for this task no longer applies.
			if state, _ := loadUndo(env.Store); state != nil && state.Task.ID == task.ID {
				clearUndo(env.Store)
			}
			output.Success("Reopened: %s", task.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(uncompleteCmd)
}
