package cmd

import (
	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/output"
)

var undoCmd = &cobra.Command{
	Use:     "undo",
	Short:   "Reverse the most recent complete or delete",
	GroupID: "tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		state, err := loadUndo(env.Store)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if state == nil {
			output.Info("Nothing to undo")
			return nil
		}

		switch state.Action {
		case "complete":
			task, err := env.Store.GetTask(state.Task.ID)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			task.Completed = state.Task.Completed
			if err := env.Store.UpdateTask(task); err != nil {
				output.Error("%v", err)
				return err
			}
			output.Success("Reopened: %s", task.Title)
		case "delete":
			task := state.Task
			if err := env.Store.CreateTask(&task); err != nil {
				output.Error("%v", err)
				return err
			}
			output.Success("Restored: %s", task.Title)
		default:
			output.Info("Nothing to undo")
		}

		clearUndo(env.Store)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(undoCmd)
}
