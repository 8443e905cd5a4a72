package cmd

import (
	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/output"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <task-id>...",
	Aliases: []string{"rm"},
	Short:   "Delete tasks",
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
			snapshot := *task
			if err := env.Store.DeleteTask(env.UserID, task.ID); err != nil {
				output.Error("%v", err)
				return err
			}
			saveUndo(env.Store, "delete", snapshot)
			output.Success("Deleted: %s", task.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
