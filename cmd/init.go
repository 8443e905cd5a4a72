package cmd

import (
	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/output"
	"github.com/taskpro/taskpro/internal/store"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Initialize a taskpro data store in the current directory",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Initialize(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		output.Success("Initialized taskpro store in %s", getBaseDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
