package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version string
	baseDir string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "taskpro",
	Short: "Task and project management with filters and subscriptions",
	Long: `taskpro - task and project management from the terminal.

Tasks live in projects (or the Inbox), carry priorities, due dates and tags,
and are queried through saved filters. Paid features ride on a subscription
with a 14-day trial.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)

	rootCmd.Version = "dev"
	cobra.OnInitialize(func() {
		if version != "" {
			rootCmd.Version = version
		}
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Task Commands:"},
		&cobra.Group{ID: "organize", Title: "Organize Commands:"},
		&cobra.Group{ID: "billing", Title: "Billing Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

func initBaseDir() {
	var err error
	baseDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
}

// getBaseDir returns the base directory for the data store
func getBaseDir() string {
	return baseDir
}
