package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/output"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Short:   "Manage projects",
	GroupID: "organize",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		color, _ := cmd.Flags().GetString("color")
		favorite, _ := cmd.Flags().GetBool("favorite")
		project := &models.Project{
			UserID:   env.UserID,
			Name:     args[0],
			Color:    color,
			Favorite: favorite,
		}
		if err := env.Store.CreateProject(project); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Created project %s (%s)", project.Name, project.ID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		projects, err := env.Store.ListProjects(env.UserID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return output.JSON(projects)
		}
		if len(projects) == 0 {
			output.Info("No projects")
			return nil
		}
		for _, p := range projects {
			marker := " "
			if p.Favorite {
				marker = "*"
			}
			output.Info("%s %s  %s  created %s", marker, p.Name, p.ID, output.FormatTimeAgo(p.CreatedAt))
		}
		return nil
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename <project> <new-name>",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		id, err := resolveProject(env, args[0])
		if err == nil && id == "" {
			err = fmt.Errorf("project %q not found", args[0])
		}
		if err != nil {
			output.Error("%v", err)
			return err
		}
		project, err := env.Store.GetProject(id)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		old := project.Name
		project.Name = args[1]
		if err := env.Store.UpdateProject(project); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Renamed %s to %s", old, project.Name)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete <project>",
	Aliases: []string{"rm"},
	Short:   "Delete a project, moving its tasks to the Inbox",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		id, err := resolveProject(env, args[0])
		if err == nil && id == "" {
			err = fmt.Errorf("project %q not found", args[0])
		}
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if err := env.Store.DeleteProject(env.UserID, id); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Deleted project %s; its tasks are in the Inbox", args[0])
		return nil
	},
}

func init() {
	projectAddCmd.Flags().String("color", "", "display color")
	projectAddCmd.Flags().Bool("favorite", false, "mark as favorite")
	projectListCmd.Flags().Bool("json", false, "output as JSON")
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectRenameCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
