package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/output"
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	Short:   "Manage tags",
	GroupID: "organize",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		color, _ := cmd.Flags().GetString("color")
		tag := &models.Tag{UserID: env.UserID, Name: args[0], Color: color}
		if err := env.Store.CreateTag(tag); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Created tag %s (%s)", tag.Name, tag.ID)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tags",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		tags, err := env.Store.ListTags(env.UserID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return output.JSON(tags)
		}
		if len(tags) == 0 {
			output.Info("No tags")
			return nil
		}
		for _, t := range tags {
			output.Info("%s  %s", t.Name, t.ID)
		}
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:     "delete <tag>",
	Aliases: []string{"rm"},
	Short:   "Delete a tag and detach it from tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		tags, err := env.Store.ListTags(env.UserID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		var id string
		for _, t := range tags {
			if t.ID == args[0] || t.Name == args[0] {
				id = t.ID
				break
			}
		}
		if id == "" {
			err := fmt.Errorf("tag %q not found", args[0])
			output.Error("%v", err)
			return err
		}
		if err := env.Store.DeleteTag(env.UserID, id); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Deleted tag %s", args[0])
		return nil
	},
}

func init() {
	tagAddCmd.Flags().String("color", "", "display color")
	tagListCmd.Flags().Bool("json", false, "output as JSON")
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)
}
