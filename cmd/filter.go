package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taskpro/taskpro/internal/filter"
	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/output"
)

var filterCmd = &cobra.Command{
	Use:     "filter",
	Short:   "Manage saved filters",
	GroupID: "organize",
}

// conditionsFromFlags builds a condition set from the add/update flags.
// A value prefixed with "not:" negates the condition.
func conditionsFromFlags(cmd *cobra.Command, env *appEnv) (models.ConditionSet, error) {
	var cs models.ConditionSet
	cs.Combinator = models.CombinatorAnd
	if logic, _ := cmd.Flags().GetString("logic"); logic != "" {
		cs.Combinator = models.NormalizeCombinator(logic)
	}

	add := func(t models.ConditionType, value string) {
		op := models.OpEquals
		if strings.HasPrefix(value, "not:") {
			op = models.OpNotEquals
			value = strings.TrimPrefix(value, "not:")
		}
		cs.Items = append(cs.Items, models.Condition{Type: t, Operator: op, Value: value})
	}

	if cmd.Flags().Changed("due") {
		v, _ := cmd.Flags().GetString("due")
		add(models.ConditionDue, v)
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetString("priority")
		add(models.ConditionPriority, v)
	}
	if cmd.Flags().Changed("project") {
		v, _ := cmd.Flags().GetString("project")
		neg := strings.HasPrefix(v, "not:")
		name := strings.TrimPrefix(v, "not:")
		id, err := resolveProject(env, name)
		if err != nil {
			return cs, err
		}
		if id == "" {
			id = models.ProjectInbox
		}
		if neg {
			id = "not:" + id
		}
		add(models.ConditionProject, id)
	}
	if cmd.Flags().Changed("completed") {
		v, _ := cmd.Flags().GetString("completed")
		add(models.ConditionCompleted, v)
	}
	if cmd.Flags().Changed("favorite") {
		v, _ := cmd.Flags().GetString("favorite")
		add(models.ConditionFavorite, v)
	}

	return cs, filter.ValidateConditions(cs)
}

func addConditionFlags(fs *pflag.FlagSet) {
	fs.String("due", "", "due condition: today, tomorrow, this_week, next_week or a date")
	fs.String("priority", "", "priority condition: 1-4")
	fs.String("project", "", "project condition: name, id or 'inbox'")
	fs.String("completed", "", "completed condition: true or false")
	fs.String("favorite", "", "favorite condition: true or false")
	fs.String("logic", "and", "combinator for multiple conditions: and, or")
}

var filterAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a saved filter from condition flags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		cs, err := conditionsFromFlags(cmd, env)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if len(cs.Items) == 0 {
			err := fmt.Errorf("a filter needs at least one condition flag")
			output.Error("%v", err)
			return err
		}

		favorite, _ := cmd.Flags().GetBool("star")
		color, _ := cmd.Flags().GetString("color")
		f := &models.Filter{
			UserID:     env.UserID,
			Name:       args[0],
			Conditions: cs,
			Favorite:   favorite,
			Color:      color,
		}
		if err := env.Store.CreateFilter(f); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Created filter %s (%s)", f.Name, f.ID)
		return nil
	},
}

var filterListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved and standard filters",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		filters, err := env.Store.ListFilters(env.UserID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return output.JSON(filters)
		}

		projectNames, _ := env.Store.ProjectNames(env.UserID)
		ectx := &filter.EvalContext{Now: time.Now(), ProjectNames: projectNames}
		for i := range filters {
			f := &filters[i]
			kind := ""
			if f.Standard {
				kind = " (standard)"
			}
			badges := strings.Join(filter.ConditionBadges(ectx, f), ", ")
			output.Info("%s%s  %s  [%s]", f.Name, kind, f.ID, badges)
		}
		return nil
	},
}

var filterShowCmd = &cobra.Command{
	Use:   "show <filter>",
	Short: "Show a filter's conditions and matching tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := lookupFilter(env, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		projectNames, _ := env.Store.ProjectNames(env.UserID)
		now := time.Now()
		ectx := &filter.EvalContext{Now: now, ProjectNames: projectNames}

		output.Info("%s", output.Title(f.Name))
		output.Info("Conditions (%s): %s", f.Conditions.Combinator,
			strings.Join(filter.ConditionBadges(ectx, f), ", "))

		tasks, err := evaluateFilter(env, f)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		for _, task := range tasks {
			output.Info("%s", output.TaskLine(&task, projectNames, now))
		}
		if len(tasks) == 0 {
			output.Info("No matching tasks")
		}
		return nil
	},
}

var filterUpdateCmd = &cobra.Command{
	Use:   "update <filter>",
	Short: "Replace a filter's conditions or rename it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := lookupFilter(env, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if cmd.Flags().Changed("name") {
			f.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("star") {
			f.Favorite, _ = cmd.Flags().GetBool("star")
		}
		if cmd.Flags().Changed("color") {
			f.Color, _ = cmd.Flags().GetString("color")
		}

		cs, err := conditionsFromFlags(cmd, env)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if len(cs.Items) > 0 {
			f.Conditions = cs
		}

		if err := env.Store.UpdateFilter(f); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Updated filter %s", f.Name)
		return nil
	},
}

var filterDeleteCmd = &cobra.Command{
	Use:     "delete <filter>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved filter",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := lookupFilter(env, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if err := env.Store.DeleteFilter(env.UserID, f.ID); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Deleted filter %s", f.Name)
		return nil
	},
}

func init() {
	addConditionFlags(filterAddCmd.Flags())
	filterAddCmd.Flags().Bool("star", false, "mark as favorite")
	filterAddCmd.Flags().String("color", "", "display color")
	filterListCmd.Flags().Bool("json", false, "output as JSON")
	addConditionFlags(filterUpdateCmd.Flags())
	filterUpdateCmd.Flags().String("name", "", "new name")
	filterUpdateCmd.Flags().Bool("star", false, "mark as favorite")
	filterUpdateCmd.Flags().String("color", "", "display color")
	filterCmd.AddCommand(filterAddCmd)
	filterCmd.AddCommand(filterListCmd)
	filterCmd.AddCommand(filterShowCmd)
	filterCmd.AddCommand(filterUpdateCmd)
	filterCmd.AddCommand(filterDeleteCmd)
	rootCmd.AddCommand(filterCmd)
}
