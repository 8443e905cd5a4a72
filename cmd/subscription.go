package cmd

import (
	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/billing"
	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/output"
)

var subscriptionCmd = &cobra.Command{
	Use:     "subscription",
	Aliases: []string{"sub"},
	Short:   "View and manage your subscription",
	GroupID: "billing",
}

var subscriptionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current subscription state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		proj, err := env.Billing.Current(env.UserID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return output.JSON(proj)
		}
		output.Info("%s", output.SubscriptionSummary(proj))
		return nil
	},
}

var subscriptionCheckoutCmd = &cobra.Command{
	Use:     "checkout",
	Aliases: []string{"subscribe"},
	Short:   "Start a checkout and print the approval link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		plan, _ := cmd.Flags().GetString("plan")
		planType := models.NormalizePlanType(plan)
		if !models.IsValidPlanType(planType) {
			output.Error("invalid plan %q (want monthly or yearly)", plan)
			return cmd.Help()
		}

		checkout, err := env.Billing.StartCheckout(env.UserID, planType)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Checkout started for the %s plan", planType)
		output.Info("Approve the subscription here: %s", checkout.ApprovalURL)
		output.Info("Then run: taskpro subscription activate --subscription-id %s", checkout.SubscriptionID)
		return nil
	},
}

var subscriptionActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Activate an approved subscription",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		subID, _ := cmd.Flags().GetString("subscription-id")
		plan, _ := cmd.Flags().GetString("plan")
		outcome, err := env.Billing.Activate(env.UserID, subID, models.NormalizePlanType(plan))
		if err != nil {
			output.Error("%v", err)
			return err
		}
		switch outcome {
		case billing.ReturnDuplicate:
			output.Info("Activation for %s is already in progress", subID)
		default:
			proj, err := env.Billing.Current(env.UserID)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			output.Success("Subscription activated")
			output.Info("%s", output.SubscriptionSummary(proj))
		}
		return nil
	},
}

var subscriptionCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the subscription; access remains until the period ends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		reason, _ := cmd.Flags().GetString("reason")
		if err := env.Billing.Cancel(env.UserID, reason); err != nil {
			output.Error("%v", err)
			return err
		}
		proj, err := env.Billing.Current(env.UserID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Subscription canceled")
		output.Info("%s", output.SubscriptionSummary(proj))
		return nil
	},
}

func init() {
	subscriptionStatusCmd.Flags().Bool("json", false, "output as JSON")
	subscriptionCheckoutCmd.Flags().String("plan", "monthly", "plan to subscribe to: monthly or yearly")
	subscriptionActivateCmd.Flags().String("subscription-id", "", "provider subscription id from checkout")
	subscriptionActivateCmd.Flags().String("plan", "", "plan hint when the provider plan is unrecognized")
	_ = subscriptionActivateCmd.MarkFlagRequired("subscription-id")
	subscriptionCancelCmd.Flags().String("reason", "", "cancellation reason sent to the provider")
	subscriptionCmd.AddCommand(subscriptionStatusCmd)
	subscriptionCmd.AddCommand(subscriptionCheckoutCmd)
	subscriptionCmd.AddCommand(subscriptionActivateCmd)
	subscriptionCmd.AddCommand(subscriptionCancelCmd)
	rootCmd.AddCommand(subscriptionCmd)
}
