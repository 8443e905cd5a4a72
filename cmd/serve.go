package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskpro/taskpro/internal/api"
	"github.com/taskpro/taskpro/internal/output"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the HTTP API server",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = env.Config.ListenAddr()
		}

		// Keep the caches honest while the server is running: task events
		// invalidate task views, subscription events refresh the projection.
		taskEvents, stopTasks := env.Store.Feed().Subscribe("tasks", env.UserID)
		defer stopTasks()
		go env.Cache.Watch(taskEvents)

		subEvents, stopSubs := env.Store.Feed().Subscribe("subscriptions", env.UserID)
		defer stopSubs()
		go env.Billing.Watch(subEvents)

		server := api.NewServer(api.Config{
			ListenAddr:    addr,
			AdminToken:    env.Config.Serve.AdminToken,
			DefaultUserID: env.UserID,
		}, env.Store, env.Billing)

		if err := server.Start(); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Info("Listening on %s", addr)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			output.Error("shutdown: %v", err)
			return err
		}
		output.Info("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (defaults to config)")
	rootCmd.AddCommand(serveCmd)
}
