package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/templui/filesmanager/cmd/filesctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "filesctl",
		Short:        "Operator tools for the files manager",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.StatsCmd())
	rootCmd.AddCommand(cmd.JobsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
