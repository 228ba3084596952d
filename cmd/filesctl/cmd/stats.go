package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/filesmanager/internal/queue"
)

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print record counts, backend health and queue depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.StatusService.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "users: %d\nfiles: %d\n", stats.Users, stats.Files)

			for name, ok := range app.StatusService.Status(cmd.Context()) {
				fmt.Fprintf(out, "%s alive: %t\n", name, ok)
			}

			in, err := inspector(app)
			if err != nil {
				return err
			}
			for _, name := range []string{queue.FileQueue, queue.UserQueue} {
				waiting, failed, err := in.Counts(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d waiting, %d failed\n", name, waiting, failed)
			}
			return nil
		},
	}
}
