package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
)

func JobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Enqueue and recover background jobs",
	}

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "thumbnail <userId> <fileId>",
		Short: "Enqueue thumbnail generation for an existing image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			job := model.ThumbnailJob{UserID: args[0], FileID: args[1]}

			file, err := app.Store.Files.FindOne(cmd.Context(), repository.FileFilter{ID: job.FileID, UserID: job.UserID})
			if errors.Is(err, repository.ErrFileNotFound) {
				return fmt.Errorf("no file %s owned by %s", job.FileID, job.UserID)
			}
			if err != nil {
				return err
			}
			if !file.IsImage() {
				return fmt.Errorf("file %s is a %s, not an image", file.ID, file.Type)
			}

			if err := app.Queue.Enqueue(cmd.Context(), queue.FileQueue, job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued thumbnails for %s\n", file.ID)
			return nil
		},
	})

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "retry <queue>",
		Short: "Move dead-lettered jobs back onto their queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := checkQueue(name); err != nil {
				return err
			}

			app, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			in, err := inspector(app)
			if err != nil {
				return err
			}

			moved, err := in.RetryFailed(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %d jobs back to %s\n", moved, name)
			return nil
		},
	})

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "recover <queue>",
		Short: "Requeue jobs left in progress by a crashed worker (stop the workers first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := checkQueue(name); err != nil {
				return err
			}

			app, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			in, err := inspector(app)
			if err != nil {
				return err
			}

			moved, err := in.Recover(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recovered %d jobs on %s\n", moved, name)
			return nil
		},
	})

	return jobsCmd
}

func checkQueue(name string) error {
	if name != queue.FileQueue && name != queue.UserQueue {
		return fmt.Errorf("unknown queue %q (want %s or %s)", name, queue.FileQueue, queue.UserQueue)
	}
	return nil
}
