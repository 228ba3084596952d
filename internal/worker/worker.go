// Package worker holds the consumers of the background queues.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/thumbnail"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrFileNotFound = errors.New("file not found")
	ErrUserNotFound = errors.New("user not found")
)

type Mailer interface {
	SendWelcomeEmail(ctx context.Context, email string) error
}

type Worker struct {
	files     repository.FileRepository
	users     repository.UserRepository
	generator *thumbnail.Generator
	mailer    Mailer
}

func New(files repository.FileRepository, users repository.UserRepository, generator *thumbnail.Generator, mailer Mailer) *Worker {
	return &Worker{
		files:     files,
		users:     users,
		generator: generator,
		mailer:    mailer,
	}
}

// Register attaches the consumers to their queues.
func (w *Worker) Register(q queue.Queue) {
	q.Process(queue.FileQueue, func(ctx context.Context, job *queue.Job) error {
		var payload model.ThumbnailJob
		if err := job.Decode(&payload); err != nil {
			return fmt.Errorf("failed to decode job: %w", err)
		}
		return w.ProcessThumbnail(ctx, payload)
	})

	q.Process(queue.UserQueue, func(ctx context.Context, job *queue.Job) error {
		var payload model.WelcomeJob
		if err := job.Decode(&payload); err != nil {
			return fmt.Errorf("failed to decode job: %w", err)
		}
		return w.ProcessWelcome(ctx, payload)
	})
}

// ProcessThumbnail derives the variants of one image. Individual widths failing does not
// fail the job, but a job cut short by ctx does so it gets requeued.
func (w *Worker) ProcessThumbnail(ctx context.Context, job model.ThumbnailJob) error {
	if job.FileID == "" {
		return fmt.Errorf("%w: fileId", ErrMissingField)
	}
	if job.UserID == "" {
		return fmt.Errorf("%w: userId", ErrMissingField)
	}

	file, err := w.files.FindOne(ctx, repository.FileFilter{ID: job.FileID, UserID: job.UserID})
	if errors.Is(err, repository.ErrFileNotFound) {
		return ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	result := w.generator.Generate(ctx, file)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("thumbnails interrupted: %w", err)
	}

	slog.Info("thumbnails processed",
		"file_id", file.ID,
		"generated", len(result.Generated),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)
	return nil
}

func (w *Worker) ProcessWelcome(ctx context.Context, job model.WelcomeJob) error {
	if job.UserID == "" {
		return fmt.Errorf("%w: userId", ErrMissingField)
	}

	user, err := w.users.ByID(ctx, job.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return w.mailer.SendWelcomeEmail(ctx, user.Email)
}
