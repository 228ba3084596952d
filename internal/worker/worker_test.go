package worker

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/repository/memory"
	"github.com/templui/filesmanager/internal/storage"
	"github.com/templui/filesmanager/internal/thumbnail"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) SendWelcomeEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type fixture struct {
	store   *repository.Store
	storage *storage.LocalStorage
	mailer  *recordingMailer
	worker  *Worker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{store: memory.NewStore(), storage: s, mailer: &recordingMailer{}}
	f.worker = New(f.store.Files, f.store.Users, thumbnail.NewGenerator(s), f.mailer)
	return f
}

func (f *fixture) image(t *testing.T, userID string) *model.File {
	t.Helper()
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 600, 300))))

	file := &model.File{
		UserID:    userID,
		Name:      "cat.png",
		Type:      model.FileTypeImage,
		ParentID:  model.RootParentID,
		LocalPath: f.storage.Path("cat-blob"),
	}
	require.NoError(t, f.storage.Write(ctx, file.LocalPath, buf.Bytes()))
	require.NoError(t, f.store.Files.Insert(ctx, file))
	return file
}

func TestProcessThumbnail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.image(t, "u1")

	require.NoError(t, f.worker.ProcessThumbnail(ctx, model.ThumbnailJob{UserID: "u1", FileID: file.ID}))

	for _, width := range model.ThumbnailWidths {
		ok, err := f.storage.Exists(ctx, model.VariantPath(file.LocalPath, width))
		require.NoError(t, err)
		assert.True(t, ok, "width %d", width)
	}

	// A retry finds everything in place
	require.NoError(t, f.worker.ProcessThumbnail(ctx, model.ThumbnailJob{UserID: "u1", FileID: file.ID}))
}

func TestProcessThumbnailErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.image(t, "u1")

	err := f.worker.ProcessThumbnail(ctx, model.ThumbnailJob{UserID: "u1"})
	assert.ErrorIs(t, err, ErrMissingField)

	err = f.worker.ProcessThumbnail(ctx, model.ThumbnailJob{FileID: file.ID})
	assert.ErrorIs(t, err, ErrMissingField)

	err = f.worker.ProcessThumbnail(ctx, model.ThumbnailJob{UserID: "u2", FileID: file.ID})
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestProcessThumbnailInterrupted(t *testing.T) {
	f := newFixture(t)
	file := f.image(t, "u1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.worker.ProcessThumbnail(ctx, model.ThumbnailJob{UserID: "u1", FileID: file.ID})
	require.ErrorIs(t, err, context.Canceled)

	for _, width := range model.ThumbnailWidths {
		ok, err := f.storage.Exists(context.Background(), model.VariantPath(file.LocalPath, width))
		require.NoError(t, err)
		assert.False(t, ok, "width %d", width)
	}
}

func TestProcessWelcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user := &model.User{Email: "bob@dylan.com", PasswordHash: "x"}
	require.NoError(t, f.store.Users.Create(ctx, user))

	require.NoError(t, f.worker.ProcessWelcome(ctx, model.WelcomeJob{UserID: user.ID}))
	assert.Equal(t, []string{"bob@dylan.com"}, f.mailer.Sent())

	assert.ErrorIs(t, f.worker.ProcessWelcome(ctx, model.WelcomeJob{}), ErrMissingField)
	assert.ErrorIs(t, f.worker.ProcessWelcome(ctx, model.WelcomeJob{UserID: "missing"}), ErrUserNotFound)
}

func TestRegisterConsumesQueues(t *testing.T) {
	f := newFixture(t)
	file := f.image(t, "u1")

	user := &model.User{Email: "bob@dylan.com", PasswordHash: "x"}
	require.NoError(t, f.store.Users.Create(context.Background(), user))

	q := queue.NewMemoryQueue(queue.Options{Concurrency: 1, MaxAttempts: 1})
	f.worker.Register(q)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, q.Enqueue(ctx, queue.FileQueue, model.ThumbnailJob{UserID: "u1", FileID: file.ID}))
	require.NoError(t, q.Enqueue(ctx, queue.UserQueue, model.WelcomeJob{UserID: user.ID}))

	require.Eventually(t, func() bool {
		ok, err := f.storage.Exists(ctx, model.VariantPath(file.LocalPath, 100))
		return err == nil && ok && len(f.mailer.Sent()) == 1
	}, 5*time.Second, 10*time.Millisecond)
}
