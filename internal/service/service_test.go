package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/repository/memory"
	"github.com/templui/filesmanager/internal/storage"
)

type recordedJob struct {
	Queue   string
	Payload any
}

type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []recordedJob
	err  error
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, name string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, recordedJob{Queue: name, Payload: payload})
	return nil
}

type fixture struct {
	store    *repository.Store
	storage  *storage.LocalStorage
	enqueuer *recordingEnqueuer
	files    *FileService
	users    *UserService
	bob      *model.User
	alice    *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		store:    memory.NewStore(),
		storage:  s,
		enqueuer: &recordingEnqueuer{},
	}
	f.files = NewFileService(f.store.Files, f.storage, f.enqueuer)
	f.users = NewUserService(f.store.Users, f.enqueuer)

	f.bob = &model.User{Email: "bob@dylan.com", PasswordHash: "x"}
	require.NoError(t, f.store.Users.Create(ctx, f.bob))
	f.alice = &model.User{Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, f.store.Users.Create(ctx, f.alice))
	return f
}

func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	folder, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)
	file, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "a.txt", Type: "file", Data: b64([]byte("a"))})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  UploadRequest
		want error
	}{
		{"missing name", UploadRequest{Type: "file", Data: b64([]byte("a"))}, ErrMissingName},
		{"missing type", UploadRequest{Name: "a.txt", Data: b64([]byte("a"))}, ErrMissingType},
		{"unknown type", UploadRequest{Name: "a.txt", Type: "video", Data: b64([]byte("a"))}, ErrMissingType},
		{"missing data", UploadRequest{Name: "a.txt", Type: "file"}, ErrMissingData},
		{"invalid base64", UploadRequest{Name: "a.txt", Type: "file", Data: "%%%"}, ErrInvalidData},
		{"unknown parent", UploadRequest{Name: "a.txt", Type: "file", Data: b64([]byte("a")), ParentID: "nope"}, ErrParentNotFound},
		{"parent is a file", UploadRequest{Name: "b.txt", Type: "file", Data: b64([]byte("b")), ParentID: file.ID}, ErrInvalidParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.files.Upload(ctx, f.bob, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.files.Upload(ctx, nil, UploadRequest{Name: "x", Type: "folder"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("folder owned by someone else is a valid parent", func(t *testing.T) {
		child, err := f.files.Upload(ctx, f.alice, UploadRequest{Name: "c.txt", Type: "file", Data: b64([]byte("c")), ParentID: folder.ID})
		require.NoError(t, err)
		assert.Equal(t, folder.ID, child.ParentID)
	})
}

func TestUploadFolderHasNoBlob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	folder, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "Photos", Type: "folder"})
	require.NoError(t, err)
	assert.Empty(t, folder.LocalPath)
	assert.Equal(t, model.RootParentID, folder.ParentID)
	assert.False(t, folder.IsPublic)
	assert.Empty(t, f.enqueuer.jobs)

	_, err = f.files.Fetch(ctx, f.bob, folder.ID, "")
	assert.ErrorIs(t, err, ErrFolderHasNoContent)
}

func TestUploadFileStoresBytes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "hello.txt", Type: "file", Data: b64([]byte("Hello Webstack!\n"))})
	require.NoError(t, err)
	require.NotEmpty(t, file.LocalPath)

	data, err := f.storage.Read(ctx, file.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "Hello Webstack!\n", string(data))
	assert.Empty(t, f.enqueuer.jobs, "plain files get no thumbnail job")

	content, err := f.files.Fetch(ctx, f.bob, file.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Hello Webstack!\n", string(content.Data))
	assert.Equal(t, "hello.txt", content.Name)
}

func TestUploadEnqueueFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.enqueuer.err = queue.ErrClosed

	img, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "cat.png", Type: "image", Data: b64(tinyPNG(t))})
	require.NoError(t, err)

	_, err = f.store.Files.FindOne(ctx, repository.FileFilter{ID: img.ID})
	require.NoError(t, err)
}

// Photos folder with cat.png inside, thumbnails pending, then made public.
func TestPhotosScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	photos, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "Photos", Type: "folder"})
	require.NoError(t, err)

	cat, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "cat.png", Type: "image", ParentID: photos.ID, Data: b64(tinyPNG(t))})
	require.NoError(t, err)
	assert.Equal(t, photos.ID, cat.ParentID)

	require.Len(t, f.enqueuer.jobs, 1)
	assert.Equal(t, queue.FileQueue, f.enqueuer.jobs[0].Queue)
	assert.Equal(t, model.ThumbnailJob{UserID: f.bob.ID, FileID: cat.ID}, f.enqueuer.jobs[0].Payload)

	listed, err := f.files.List(ctx, f.bob, photos.ID, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, cat.ID, listed[0].ID)

	root, err := f.files.List(ctx, f.bob, "", 0)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, photos.ID, root[0].ID)

	// Before the worker ran the variant does not exist yet
	_, err = f.files.Fetch(ctx, f.bob, cat.ID, "100")
	assert.ErrorIs(t, err, ErrNotFound)

	content, err := f.files.Fetch(ctx, f.bob, cat.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", content.ContentType)

	// Private: strangers and other users see nothing
	_, err = f.files.Fetch(ctx, nil, cat.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.files.Fetch(ctx, f.alice, cat.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)

	published, err := f.files.Publish(ctx, f.bob, cat.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)

	_, err = f.files.Fetch(ctx, nil, cat.ID, "")
	assert.NoError(t, err)
}

func TestFetchUsesVariantForKnownSizes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	img, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "cat.png", Type: "image", Data: b64(tinyPNG(t))})
	require.NoError(t, err)
	require.NoError(t, f.storage.Write(ctx, model.VariantPath(img.LocalPath, 250), []byte("small")))

	content, err := f.files.Fetch(ctx, f.bob, img.ID, "250")
	require.NoError(t, err)
	assert.Equal(t, "small", string(content.Data))

	// Unknown sizes fall back to the original
	content, err = f.files.Fetch(ctx, f.bob, img.ID, "42")
	require.NoError(t, err)
	assert.Equal(t, tinyPNG(t), content.Data)

	_, err = f.files.Fetch(ctx, f.bob, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccessMatrix(t *testing.T) {
	owner := &model.User{ID: "owner"}
	other := &model.User{ID: "other"}

	tests := []struct {
		name     string
		identity *model.User
		public   bool
		want     Access
	}{
		{"owner private", owner, false, Allowed},
		{"owner public", owner, true, Allowed},
		{"other private", other, false, Denied},
		{"other public", other, true, Allowed},
		{"anonymous private", nil, false, Denied},
		{"anonymous public", nil, true, Allowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &model.File{UserID: "owner", IsPublic: tt.public}
			assert.Equal(t, tt.want, Authorize(tt.identity, file))
		})
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := range 25 {
		_, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: fmt.Sprintf("f%02d.txt", i), Type: "file", Data: b64([]byte("x"))})
		require.NoError(t, err)
	}
	_, err := f.files.Upload(ctx, f.alice, UploadRequest{Name: "alice.txt", Type: "file", Data: b64([]byte("x"))})
	require.NoError(t, err)

	page0, err := f.files.List(ctx, f.bob, "0", 0)
	require.NoError(t, err)
	assert.Len(t, page0, PageSize)
	assert.Equal(t, "f00.txt", page0[0].Name)

	page1, err := f.files.List(ctx, f.bob, "0", 1)
	require.NoError(t, err)
	assert.Len(t, page1, 5)
	assert.Equal(t, "f20.txt", page1[0].Name)

	page2, err := f.files.List(ctx, f.bob, "0", 2)
	require.NoError(t, err)
	assert.Empty(t, page2)

	negative, err := f.files.List(ctx, f.bob, "0", -3)
	require.NoError(t, err)
	assert.Equal(t, page0, negative)

	_, err = f.files.List(ctx, nil, "0", 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSetPublic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "a.txt", Type: "file", Data: b64([]byte("a"))})
	require.NoError(t, err)

	for range 2 {
		updated, err := f.files.Publish(ctx, f.bob, file.ID)
		require.NoError(t, err)
		assert.True(t, updated.IsPublic)
	}

	for range 2 {
		updated, err := f.files.Unpublish(ctx, f.bob, file.ID)
		require.NoError(t, err)
		assert.False(t, updated.IsPublic)
	}

	_, err = f.files.Publish(ctx, f.alice, file.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.files.Publish(ctx, nil, file.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.files.SetPublic(ctx, f.bob, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShowIsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "a.txt", Type: "file", Data: b64([]byte("a")), IsPublic: true})
	require.NoError(t, err)

	shown, err := f.files.Show(ctx, f.bob, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", shown.Name)

	_, err = f.files.Show(ctx, f.alice, file.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.files.Show(ctx, nil, file.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestEmptyIDMatchesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	public, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "a.txt", Type: "file", Data: b64([]byte("a")), IsPublic: true})
	require.NoError(t, err)
	private, err := f.files.Upload(ctx, f.bob, UploadRequest{Name: "b.txt", Type: "file", Data: b64([]byte("b"))})
	require.NoError(t, err)

	_, err = f.files.Show(ctx, f.bob, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.files.Fetch(ctx, nil, "", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.files.Publish(ctx, f.bob, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.files.Unpublish(ctx, f.bob, "")
	assert.ErrorIs(t, err, ErrNotFound)

	// Neither record was touched
	found, err := f.files.Show(ctx, f.bob, public.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPublic)
	found, err = f.files.Show(ctx, f.bob, private.ID)
	require.NoError(t, err)
	assert.False(t, found.IsPublic)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("cat.png"))
	assert.Equal(t, "image/jpeg", ContentType("cat.JPG"))
	assert.Equal(t, "application/octet-stream", ContentType("README"))
}
