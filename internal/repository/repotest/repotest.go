// Package repotest holds the behaviour every metadata backend must share, run against
// each backend from its own tests.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
)

// Run exercises a fresh store returned by newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) *repository.Store) {
	t.Run("InsertAndFind", func(t *testing.T) { testInsertAndFind(t, newStore(t)) })
	t.Run("FindMany", func(t *testing.T) { testFindMany(t, newStore(t)) })
	t.Run("UpdateOne", func(t *testing.T) { testUpdateOne(t, newStore(t)) })
	t.Run("ConcurrentUpdates", func(t *testing.T) { testConcurrentUpdates(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
}

func testInsertAndFind(t *testing.T, store *repository.Store) {
	ctx := context.Background()

	folder := &model.File{UserID: "u1", Name: "Photos", Type: model.FileTypeFolder, ParentID: model.RootParentID}
	require.NoError(t, store.Files.Insert(ctx, folder))
	require.NotEmpty(t, folder.ID)

	image := &model.File{UserID: "u1", Name: "cat.png", Type: model.FileTypeImage, ParentID: folder.ID, LocalPath: "/tmp/files_manager/blob"}
	require.NoError(t, store.Files.Insert(ctx, image))

	found, err := store.Files.FindOne(ctx, repository.FileFilter{ID: image.ID})
	require.NoError(t, err)
	assert.Equal(t, "cat.png", found.Name)
	assert.Equal(t, model.FileTypeImage, found.Type)
	assert.Equal(t, folder.ID, found.ParentID)
	assert.Equal(t, "/tmp/files_manager/blob", found.LocalPath)
	assert.False(t, found.IsPublic)

	_, err = store.Files.FindOne(ctx, repository.FileFilter{ID: image.ID, UserID: "u2"})
	assert.ErrorIs(t, err, repository.ErrFileNotFound)

	_, err = store.Files.FindOne(ctx, repository.FileFilter{ID: "does-not-exist"})
	assert.ErrorIs(t, err, repository.ErrFileNotFound)

	found, err = store.Files.FindOne(ctx, repository.FileFilter{UserID: "u1", Type: model.FileTypeFolder})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, found.ID)

	n, err := store.Files.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func testFindMany(t *testing.T, store *repository.Store) {
	ctx := context.Background()

	for i := range 25 {
		require.NoError(t, store.Files.Insert(ctx, &model.File{
			UserID:    "u1",
			Name:      fmt.Sprintf("file-%02d.txt", i),
			Type:      model.FileTypeFile,
			ParentID:  model.RootParentID,
			LocalPath: fmt.Sprintf("/blobs/%d", i),
		}))
	}
	require.NoError(t, store.Files.Insert(ctx, &model.File{UserID: "u2", Name: "other.txt", Type: model.FileTypeFile, ParentID: model.RootParentID}))

	filter := repository.FileFilter{UserID: "u1", ParentID: model.RootParentID}

	first, err := store.Files.FindMany(ctx, filter, 0, 20)
	require.NoError(t, err)
	assert.Len(t, first, 20)

	second, err := store.Files.FindMany(ctx, filter, 20, 20)
	require.NoError(t, err)
	assert.Len(t, second, 5)

	seen := map[string]bool{}
	for _, f := range append(first, second...) {
		assert.Equal(t, "u1", f.UserID)
		assert.False(t, seen[f.ID], "record %s returned twice", f.ID)
		seen[f.ID] = true
	}

	past, err := store.Files.FindMany(ctx, filter, 40, 20)
	require.NoError(t, err)
	assert.NotNil(t, past)
	assert.Empty(t, past)
}

func testUpdateOne(t *testing.T, store *repository.Store) {
	ctx := context.Background()

	file := &model.File{UserID: "u1", Name: "a.txt", Type: model.FileTypeFile, ParentID: model.RootParentID, LocalPath: "/blobs/a"}
	require.NoError(t, store.Files.Insert(ctx, file))

	public := true
	updated, err := store.Files.UpdateOne(ctx, repository.FileFilter{ID: file.ID, UserID: "u1"}, repository.FilePatch{IsPublic: &public})
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)
	assert.Equal(t, "a.txt", updated.Name)

	found, err := store.Files.FindOne(ctx, repository.FileFilter{ID: file.ID})
	require.NoError(t, err)
	assert.True(t, found.IsPublic)

	_, err = store.Files.UpdateOne(ctx, repository.FileFilter{ID: file.ID, UserID: "u2"}, repository.FilePatch{IsPublic: &public})
	assert.ErrorIs(t, err, repository.ErrFileNotFound)

	// Without an id nothing is updated, even when the owner matches
	other := &model.File{UserID: "u1", Name: "b.txt", Type: model.FileTypeFile, ParentID: model.RootParentID}
	require.NoError(t, store.Files.Insert(ctx, other))

	_, err = store.Files.UpdateOne(ctx, repository.FileFilter{UserID: "u1"}, repository.FilePatch{IsPublic: &public})
	assert.ErrorIs(t, err, repository.ErrFileNotFound)
	_, err = store.Files.UpdateOne(ctx, repository.FileFilter{}, repository.FilePatch{IsPublic: &public})
	assert.ErrorIs(t, err, repository.ErrFileNotFound)

	found, err = store.Files.FindOne(ctx, repository.FileFilter{ID: other.ID})
	require.NoError(t, err)
	assert.False(t, found.IsPublic)
}

func testConcurrentUpdates(t *testing.T, store *repository.Store) {
	ctx := context.Background()

	file := &model.File{UserID: "u1", Name: "a.txt", Type: model.FileTypeFile, ParentID: model.RootParentID}
	require.NoError(t, store.Files.Insert(ctx, file))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value := i%2 == 0
			_, err := store.Files.UpdateOne(ctx, repository.FileFilter{ID: file.ID}, repository.FilePatch{IsPublic: &value})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	found, err := store.Files.FindOne(ctx, repository.FileFilter{ID: file.ID})
	require.NoError(t, err)
	assert.Equal(t, "a.txt", found.Name)
}

func testUsers(t *testing.T, store *repository.Store) {
	ctx := context.Background()

	user := &model.User{Email: "bob@dylan.com", PasswordHash: "hash"}
	require.NoError(t, store.Users.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	byID, err := store.Users.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@dylan.com", byID.Email)
	assert.Equal(t, "hash", byID.PasswordHash)

	byEmail, err := store.Users.ByEmail(ctx, "bob@dylan.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	err = store.Users.Create(ctx, &model.User{Email: "bob@dylan.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	_, err = store.Users.ByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	n, err := store.Users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
