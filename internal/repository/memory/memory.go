// Package memory implements the metadata repositories in process memory. Records keep
// insertion order, which is the native order FindMany returns them in.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
)

// NewStore returns an empty in-memory metadata store.
func NewStore() *repository.Store {
	return &repository.Store{
		Files: NewFileStore(),
		Users: NewUserStore(),
		Ping:  func(ctx context.Context) error { return nil },
		Close: func() error { return nil },
	}
}

type FileStore struct {
	mu    sync.RWMutex
	files []*model.File
}

func NewFileStore() *FileStore {
	return &FileStore{}
}

func matches(f repository.FileFilter, file *model.File) bool {
	return (f.ID == "" || f.ID == file.ID) &&
		(f.UserID == "" || f.UserID == file.UserID) &&
		(f.ParentID == "" || f.ParentID == file.ParentID) &&
		(f.Type == "" || f.Type == file.Type)
}

func (s *FileStore) Insert(ctx context.Context, file *model.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	stored := *file
	s.mu.Lock()
	s.files = append(s.files, &stored)
	s.mu.Unlock()
	return nil
}

func (s *FileStore) FindOne(ctx context.Context, f repository.FileFilter) (*model.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, file := range s.files {
		if matches(f, file) {
			found := *file
			return &found, nil
		}
	}
	return nil, repository.ErrFileNotFound
}

func (s *FileStore) FindMany(ctx context.Context, f repository.FileFilter, skip, limit int) ([]*model.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := []*model.File{}
	for _, file := range s.files {
		if !matches(f, file) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if limit > 0 && len(files) == limit {
			break
		}
		found := *file
		files = append(files, &found)
	}
	return files, nil
}

func (s *FileStore) UpdateOne(ctx context.Context, f repository.FileFilter, patch repository.FilePatch) (*model.File, error) {
	if f.ID == "" {
		return nil, repository.ErrFileNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range s.files {
		if !matches(f, file) {
			continue
		}
		if patch.IsPublic != nil {
			file.IsPublic = *patch.IsPublic
		}
		updated := *file
		return &updated, nil
	}
	return nil, repository.ErrFileNotFound
}

func (s *FileStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.files)), nil
}

type UserStore struct {
	mu    sync.RWMutex
	users []*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	s.users = append(s.users, &stored)
	return nil
}

func (s *UserStore) find(match func(*model.User) bool) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *UserStore) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.ID == id })
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Email == email })
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
