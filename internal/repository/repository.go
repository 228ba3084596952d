package repository

import (
	"context"
	"errors"

	"github.com/templui/filesmanager/internal/model"
)

var (
	ErrFileNotFound   = errors.New("file not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// FileFilter selects file records. Zero-valued fields match anything.
type FileFilter struct {
	ID       string
	UserID   string
	ParentID string
	Type     model.FileType
}

// FilePatch lists the mutable fields of a file record. Nil fields are left untouched.
type FilePatch struct {
	IsPublic *bool
}

func (p FilePatch) Empty() bool {
	return p.IsPublic == nil
}

type FileRepository interface {
	// Insert stores the record and sets its ID and CreatedAt.
	Insert(ctx context.Context, file *model.File) error
	// FindOne returns the first record matching the filter or ErrFileNotFound.
	FindOne(ctx context.Context, filter FileFilter) (*model.File, error)
	// FindMany returns at most limit records matching the filter, skipping the first skip,
	// in the store's native order.
	FindMany(ctx context.Context, filter FileFilter, skip, limit int) ([]*model.File, error)
	// UpdateOne atomically applies the patch to the record with filter.ID, if it also matches
	// the other fields, and returns the updated record. A filter without an ID matches nothing.
	UpdateOne(ctx context.Context, filter FileFilter, patch FilePatch) (*model.File, error)
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Count(ctx context.Context) (int64, error)
}

// Store bundles the repositories of one metadata backend.
type Store struct {
	Files FileRepository
	Users UserRepository
	Ping  func(ctx context.Context) error
	Close func() error
}
