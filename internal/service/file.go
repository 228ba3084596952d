package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/storage"
	"github.com/templui/filesmanager/internal/validation"
)

const PageSize = 20

type UploadRequest struct {
	Name     string
	Type     string
	ParentID string // Empty means the root
	IsPublic bool
	Data     string // Base64, required unless Type is folder
}

type FileContent struct {
	Name        string
	ContentType string
	Data        []byte
}

type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
	enqueuer queue.Enqueuer
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage, enqueuer queue.Enqueuer) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
		enqueuer: enqueuer,
	}
}

// Upload validates the request, stores the bytes of files and images, and records the
// metadata. Images get a thumbnail job once their record exists.
func (s *FileService) Upload(ctx context.Context, identity *model.User, req UploadRequest) (*model.File, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	if err := validation.ValidateUpload(validation.Upload{Name: req.Name, Type: req.Type, Data: req.Data}); err != nil {
		switch {
		case errors.Is(err, validation.ErrMissingName):
			return nil, ErrMissingName
		case errors.Is(err, validation.ErrMissingType):
			return nil, ErrMissingType
		case errors.Is(err, validation.ErrMissingData):
			return nil, ErrMissingData
		}
		return nil, fmt.Errorf("failed to validate upload: %w", err)
	}

	parentID := req.ParentID
	if parentID == "" {
		parentID = model.RootParentID
	}

	if parentID != model.RootParentID {
		parent, err := s.fileRepo.FindOne(ctx, repository.FileFilter{ID: parentID})
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, ErrInvalidParent
		}
	}

	file := &model.File{
		UserID:   identity.ID,
		Name:     req.Name,
		Type:     model.FileType(req.Type),
		IsPublic: req.IsPublic,
		ParentID: parentID,
	}

	if file.IsFolder() {
		if err := s.fileRepo.Insert(ctx, file); err != nil {
			return nil, fmt.Errorf("failed to create folder: %w", err)
		}
		return file, nil
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, ErrInvalidData
	}

	file.LocalPath = s.storage.Path(uuid.New().String())
	if err := s.storage.Write(ctx, file.LocalPath, data); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	if err := s.fileRepo.Insert(ctx, file); err != nil {
		slog.Error("orphaned blob after failed insert", "path", file.LocalPath, "error", err)
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	if file.IsImage() {
		job := model.ThumbnailJob{UserID: file.UserID, FileID: file.ID}
		if err := s.enqueuer.Enqueue(ctx, queue.FileQueue, job); err != nil {
			slog.Error("failed to enqueue thumbnail job", "file_id", file.ID, "error", err)
		}
	}

	return file, nil
}

// Show returns the metadata of a file owned by identity.
func (s *FileService) Show(ctx context.Context, identity *model.User, id string) (*model.File, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if id == "" {
		return nil, ErrNotFound
	}

	file, err := s.fileRepo.FindOne(ctx, repository.FileFilter{ID: id, UserID: identity.ID})
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

// List returns one page of the files identity owns below parentID.
func (s *FileService) List(ctx context.Context, identity *model.User, parentID string, page int) ([]*model.File, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if parentID == "" {
		parentID = model.RootParentID
	}
	if page < 0 {
		page = 0
	}

	files, err := s.fileRepo.FindMany(ctx, repository.FileFilter{UserID: identity.ID, ParentID: parentID}, page*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// SetPublic sets the visibility of a file owned by identity. Repeating a call is a no-op.
func (s *FileService) SetPublic(ctx context.Context, identity *model.User, id string, value bool) (*model.File, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if id == "" {
		return nil, ErrNotFound
	}

	file, err := s.fileRepo.UpdateOne(ctx,
		repository.FileFilter{ID: id, UserID: identity.ID},
		repository.FilePatch{IsPublic: &value},
	)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update file: %w", err)
	}
	return file, nil
}

func (s *FileService) Publish(ctx context.Context, identity *model.User, id string) (*model.File, error) {
	return s.SetPublic(ctx, identity, id, true)
}

func (s *FileService) Unpublish(ctx context.Context, identity *model.User, id string) (*model.File, error) {
	return s.SetPublic(ctx, identity, id, false)
}

// Fetch returns the bytes of a file or of one of its thumbnails. identity may be nil.
// Files the caller may not read are reported as ErrNotFound.
func (s *FileService) Fetch(ctx context.Context, identity *model.User, id, size string) (*FileContent, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	file, err := s.fileRepo.FindOne(ctx, repository.FileFilter{ID: id})
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	if Authorize(identity, file) == Denied {
		return nil, ErrNotFound
	}

	if file.IsFolder() {
		return nil, ErrFolderHasNoContent
	}

	path := file.LocalPath
	if width, ok := model.IsThumbnailWidth(size); ok {
		path = model.VariantPath(path, width)
	}

	data, err := s.storage.Read(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &FileContent{
		Name:        file.Name,
		ContentType: ContentType(file.Name),
		Data:        data,
	}, nil
}

// ContentType derives the media type from the extension of name.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
