package model

import (
	"fmt"
	"time"
)

type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// RootParentID is the parent of records that live at the top of a user's tree.
const RootParentID = "0"

// ThumbnailWidths are generated in this order for every uploaded image.
var ThumbnailWidths = []int{500, 250, 100}

type File struct {
	ID        string    `db:"id" bson:"-"`
	UserID    string    `db:"user_id" bson:"userId"`
	Name      string    `db:"name" bson:"name"`
	Type      FileType  `db:"type" bson:"type"`
	IsPublic  bool      `db:"is_public" bson:"isPublic"`
	ParentID  string    `db:"parent_id" bson:"parentId"`
	LocalPath string    `db:"local_path" bson:"localPath,omitempty"` // Empty for folders, never sent to clients
	CreatedAt time.Time `db:"created_at" bson:"createdAt"`
}

func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}

func (f *File) IsImage() bool {
	return f.Type == FileTypeImage
}

func (f *File) AtRoot() bool {
	return f.ParentID == RootParentID
}

// VariantPath returns where the thumbnail of the given width is stored.
func VariantPath(path string, width int) string {
	return fmt.Sprintf("%s_%d", path, width)
}

// IsThumbnailWidth reports whether size names one of the generated widths.
func IsThumbnailWidth(size string) (int, bool) {
	for _, w := range ThumbnailWidths {
		if size == fmt.Sprint(w) {
			return w, true
		}
	}
	return 0, false
}
