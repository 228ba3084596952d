package service

import "github.com/templui/filesmanager/internal/model"

type Access int

const (
	Denied Access = iota
	Allowed
)

// Authorize decides whether identity may read file. Public files are readable by anyone,
// private ones only by their owner. identity may be nil for anonymous callers.
func Authorize(identity *model.User, file *model.File) Access {
	if file.IsPublic {
		return Allowed
	}
	if identity != nil && identity.ID == file.UserID {
		return Allowed
	}
	return Denied
}
