package service

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// RequestError is an input error whose message is shown to clients as is.
// Every RequestError matches ErrInvalidRequest.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

var (
	ErrMissingName        = &RequestError{Message: "Missing name"}
	ErrMissingType        = &RequestError{Message: "Missing type"}
	ErrMissingData        = &RequestError{Message: "Missing data"}
	ErrInvalidData        = &RequestError{Message: "Invalid data"}
	ErrParentNotFound     = &RequestError{Message: "Parent not found"}
	ErrInvalidParent      = &RequestError{Message: "Parent is not a folder"}
	ErrFolderHasNoContent = &RequestError{Message: "A folder doesn't have content"}
	ErrMissingEmail       = &RequestError{Message: "Missing email"}
	ErrInvalidEmail       = &RequestError{Message: "Invalid email"}
	ErrMissingPassword    = &RequestError{Message: "Missing password"}
	ErrUserExists         = &RequestError{Message: "Already exist"}
)
