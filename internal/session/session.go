// Package session resolves opaque session tokens to user ids. Sessions are written by
// whatever issues them; this package only reads.
package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	// UserID returns the id of the user owning token or ErrNotFound.
	UserID(ctx context.Context, token string) (string, error)
}
