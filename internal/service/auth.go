package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/session"
)

type AuthService struct {
	sessions       session.Store
	userRepository repository.UserRepository
}

func NewAuthService(sessions session.Store, userRepository repository.UserRepository) *AuthService {
	return &AuthService{
		sessions:       sessions,
		userRepository: userRepository,
	}
}

// Identify resolves a session token to its user. Any failure to do so is ErrUnauthenticated
// except backend errors, which are returned wrapped.
func (s *AuthService) Identify(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := s.sessions.UserID(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	user, err := s.userRepository.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
