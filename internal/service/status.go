package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/filesmanager/internal/repository"
)

// HealthCheck reports whether a backing service answers.
type HealthCheck func(ctx context.Context) error

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

type StatusService struct {
	store  *repository.Store
	checks map[string]HealthCheck
}

// NewStatusService reports on the metadata store as "db" plus any extra named checks.
func NewStatusService(store *repository.Store, checks map[string]HealthCheck) *StatusService {
	all := map[string]HealthCheck{"db": store.Ping}
	for name, check := range checks {
		all[name] = check
	}
	return &StatusService{store: store, checks: all}
}

// Status runs every health check and reports which ones succeeded.
func (s *StatusService) Status(ctx context.Context) map[string]bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := make(map[string]bool, len(s.checks))
	for name, check := range s.checks {
		err := check(ctx)
		if err != nil {
			slog.Warn("health check failed", "check", name, "error", err)
		}
		status[name] = err == nil
	}
	return status
}

func (s *StatusService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.store.Users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	files, err := s.store.Files.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	return &Stats{Users: users, Files: files}, nil
}
