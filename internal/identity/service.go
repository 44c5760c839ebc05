package identity

import (
	"errors"
	"log/slog"

	"github.com/frahmantamala/claim-management/internal"
)

// RoleProvider is the lookup the claim workflow depends on: given a user id,
// the set of permission tags that user holds.
type RoleProvider interface {
	PermissionsFor(userID int64) ([]string, error)
}

type RepositoryAPI interface {
	GetUserWithPermissions(userID int64) (*User, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// PermissionsFor resolves a user's permission tags. An unknown or inactive
// user yields an empty tag set rather than an error so callers can treat
// "nobody" and "no roles" uniformly; store failures propagate.
func (s *Service) PermissionsFor(userID int64) ([]string, error) {
	user, err := s.repo.GetUserWithPermissions(userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Debug("permission lookup for unknown user", "user_id", userID)
			return nil, nil
		}
		s.logger.Error("failed to load user permissions", "error", err, "user_id", userID)
		return nil, err
	}
	return user.Permissions, nil
}

func (s *Service) GetUser(userID int64) (*User, error) {
	user, err := s.repo.GetUserWithPermissions(userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}
