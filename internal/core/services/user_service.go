package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge_backend/internal/apperrors"
	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	portsrepo "github.com/resumeforge/resumeforge_backend/internal/core/ports/repositories"
	portssvc "github.com/resumeforge/resumeforge_backend/internal/core/ports/services"
	"github.com/resumeforge/resumeforge_backend/internal/utils"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by identifier: %w", err)
	}
	return user, nil
}

// CreateOAuthUser returns the existing user for the given email or provisions
// a new one with no local password. Such accounts must keep using their
// original provider to sign in.
func (s *userService) CreateOAuthUser(ctx context.Context, name, email string, provider domain.AuthProvider, locale string) (*domain.User, error) {
	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	username, err := deriveUsername(email)
	if err != nil {
		return nil, err
	}
	if locale == "" {
		locale = "en-US"
	}

	now := time.Now()
	user := domain.User{
		UserID:   uuid.NewString(),
		Name:     name,
		Username: username,
		Email:    email,
		Locale:   locale,
		Provider: provider,
		AuditFields: domain.AuditFields{
			CreatedAt: now,
			UpdatedAt: now,
		},
		// No password hash: the account authenticates via its provider only.
		Secrets: domain.Secrets{},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}
	return &user, nil
}

// deriveUsername builds a username from the email local part plus a short
// random suffix to dodge collisions.
func deriveUsername(email string) (string, error) {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.ToLower(strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, local))

	suffix, err := utils.GenerateSecureRandomString(4)
	if err != nil {
		return "", fmt.Errorf("failed to generate username suffix: %w", err)
	}
	return local + "-" + suffix, nil
}
