package services

import (
	"context"

	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByIdentifier retrieves a user by email or username.
	GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateOAuthUser provisions (or returns the existing) user for an
	// OAuth sign-in. Such accounts carry no local password.
	CreateOAuthUser(ctx context.Context, name, email string, provider domain.AuthProvider, locale string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
}
