package services

import (
	"context"

	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	"github.com/resumeforge/resumeforge_backend/internal/dto"
)

// TokenSvcFacade defines the interface for token issuance and verification.
// Access and refresh tokens are signed with distinct secrets; reset tokens are
// opaque random strings validated only by exact-match lookup in storage.
type TokenSvcFacade interface {
	// IssueAccessToken creates a signed access token for the given subject.
	// An empty userID is a programming-contract violation and yields
	// apperrors.ErrInvalidTokenPayload.
	IssueAccessToken(ctx context.Context, userID string) (string, error)

	// IssueRefreshToken creates a signed refresh token for the given subject.
	IssueRefreshToken(ctx context.Context, userID string) (string, error)

	// VerifyAccessToken validates signature and expiry, returning the subject.
	VerifyAccessToken(ctx context.Context, token string) (string, error)

	// VerifyRefreshToken validates signature and expiry, returning the subject.
	// A verification failure is distinct from a stored-value mismatch.
	VerifyRefreshToken(ctx context.Context, token string) (string, error)

	// NewResetToken generates an opaque URL-safe reset token.
	NewResetToken(ctx context.Context) (string, error)
}

// AuthSvcFacade is the orchestrator for the register / login / refresh /
// logout / change-password / forgot-password / reset-password flows.
type AuthSvcFacade interface {
	// Register creates a new user with hashed credentials. The caller is
	// expected to follow up with IssueSession (auto-login after signup).
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// Authenticate verifies an identifier (email or username) and password.
	// Unknown identifiers and wrong passwords both yield ErrInvalidCredentials.
	Authenticate(ctx context.Context, identifier, password string) (*domain.User, error)

	// Refresh exchanges a presented refresh token for its user after a
	// signature check and an exact match against the stored token.
	Refresh(ctx context.Context, refreshToken string) (*domain.User, error)

	// IssueSession issues a fresh access+refresh pair and persists the new
	// refresh token, rotating out any previously issued one.
	IssueSession(ctx context.Context, user *domain.User) (dto.TokenPair, error)

	// Logout clears the stored refresh token. Idempotent.
	Logout(ctx context.Context, userID string) error

	// UpdatePassword verifies the current password and stores a new hash.
	UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error

	// ForgotPassword stores a reset token and dispatches the reset email.
	// Callers must collapse all failures into the same outward response.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and stores the new password hash.
	ResetPassword(ctx context.Context, token, password string) error
}
