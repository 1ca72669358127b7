package repositories

import (
	"context"
	"time"

	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
)

// UserReader defines read operations for user data. All reads return the user
// joined with its credential secrets.
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByIdentifier retrieves a user by email or username.
	FindUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriter defines write operations for user identity data.
type UserWriter interface {
	// SaveUser persists a new user together with its secrets row in one
	// transaction. A unique violation on email or username surfaces as
	// apperrors.ErrUserAlreadyExists.
	SaveUser(ctx context.Context, user domain.User) error
}

// SecretsWriter defines write operations on a user's credential secrets.
// All mutations are single-row, last-writer-wins.
type SecretsWriter interface {
	// UpdateRefreshToken overwrites the stored refresh token, invalidating
	// any previously issued one, and records the sign-in time.
	UpdateRefreshToken(ctx context.Context, userID string, refreshToken string, signedInAt time.Time) error

	// ClearRefreshToken removes the stored refresh token. Clearing an
	// already-cleared token is not an error.
	ClearRefreshToken(ctx context.Context, userID string) error

	// SetResetToken stores a password-reset token for the user with the
	// given email. Returns apperrors.ErrNotFound if no such user exists.
	SetResetToken(ctx context.Context, email string, resetToken string) error

	// ConsumeResetToken atomically clears the stored reset token and sets
	// the new password hash on the row whose reset_token exactly matches.
	// Returns apperrors.ErrNotFound if no row matched.
	ConsumeResetToken(ctx context.Context, resetToken string, newPasswordHash string) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	SecretsWriter
}
