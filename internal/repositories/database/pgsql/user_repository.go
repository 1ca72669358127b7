package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/resumeforge/resumeforge_backend/internal/apperrors"
	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	portsrepo "github.com/resumeforge/resumeforge_backend/internal/core/ports/repositories"
	"github.com/resumeforge/resumeforge_backend/internal/models"
	"github.com/resumeforge/resumeforge_backend/internal/utils/mapping"
)

// DBTX is the subset of pgxpool.Pool used by the repositories. pgxmock's
// pool interface satisfies it too, which keeps the repositories testable
// without a live database.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PgxUserRepository struct {
	db DBTX
}

func newPgxUserRepository(db DBTX) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{db: db}
}

// NewUserRepository exposes the repository constructor for tests and wiring
// outside the provider.
func NewUserRepository(db DBTX) portsrepo.UserRepositoryFacade {
	return newPgxUserRepository(db)
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userSelectColumns = `
	u.user_id, u.name, u.username, u.email, u.locale, u.provider,
	u.created_at, u.updated_at,
	s.password_hash, s.refresh_token, s.reset_token, s.last_signed_in`

func scanUser(row pgx.Row) (*domain.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Name,
		&m.Username,
		&m.Email,
		&m.Locale,
		&m.Provider,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.PasswordHash,
		&m.RefreshToken,
		&m.ResetToken,
		&m.LastSignedIn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	domainUser := mapping.ToDomainUser(m)
	return &domainUser, nil
}

// SaveUser inserts the user and its secrets row in a single transaction so
// the 1:1 invariant holds even under failure.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	modelUser := mapping.ToModelUser(user)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userQuery := `
        INSERT INTO users (user_id, name, username, email, locale, provider, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `
	_, err = tx.Exec(ctx, userQuery,
		modelUser.UserID,
		modelUser.Name,
		modelUser.Username,
		modelUser.Email,
		modelUser.Locale,
		modelUser.Provider,
		modelUser.CreatedAt,
		modelUser.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperrors.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to save user: %w", err)
	}

	secretsQuery := `
        INSERT INTO user_secrets (user_id, password_hash, refresh_token, reset_token, last_signed_in)
        VALUES ($1, $2, $3, $4, $5);
    `
	_, err = tx.Exec(ctx, secretsQuery,
		modelUser.UserID,
		modelUser.PasswordHash,
		modelUser.RefreshToken,
		modelUser.ResetToken,
		modelUser.LastSignedIn,
	)
	if err != nil {
		return fmt.Errorf("failed to save user secrets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user creation: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT ` + userSelectColumns + `
		FROM users u
		JOIN user_secrets s ON s.user_id = u.user_id
		WHERE u.user_id = $1;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := `
		SELECT ` + userSelectColumns + `
		FROM users u
		JOIN user_secrets s ON s.user_id = u.user_id
		WHERE u.email = $1 OR u.username = $1;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user by identifier: %w", err)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userSelectColumns + `
		FROM users u
		JOIN user_secrets s ON s.user_id = u.user_id
		WHERE u.email = $1;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// UpdateRefreshToken overwrites the stored refresh token (rotation: any
// previously issued token stops matching) and records the sign-in time.
func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshToken string, signedInAt time.Time) error {
	query := `
        UPDATE user_secrets
        SET refresh_token = $1, last_signed_in = $2
        WHERE user_id = $3;
    `
	cmdTag, err := r.db.Exec(ctx, query, refreshToken, signedInAt, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("secrets row missing for user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	// Idempotent: clearing an already-cleared token affects the row anyway.
	query := `
        UPDATE user_secrets
        SET refresh_token = NULL
        WHERE user_id = $1;
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) SetResetToken(ctx context.Context, email string, resetToken string) error {
	query := `
        UPDATE user_secrets s
        SET reset_token = $1
        FROM users u
        WHERE u.user_id = s.user_id AND u.email = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, resetToken, email)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ConsumeResetToken clears the token and sets the new hash in one UPDATE,
// making the token single-use by construction.
func (r *PgxUserRepository) ConsumeResetToken(ctx context.Context, resetToken string, newPasswordHash string) error {
	query := `
        UPDATE user_secrets
        SET reset_token = NULL, password_hash = $1
        WHERE reset_token = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, newPasswordHash, resetToken)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error {
	query := `
        UPDATE user_secrets
        SET password_hash = $1
        WHERE user_id = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("secrets row missing for user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}
