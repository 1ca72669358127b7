package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/resumeforge/resumeforge_backend/internal/apperrors"
	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	portsrepo "github.com/resumeforge/resumeforge_backend/internal/core/ports/repositories"
	portssvc "github.com/resumeforge/resumeforge_backend/internal/core/ports/services"
	"github.com/resumeforge/resumeforge_backend/internal/dto"
	"github.com/resumeforge/resumeforge_backend/internal/utils"
)

// authService orchestrates the register / login / refresh / logout /
// change-password / forgot-password / reset-password flows. Session validity
// is entirely encoded by the match between the presented refresh token and
// the stored one; there is no separate session table.
type authService struct {
	userRepo portsrepo.UserRepositoryFacade
	tokens   portssvc.TokenSvcFacade
	mail     portssvc.MailSenderSvcFacade
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, tokens portssvc.TokenSvcFacade, mail portssvc.MailSenderSvcFacade) portssvc.AuthSvcFacade {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		mail:     mail,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	locale := req.Locale
	if locale == "" {
		locale = "en-US"
	}

	now := time.Now()
	user := domain.User{
		UserID:   uuid.NewString(),
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Locale:   locale,
		Provider: domain.ProviderEmail,
		AuditFields: domain.AuditFields{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Secrets: domain.Secrets{PasswordHash: &hash},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// Authenticate verifies an identifier (email or username) and password.
// An unknown identifier and a wrong password yield the same error so that
// login cannot be used to enumerate accounts.
func (s *authService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user for login: %w", err)
	}

	if !user.HasPassword() {
		return nil, apperrors.ErrOAuthUser
	}

	if !utils.CheckPasswordHash(password, *user.Secrets.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// Refresh validates the presented refresh token's signature and expiry, then
// requires an exact match against the stored token. Any mismatch is terminal;
// the client must re-authenticate.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.User, error) {
	userID, err := s.tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrForbidden, err)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, fmt.Errorf("failed to load user for refresh: %w", err)
	}

	stored := user.Secrets.RefreshToken
	if stored == nil || *stored != refreshToken {
		return nil, apperrors.ErrForbidden
	}

	return user, nil
}

// IssueSession issues a fresh access+refresh pair and persists the refresh
// token, rotating out any previously issued one. The write also records the
// sign-in time, so every successful authentication updates lastSignedIn.
func (s *authService) IssueSession(ctx context.Context, user *domain.User) (dto.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(ctx, user.UserID)
	if err != nil {
		return dto.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(ctx, user.UserID)
	if err != nil {
		return dto.TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, user.UserID, refreshToken, time.Now()); err != nil {
		return dto.TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return dto.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout clears the stored refresh token. Logging out an already-logged-out
// session is not an error.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// UpdatePassword verifies the current password before storing the new hash.
// It deliberately does not rotate the stored refresh token, so existing
// sessions remain valid.
func (s *authService) UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrInvalidCredentials
		}
		return fmt.Errorf("failed to look up user for password update: %w", err)
	}

	if !user.HasPassword() {
		return apperrors.ErrOAuthUser
	}

	if !utils.CheckPasswordHash(currentPassword, *user.Secrets.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.UserID, hash); err != nil {
		return fmt.Errorf("failed to store new password hash: %w", err)
	}
	return nil
}

// ForgotPassword stores a reset token and dispatches the reset email. The
// transport boundary swallows every error from this method and answers with
// the same acknowledgment regardless, so an attacker cannot probe for
// registered emails.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	token, err := s.tokens.NewResetToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.userRepo.SetResetToken(ctx, email, token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mail.SendPasswordResetEmail(ctx, email, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes the reset token: the same UPDATE that sets the new
// hash clears the token, making it single-use by construction.
func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.ConsumeResetToken(ctx, token, hash); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	return nil
}
