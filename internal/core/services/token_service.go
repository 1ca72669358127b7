package services

import (
	"context"
	"fmt"

	"github.com/resumeforge/resumeforge_backend/internal/apperrors"
	portssvc "github.com/resumeforge/resumeforge_backend/internal/core/ports/services"
	"github.com/resumeforge/resumeforge_backend/internal/platform/config"
	"github.com/resumeforge/resumeforge_backend/internal/utils"
)

// tokenService implements TokenSvcFacade. Access and refresh tokens are HS256
// JWTs signed with distinct secrets; reset tokens are opaque random strings
// with no decodable structure.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

func (s *tokenService) IssueAccessToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperrors.ErrInvalidTokenPayload
	}
	token, err := utils.GenerateJWT(userID, s.cfg.AccessTokenSecret, s.cfg.AccessTokenExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

func (s *tokenService) IssueRefreshToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperrors.ErrInvalidTokenPayload
	}
	token, err := utils.GenerateJWT(userID, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

func (s *tokenService) VerifyAccessToken(ctx context.Context, token string) (string, error) {
	claims, err := utils.ParseAndValidateJWT(token, s.cfg.AccessTokenSecret)
	if err != nil {
		return "", fmt.Errorf("access token: %w: %v", apperrors.ErrTokenVerification, err)
	}
	return claims.Subject, nil
}

func (s *tokenService) VerifyRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := utils.ParseAndValidateJWT(token, s.cfg.RefreshTokenSecret)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w: %v", apperrors.ErrTokenVerification, err)
	}
	return claims.Subject, nil
}

// NewResetToken generates 32 bytes of entropy, base64url-encoded. The result
// is only verifiable by exact-match lookup against the stored value.
func (s *tokenService) NewResetToken(ctx context.Context) (string, error) {
	token, err := utils.GenerateURLSafeToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return token, nil
}
