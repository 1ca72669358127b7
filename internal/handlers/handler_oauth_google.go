package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/resumeforge/resumeforge_backend/internal/apperrors"
	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	portssvc "github.com/resumeforge/resumeforge_backend/internal/core/ports/services"
	"github.com/resumeforge/resumeforge_backend/internal/middleware"
	"github.com/resumeforge/resumeforge_backend/internal/platform/config"
)

const oauthStateCookieName = "oauth_state"

// GoogleOAuthHandler handles Google OAuth related requests.
type GoogleOAuthHandler struct {
	auth        *AuthHandler
	googleOAuth portssvc.GoogleOAuthHandlerSvcFacade
	userService portssvc.UserSvcFacade
	cfg         *config.Config
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		auth:        NewAuthHandler(services, cfg),
		googleOAuth: services.GoogleOAuthHandler,
		userService: services.User,
		cfg:         cfg,
	}
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewGoogleOAuthHandler(cfg, services)
	googleRoutes := rg.Group("/google")
	{
		googleRoutes.GET("", h.RedirectToGoogle)
		googleRoutes.GET("/callback", h.GoogleCallback)
	}
}

// RedirectToGoogle godoc
// @Summary Start Google sign-in
// @Description Sets a CSRF state cookie and redirects to Google's consent screen.
// @Tags oauth
// @Success 302
// @Failure 500 {object} ErrorResponse
// @Router /auth/google [get]
func (h *GoogleOAuthHandler) RedirectToGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	state, err := h.googleOAuth.GenerateStateString(ctx)
	if err != nil {
		logger.Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: apperrors.ErrSomethingWentWrong.Error()})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookieName, state, 600, "/", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusFound, h.googleOAuth.GetGoogleLoginURL(ctx, state))
}

// GoogleCallback godoc
// @Summary Complete Google sign-in
// @Description Validates the CSRF state, exchanges the authorization code, provisions the user and sets auth cookies.
// @Tags oauth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/google/callback [get]
func (h *GoogleOAuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	state := c.Query("state")
	cookieState, err := c.Cookie(oauthStateCookieName)
	if err != nil || state == "" || state != cookieState {
		logger.Warn("OAuth state mismatch")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid OAuth state."})
		return
	}
	c.SetCookie(oauthStateCookieName, "", -1, "/", "", h.cfg.IsProduction, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authorization code is required."})
		return
	}

	oauth2Token, err := h.googleOAuth.ExchangeCodeForToken(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code with Google", slog.String("error", err.Error()))
		if strings.Contains(strings.ToLower(err.Error()), "invalid_grant") {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or expired authorization code."})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: apperrors.ErrSomethingWentWrong.Error()})
		return
	}

	idTokenString, ok := oauth2Token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		logger.Error("ID token not found in Google's token response")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: apperrors.ErrSomethingWentWrong.Error()})
		return
	}

	payload, err := h.googleOAuth.ValidateGoogleIDToken(ctx, idTokenString)
	if err != nil {
		logger.Error("Google ID token validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid Google ID token."})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	locale, _ := payload.Claims["locale"].(string)
	if email == "" {
		logger.Error("Email claim missing from Google ID token payload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: apperrors.ErrSomethingWentWrong.Error()})
		return
	}

	user, err := h.userService.CreateOAuthUser(ctx, name, email, domain.ProviderGoogle, locale)
	if err != nil {
		logger.Error("Failed to provision OAuth user", slog.String("error", err.Error()))
		appErr := apperrors.ToAppError(err)
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	h.auth.respondAuthenticated(c, user)
}
