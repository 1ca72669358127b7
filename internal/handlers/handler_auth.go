package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/resumeforge/resumeforge_backend/internal/apperrors"
	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	portssvc "github.com/resumeforge/resumeforge_backend/internal/core/ports/services"
	"github.com/resumeforge/resumeforge_backend/internal/dto"
	"github.com/resumeforge/resumeforge_backend/internal/middleware"
	"github.com/resumeforge/resumeforge_backend/internal/platform/config"
)

const (
	logoutMessage         = "You have been logged out, tschüss!"
	passwordUpdatedMsg    = "Your password has been successfully updated."
	passwordResetMsg      = "Your password has been successfully reset."
	forgotPasswordAckMsg  = "A password reset link should have been sent to your inbox, if an account existed with the email you provided."
	invalidRequestBodyMsg = "Invalid request body"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	services *portssvc.ServiceContainer
	cfg      *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(services *portssvc.ServiceContainer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{services: services, cfg: cfg}
}

// registerAuthRoutes sets up the routes for authentication.
func registerAuthRoutes(rg *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services, cfg)

	// 5 requests per minute per IP on the credential-guessing surfaces.
	rate, _ := limiter.NewRateFromFormatted("5-M")
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)
	limitMiddleware := middleware.RateLimit(ipLimiter)

	accessGuard := middleware.AccessTokenGuard(services.Token, cfg.AccessTokenCookieName)

	auth := rg.Group("/api/v1/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", limitMiddleware, h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.PATCH("/password", accessGuard, h.UpdatePassword)
		auth.POST("/logout", accessGuard, h.Logout)
		auth.POST("/forgot-password", limitMiddleware, h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}

	registerGoogleOAuthRoutes(auth, cfg, services)
}

// setAuthCookies sets the Authentication and Refresh cookies with max-ages
// matching the token lifetimes.
func (h *AuthHandler) setAuthCookies(c *gin.Context, pair dto.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.AccessTokenCookieName, pair.AccessToken, int(h.cfg.AccessTokenExpiryDuration.Seconds()), "/", "", h.cfg.IsProduction, true)
	c.SetCookie(h.cfg.RefreshTokenCookieName, pair.RefreshToken, int(h.cfg.RefreshTokenExpiryDuration.Seconds()), "/", "", h.cfg.IsProduction, true)
}

// clearAuthCookies expires both cookies.
func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.AccessTokenCookieName, "", -1, "/", "", h.cfg.IsProduction, true)
	c.SetCookie(h.cfg.RefreshTokenCookieName, "", -1, "/", "", h.cfg.IsProduction, true)
}

// respondAuthenticated issues a fresh token pair (rotating the stored refresh
// token), sets both cookies and returns the authenticated user.
func (h *AuthHandler) respondAuthenticated(c *gin.Context, user *domain.User) {
	pair, err := h.services.Auth.IssueSession(c.Request.Context(), user)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to issue session", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		appErr := apperrors.ToAppError(err)
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	h.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, dto.ToAuthResponse(user))
}

// Register godoc
// @Summary Register new user
// @Description Creates a new user account and signs it in.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "User Registration Info"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "UserAlreadyExists"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidRequestBodyMsg + ": " + err.Error()})
		return
	}

	user, err := h.services.Auth.Register(c.Request.Context(), req)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		if !errors.Is(err, apperrors.ErrUserAlreadyExists) {
			logger.Error("Failed to register user", slog.String("error", err.Error()))
		}
		appErr := apperrors.ToAppError(err)
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	h.respondAuthenticated(c, user)
}

// Login godoc
// @Summary User login
// @Description Authenticates a user by email or username and sets auth cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "InvalidCredentials or OAuthUser"
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidRequestBodyMsg})
		return
	}

	user, err := h.services.Auth.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		appErr := apperrors.ToAppError(err)
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	h.respondAuthenticated(c, user)
}

// Refresh godoc
// @Summary Refresh session
// @Description Exchanges the Refresh cookie for a new access+refresh pair. The previous refresh token is invalidated.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 403 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: apperrors.ErrForbidden.Error()})
		return
	}

	user, err := h.services.Auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		if !errors.Is(err, apperrors.ErrForbidden) {
			logger.Error("Failed to refresh session", slog.String("error", err.Error()))
		}
		appErr := apperrors.ToAppError(err)
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	h.respondAuthenticated(c, user)
}

// UpdatePassword godoc
// @Summary Change password
// @Description Verifies the current password and stores a new one. Existing sessions stay valid.
// @Tags auth
// @Accept json
// @Produce json
// @Param password body dto.UpdatePasswordRequest true "Password Change"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse "InvalidCredentials or OAuthUser"
// @Router /auth/password [patch]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidRequestBodyMsg + ": " + err.Error()})
		return
	}

	user, err := h.services.User.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		appErr := apperrors.ToAppError(err)
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	if err := h.services.Auth.UpdatePassword(c.Request.Context(), user.Email, req.CurrentPassword, req.NewPassword); err != nil {
		appErr := apperrors.ToAppError(err)
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: passwordUpdatedMsg})
}

// Logout godoc
// @Summary Log out
// @Description Clears the stored refresh token and both auth cookies. Idempotent.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), userID); err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to clear refresh token on logout", slog.String("error", err.Error()))
		appErr := apperrors.ToAppError(err)
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: logoutMessage})
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Always acknowledges with the same message so registered emails cannot be enumerated.
// @Tags auth
// @Accept json
// @Produce json
// @Param forgot body dto.ForgotPasswordRequest true "Email"
// @Success 200 {object} dto.MessageResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidRequestBodyMsg})
		return
	}

	// Unknown emails and mail dispatch failures are deliberately swallowed:
	// the outward response is identical either way.
	if err := h.services.Auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Warn("Forgot-password flow failed internally", slog.String("error", err.Error()))
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: forgotPasswordAckMsg})
}

// ResetPassword godoc
// @Summary Reset password with a token
// @Description Consumes the reset token and stores the new password. Each token works exactly once.
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body dto.ResetPasswordRequest true "Token and New Password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse "InvalidResetToken"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidRequestBodyMsg})
		return
	}

	if err := h.services.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		if !errors.Is(err, apperrors.ErrInvalidResetToken) {
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Reset-password flow failed internally", slog.String("error", err.Error()))
		}
		// The token is the only credential here, so a clear failure is the
		// one case that is surfaced.
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: apperrors.ErrInvalidResetToken.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: passwordResetMsg})
}
