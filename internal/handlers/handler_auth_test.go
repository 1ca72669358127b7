package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"

	"github.com/resumeforge/resumeforge_backend/internal/apperrors"
	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	portssvc "github.com/resumeforge/resumeforge_backend/internal/core/ports/services"
	"github.com/resumeforge/resumeforge_backend/internal/core/services"
	"github.com/resumeforge/resumeforge_backend/internal/dto"
	"github.com/resumeforge/resumeforge_backend/internal/handlers"
	"github.com/resumeforge/resumeforge_backend/internal/platform/config"
)

// --- Mock AuthService ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) IssueSession(ctx context.Context, user *domain.User) (dto.TokenPair, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(dto.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthService) UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	args := m.Called(ctx, email, currentPassword, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, password string) error {
	args := m.Called(ctx, token, password)
	return args.Error(0)
}

// --- Mock UserService ---

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) CreateOAuthUser(ctx context.Context, name, email string, provider domain.AuthProvider, locale string) (*domain.User, error) {
	args := m.Called(ctx, name, email, provider, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock MailSenderService ---

type MockMailSenderService struct {
	mock.Mock
}

func (m *MockMailSenderService) SendPasswordResetEmail(ctx context.Context, to string, resetToken string) error {
	args := m.Called(ctx, to, resetToken)
	return args.Error(0)
}

// --- Mock GoogleOAuthService ---

type MockGoogleOAuthService struct {
	mock.Mock
}

func (m *MockGoogleOAuthService) GenerateStateString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGoogleOAuthService) GetGoogleLoginURL(ctx context.Context, state string) string {
	args := m.Called(ctx, state)
	return args.String(0)
}

func (m *MockGoogleOAuthService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockGoogleOAuthService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	args := m.Called(ctx, idTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idtoken.Payload), args.Error(1)
}

// --- Suite ---

type AuthHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	authSvc  *MockAuthService
	userSvc  *MockUserService
	tokenSvc portssvc.TokenSvcFacade
	cfg      *config.Config
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.cfg = &config.Config{
		AccessTokenSecret:          "test-access-secret",
		AccessTokenExpiryDuration:  15 * time.Minute,
		AccessTokenCookieName:      "Authentication",
		RefreshTokenSecret:         "test-refresh-secret",
		RefreshTokenExpiryDuration: 48 * time.Hour,
		RefreshTokenCookieName:     "Refresh",
		JWTIssuer:                  "resumeforge-test",
		PublicURL:                  "http://localhost:3000",
	}

	s.authSvc = new(MockAuthService)
	s.userSvc = new(MockUserService)
	s.tokenSvc = services.NewTokenService(s.cfg)

	container := &portssvc.ServiceContainer{
		User:               s.userSvc,
		Auth:               s.authSvc,
		Token:              s.tokenSvc,
		Mail:               new(MockMailSenderService),
		GoogleOAuthHandler: new(MockGoogleOAuthService),
	}

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, s.cfg, container)
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) performRequest(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AuthHandlerTestSuite) cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func (s *AuthHandlerTestSuite) accessCookie(userID string) *http.Cookie {
	token, err := s.tokenSvc.IssueAccessToken(context.Background(), userID)
	s.Require().NoError(err)
	return &http.Cookie{Name: s.cfg.AccessTokenCookieName, Value: token}
}

func testUser() *domain.User {
	hash := "$2a$10$examplehashexamplehashexamplehashexampleha"
	return &domain.User{
		UserID:   "user-1",
		Name:     "Ada Lovelace",
		Username: "ada",
		Email:    "ada@example.com",
		Locale:   "en-US",
		Provider: domain.ProviderEmail,
		Secrets:  domain.Secrets{PasswordHash: &hash},
	}
}

func testPair() dto.TokenPair {
	return dto.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}
}

// --- Register ---

func (s *AuthHandlerTestSuite) TestRegister_Success() {
	user := testUser()
	s.authSvc.On("Register", mock.Anything, mock.AnythingOfType("dto.RegisterRequest")).Return(user, nil)
	s.authSvc.On("IssueSession", mock.Anything, user).Return(testPair(), nil)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/register",
		`{"name":"Ada Lovelace","username":"ada","email":"ada@example.com","password":"s3cret-password"}`)

	s.Equal(http.StatusOK, w.Code)

	var resp dto.AuthResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("authenticated", resp.Status)
	s.Equal("ada", resp.User.Username)

	// Credentials never leak into the response body.
	s.NotContains(w.Body.String(), "password")
	s.NotContains(w.Body.String(), "$2a$")

	access := s.cookieByName(w, "Authentication")
	s.Require().NotNil(access)
	s.Equal("access-token", access.Value)
	s.True(access.HttpOnly)

	refresh := s.cookieByName(w, "Refresh")
	s.Require().NotNil(refresh)
	s.Equal("refresh-token", refresh.Value)
	s.True(refresh.HttpOnly)
}

func (s *AuthHandlerTestSuite) TestRegister_Duplicate() {
	s.authSvc.On("Register", mock.Anything, mock.AnythingOfType("dto.RegisterRequest")).Return(nil, apperrors.ErrUserAlreadyExists)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/register",
		`{"name":"Ada Lovelace","username":"ada","email":"ada@example.com","password":"s3cret-password"}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "UserAlreadyExists")
}

func (s *AuthHandlerTestSuite) TestRegister_ValidationFailures() {
	cases := map[string]string{
		"missing email":      `{"name":"Ada","username":"ada","password":"s3cret-password"}`,
		"malformed email":    `{"name":"Ada","username":"ada","email":"not-an-email","password":"s3cret-password"}`,
		"short password":     `{"name":"Ada","username":"ada","email":"ada@example.com","password":"tiny"}`,
		"uppercase username": `{"name":"Ada","username":"Ada","email":"ada@example.com","password":"s3cret-password"}`,
		"short username":     `{"name":"Ada","username":"ab","email":"ada@example.com","password":"s3cret-password"}`,
	}

	for name, body := range cases {
		w := s.performRequest(http.MethodPost, "/api/v1/auth/register", body)
		s.Equal(http.StatusBadRequest, w.Code, name)
	}
	s.authSvc.AssertNotCalled(s.T(), "Register", mock.Anything, mock.Anything)
}

// --- Login ---

func (s *AuthHandlerTestSuite) TestLogin_Success() {
	user := testUser()
	s.authSvc.On("Authenticate", mock.Anything, "ada", "s3cret-password").Return(user, nil)
	s.authSvc.On("IssueSession", mock.Anything, user).Return(testPair(), nil)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/login",
		`{"identifier":"ada","password":"s3cret-password"}`)

	s.Equal(http.StatusOK, w.Code)
	s.NotNil(s.cookieByName(w, "Authentication"))
	s.NotNil(s.cookieByName(w, "Refresh"))
}

func (s *AuthHandlerTestSuite) TestLogin_FailuresAreIndistinguishable() {
	s.authSvc.On("Authenticate", mock.Anything, "ada", "wrong").Return(nil, apperrors.ErrInvalidCredentials)
	s.authSvc.On("Authenticate", mock.Anything, "nobody", "wrong").Return(nil, apperrors.ErrInvalidCredentials)

	wrongPassword := s.performRequest(http.MethodPost, "/api/v1/auth/login", `{"identifier":"ada","password":"wrong"}`)
	unknownUser := s.performRequest(http.MethodPost, "/api/v1/auth/login", `{"identifier":"nobody","password":"wrong"}`)

	s.Equal(http.StatusBadRequest, wrongPassword.Code)
	s.Equal(wrongPassword.Code, unknownUser.Code)
	s.Equal(wrongPassword.Body.String(), unknownUser.Body.String())
}

func (s *AuthHandlerTestSuite) TestLogin_OAuthOnlyAccount() {
	s.authSvc.On("Authenticate", mock.Anything, "oauth@example.com", "anything").Return(nil, apperrors.ErrOAuthUser)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/login",
		`{"identifier":"oauth@example.com","password":"anything"}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "OAuthUser")
}

func (s *AuthHandlerTestSuite) TestLogin_RateLimited() {
	s.authSvc.On("Authenticate", mock.Anything, "ada", "wrong").Return(nil, apperrors.ErrInvalidCredentials)

	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = s.performRequest(http.MethodPost, "/api/v1/auth/login", `{"identifier":"ada","password":"wrong"}`)
	}

	s.Equal(http.StatusTooManyRequests, last.Code)
}

// --- Refresh ---

func (s *AuthHandlerTestSuite) TestRefresh_Success() {
	user := testUser()
	s.authSvc.On("Refresh", mock.Anything, "old-refresh-token").Return(user, nil)
	s.authSvc.On("IssueSession", mock.Anything, user).Return(testPair(), nil)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/refresh", "",
		&http.Cookie{Name: "Refresh", Value: "old-refresh-token"})

	s.Equal(http.StatusOK, w.Code)

	refresh := s.cookieByName(w, "Refresh")
	s.Require().NotNil(refresh)
	s.Equal("refresh-token", refresh.Value)
}

func (s *AuthHandlerTestSuite) TestRefresh_MissingCookie() {
	w := s.performRequest(http.MethodPost, "/api/v1/auth/refresh", "")

	s.Equal(http.StatusForbidden, w.Code)
	s.authSvc.AssertNotCalled(s.T(), "Refresh", mock.Anything, mock.Anything)
}

func (s *AuthHandlerTestSuite) TestRefresh_RejectedToken() {
	s.authSvc.On("Refresh", mock.Anything, "rotated-out-token").Return(nil, apperrors.ErrForbidden)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/refresh", "",
		&http.Cookie{Name: "Refresh", Value: "rotated-out-token"})

	s.Equal(http.StatusForbidden, w.Code)
	s.Contains(w.Body.String(), "Forbidden")
}

// --- UpdatePassword ---

func (s *AuthHandlerTestSuite) TestUpdatePassword_Success() {
	user := testUser()
	s.userSvc.On("GetUserByID", mock.Anything, "user-1").Return(user, nil)
	s.authSvc.On("UpdatePassword", mock.Anything, "ada@example.com", "old-password", "new-password").Return(nil)

	w := s.performRequest(http.MethodPatch, "/api/v1/auth/password",
		`{"currentPassword":"old-password","newPassword":"new-password"}`,
		s.accessCookie("user-1"))

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "successfully updated")
}

func (s *AuthHandlerTestSuite) TestUpdatePassword_RequiresAuthentication() {
	w := s.performRequest(http.MethodPatch, "/api/v1/auth/password",
		`{"currentPassword":"old-password","newPassword":"new-password"}`)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.authSvc.AssertNotCalled(s.T(), "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthHandlerTestSuite) TestUpdatePassword_WrongCurrentPassword() {
	user := testUser()
	s.userSvc.On("GetUserByID", mock.Anything, "user-1").Return(user, nil)
	s.authSvc.On("UpdatePassword", mock.Anything, "ada@example.com", "guess", "new-password").Return(apperrors.ErrInvalidCredentials)

	w := s.performRequest(http.MethodPatch, "/api/v1/auth/password",
		`{"currentPassword":"guess","newPassword":"new-password"}`,
		s.accessCookie("user-1"))

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "InvalidCredentials")
}

// --- Logout ---

func (s *AuthHandlerTestSuite) TestLogout_ClearsCookies() {
	s.authSvc.On("Logout", mock.Anything, "user-1").Return(nil)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/logout", "", s.accessCookie("user-1"))

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "You have been logged out, tschüss!")

	access := s.cookieByName(w, "Authentication")
	s.Require().NotNil(access)
	s.Empty(access.Value)
	s.True(access.MaxAge < 0 || !access.Expires.After(time.Now()))

	refresh := s.cookieByName(w, "Refresh")
	s.Require().NotNil(refresh)
	s.Empty(refresh.Value)
}

func (s *AuthHandlerTestSuite) TestLogout_BearerHeaderAccepted() {
	s.authSvc.On("Logout", mock.Anything, "user-1").Return(nil)

	token, err := s.tokenSvc.IssueAccessToken(context.Background(), "user-1")
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
}

func (s *AuthHandlerTestSuite) TestLogout_RequiresAuthentication() {
	w := s.performRequest(http.MethodPost, "/api/v1/auth/logout", "")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.authSvc.AssertNotCalled(s.T(), "Logout", mock.Anything, mock.Anything)
}

// --- ForgotPassword ---

func (s *AuthHandlerTestSuite) TestForgotPassword_SameResponseForKnownAndUnknownEmail() {
	s.authSvc.On("ForgotPassword", mock.Anything, "ada@example.com").Return(nil)
	s.authSvc.On("ForgotPassword", mock.Anything, "ghost@example.com").Return(apperrors.ErrNotFound)

	known := s.performRequest(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"ada@example.com"}`)
	unknown := s.performRequest(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"ghost@example.com"}`)

	s.Equal(http.StatusOK, known.Code)
	s.Equal(http.StatusOK, unknown.Code)
	s.Equal(known.Body.String(), unknown.Body.String())
	s.Contains(known.Body.String(), "if an account existed")
}

// --- ResetPassword ---

func (s *AuthHandlerTestSuite) TestResetPassword_Success() {
	s.authSvc.On("ResetPassword", mock.Anything, "reset-token", "new-password").Return(nil)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/reset-password",
		`{"token":"reset-token","password":"new-password"}`)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "successfully reset")
}

func (s *AuthHandlerTestSuite) TestResetPassword_InvalidToken() {
	s.authSvc.On("ResetPassword", mock.Anything, "stale-token", "new-password").Return(apperrors.ErrInvalidResetToken)

	w := s.performRequest(http.MethodPost, "/api/v1/auth/reset-password",
		`{"token":"stale-token","password":"new-password"}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "InvalidResetToken")
}

// --- /users/me ---

func (s *AuthHandlerTestSuite) TestGetMe_Success() {
	user := testUser()
	s.userSvc.On("GetUserByID", mock.Anything, "user-1").Return(user, nil)

	w := s.performRequest(http.MethodGet, "/api/v1/users/me", "", s.accessCookie("user-1"))

	s.Equal(http.StatusOK, w.Code)

	var resp dto.UserResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("user-1", resp.UserID)
	s.Equal("ada@example.com", resp.Email)
	s.NotContains(w.Body.String(), "$2a$")
}

func (s *AuthHandlerTestSuite) TestGetMe_InvalidToken() {
	w := s.performRequest(http.MethodGet, "/api/v1/users/me", "",
		&http.Cookie{Name: "Authentication", Value: "garbage"})

	s.Equal(http.StatusUnauthorized, w.Code)
	s.userSvc.AssertNotCalled(s.T(), "GetUserByID", mock.Anything, mock.Anything)
}

func (s *AuthHandlerTestSuite) TestGetMe_ExpiredToken() {
	cfg := *s.cfg
	cfg.AccessTokenExpiryDuration = -time.Minute
	expiredIssuer := services.NewTokenService(&cfg)
	token, err := expiredIssuer.IssueAccessToken(context.Background(), "user-1")
	s.Require().NoError(err)

	w := s.performRequest(http.MethodGet, "/api/v1/users/me", "",
		&http.Cookie{Name: "Authentication", Value: token})

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerTestSuite) TestHealth() {
	w := s.performRequest(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}
