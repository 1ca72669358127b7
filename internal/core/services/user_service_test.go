package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/resumeforge_backend/internal/apperrors"
	"github.com/resumeforge/resumeforge_backend/internal/core/domain"
	"github.com/resumeforge/resumeforge_backend/internal/core/services"
)

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo)

	want := &domain.User{UserID: "user-1", Email: "ada@example.com"}
	repo.On("FindUserByID", ctx, "user-1").Return(want, nil)
	repo.On("FindUserByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound)

	got, err := svc.GetUserByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.GetUserByID(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateOAuthUser_ReturnsExistingAccountByEmail(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo)

	existing := &domain.User{UserID: "user-1", Email: "ada@example.com", Provider: domain.ProviderEmail}
	repo.On("FindUserByEmail", ctx, "ada@example.com").Return(existing, nil)

	got, err := svc.CreateOAuthUser(ctx, "Ada Lovelace", "ada@example.com", domain.ProviderGoogle, "en-US")

	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	repo.AssertNotCalled(t, "SaveUser", mock.Anything, mock.Anything)
}

func TestCreateOAuthUser_ProvisionsNewAccountWithoutPassword(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo)

	repo.On("FindUserByEmail", ctx, "ada.lovelace+test@example.com").Return(nil, apperrors.ErrNotFound)

	var saved domain.User
	repo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(domain.User)
	}).Return(nil)

	got, err := svc.CreateOAuthUser(ctx, "Ada Lovelace", "ada.lovelace+test@example.com", domain.ProviderGoogle, "")

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGoogle, got.Provider)
	assert.Equal(t, "en-US", got.Locale)
	assert.False(t, got.HasPassword())
	assert.Nil(t, saved.Secrets.PasswordHash)

	// Username: sanitized email local part plus a random suffix.
	assert.True(t, strings.HasPrefix(got.Username, "ada.lovelacetest-"), "got %q", got.Username)
	suffix := strings.TrimPrefix(got.Username, "ada.lovelacetest-")
	assert.Len(t, suffix, 8)
}

func TestCreateOAuthUser_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo)

	repo.On("FindUserByEmail", ctx, "ada@example.com").Return(nil, assert.AnError)

	_, err := svc.CreateOAuthUser(ctx, "Ada Lovelace", "ada@example.com", domain.ProviderGoogle, "en-US")
	assert.Error(t, err)
}
