package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/resumeforge_backend/internal/utils"
)

func TestHashPassword(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-password")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-password", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"), "expected a bcrypt hash, got %q", hash)
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	first, err := utils.HashPassword("s3cret-password")
	require.NoError(t, err)
	second, err := utils.HashPassword("s3cret-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, utils.CheckPasswordHash("s3cret-password", first))
	assert.True(t, utils.CheckPasswordHash("s3cret-password", second))
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-password")
	require.NoError(t, err)

	assert.True(t, utils.CheckPasswordHash("s3cret-password", hash))
	assert.False(t, utils.CheckPasswordHash("wrong-password", hash))
	assert.False(t, utils.CheckPasswordHash("s3cret-password", "not-a-hash"))
	assert.False(t, utils.CheckPasswordHash("", hash))
}
