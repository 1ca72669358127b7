package utils_test

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/resumeforge_backend/internal/utils"
)

func TestGenerateSecureRandomString(t *testing.T) {
	s, err := utils.GenerateSecureRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	_, err = hex.DecodeString(s)
	assert.NoError(t, err)
}

func TestGenerateURLSafeToken(t *testing.T) {
	token, err := utils.GenerateURLSafeToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 43)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestGenerateURLSafeToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		token, err := utils.GenerateURLSafeToken(32)
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestRandomGenerators_RejectNonPositiveLength(t *testing.T) {
	_, err := utils.GenerateSecureRandomString(0)
	assert.Error(t, err)

	_, err = utils.GenerateURLSafeToken(-1)
	assert.Error(t, err)
}
