package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(hash))

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais mot de passe", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUsesRandomSalt(t *testing.T) {
	h1, err := HashPassword("secret")
	require.NoError(t, err)
	h2, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("secret", "pas-un-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("secret", strings.Repeat("$", 6))
	assert.Error(t, err)
}

func TestIsArgon2Hash(t *testing.T) {
	assert.True(t, IsArgon2Hash("$argon2id$v=19$m=32768,t=1,p=4$abc$def"))
	assert.False(t, IsArgon2Hash("$2a$10$bcrypt"))
	assert.False(t, IsArgon2Hash(""))
}
