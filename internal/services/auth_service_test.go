package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	auth := NewAuthService(bcrypt.MinCost)

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(hash, testPassword))
	assert.False(t, auth.CheckPassword(hash, "Secret124"))
}

func TestHashPassword_ByteLimit(t *testing.T) {
	auth := NewAuthService(bcrypt.MinCost)

	_, err := auth.HashPassword(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)

	_, err = auth.HashPassword("Aa1" + strings.Repeat("é", 69))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
