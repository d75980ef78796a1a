package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("test-secret", 7, "STAFF", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, "STAFF", claims["role"])
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("right-secret", 7, "STAFF", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	ref, err := NewRefreshToken(7)
	require.NoError(t, err)
	require.Len(t, ref.Raw, 96) // 48 random bytes hex encoded

	h1 := HashRefreshRaw(ref.Raw)
	h2 := HashRefreshRaw(ref.Raw)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // sha256 hex digest
	assert.NotEqual(t, ref.Raw, h1)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("kitchen-pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "kitchen-pass"))
	assert.False(t, VerifyPassword(hash, "wrong-pass"))
}
