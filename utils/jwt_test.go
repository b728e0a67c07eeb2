package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ConfigureJWT("test-secret")

	token, err := GenerateToken("admin-1", "owner@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "owner@example.com", claims.Email)
}

func TestValidateToken_Rejects(t *testing.T) {
	ConfigureJWT("test-secret")

	expired, err := GenerateToken("admin-1", "a@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired)
	assert.Error(t, err)

	ConfigureJWT("other-secret")
	forged, err := GenerateToken("admin-1", "a@example.com", time.Hour)
	require.NoError(t, err)
	ConfigureJWT("test-secret")
	_, err = ValidateToken(forged)
	assert.Error(t, err)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	signed, err := noSubject.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.Error(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{
		StandardClaims: jwt.StandardClaims{Subject: "admin-1", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(none)
	assert.Error(t, err)

	_, err = ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret(20)
	require.NoError(t, err)
	b, err := RandomSecret(20)
	require.NoError(t, err)
	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
}
