package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	SetJWTIssuer("")

	token, err := GenerateJWT("auth-user-1", "asha@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "auth-user-1", claims.Subject)
	assert.Equal(t, "asha@example.com", claims.Email)
}

func TestValidateJWTRejectsBadTokens(t *testing.T) {
	SetJWTSecret("test-secret")
	SetJWTIssuer("")

	expired, err := GenerateJWT("auth-user-1", "asha@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	SetJWTSecret("other-secret")
	forged, err := GenerateJWT("auth-user-1", "asha@example.com", time.Hour)
	require.NoError(t, err)
	SetJWTSecret("test-secret")
	_, err = ValidateJWT(forged)
	assert.Error(t, err)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{Email: "x@example.com"})
	signed, err := noSubject.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ValidateJWT(signed)
	assert.Error(t, err)
}

func TestValidateJWTChecksIssuer(t *testing.T) {
	SetJWTSecret("test-secret")
	defer SetJWTIssuer("")

	SetJWTIssuer("https://auth.example.com")
	token, err := GenerateJWT("auth-user-1", "asha@example.com", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.NoError(t, err)

	SetJWTIssuer("https://other.example.com")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}
