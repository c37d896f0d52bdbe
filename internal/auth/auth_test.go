package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens, err := NewTokens("secret", time.Minute)
	require.NoError(t, err)

	raw, err := tokens.Issue("admin@shop.test", RoleAdmin)
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.test", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tokens, err := NewTokens("secret", time.Minute)
	require.NoError(t, err)
	raw, err := tokens.Issue("admin@shop.test", RoleAdmin)
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherSecretAndAlgorithm(t *testing.T) {
	tokens, _ := NewTokens("secret", time.Minute)
	other, _ := NewTokens("other", time.Minute)
	raw, err := other.Issue("admin@shop.test", RoleAdmin)
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "role": RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminCredentials(t *testing.T) {
	creds, err := NewAdminCredentials(" Admin@Shop.test ", "hunter22")
	require.NoError(t, err)

	assert.NoError(t, creds.Check("admin@shop.test", "hunter22"))
	assert.ErrorIs(t, creds.Check("admin@shop.test", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, creds.Check("someone@shop.test", "hunter22"), ErrInvalidCredentials)
	assert.Equal(t, "admin@shop.test", creds.Email())
}

func TestNewAdminCredentialsRequiresValues(t *testing.T) {
	_, err := NewAdminCredentials("", "x")
	assert.Error(t, err)
}
