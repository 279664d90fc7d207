package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	// Arrange
	svc := NewJWTService("test-secret", time.Hour)

	// Act
	token, err := svc.GenerateToken(42, RoleAdmin)
	assert.NoError(t, err)

	userID, role, err := svc.ParseToken(token)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, RoleAdmin, role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour)
	verifier := NewJWTService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(42, RoleCliente)
	assert.NoError(t, err)

	_, _, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.GenerateToken(42, RoleCliente)
	assert.NoError(t, err)

	_, _, err = svc.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	_, _, err := svc.ParseToken("not.a.token")
	assert.Error(t, err)
}
