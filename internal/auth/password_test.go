package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"too short", "Ab1!", false},
		{"no uppercase", "password1!", false},
		{"no lowercase", "PASSWORD1!", false},
		{"no digit", "Password!!", false},
		{"no special", "Password11", false},
		{"all rules met", "Passw0rd!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsStrongPassword(tt.password))
		})
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	assert.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)

	assert.True(t, CheckPassword(hash, "Passw0rd!"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}
