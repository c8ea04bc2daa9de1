package services

import (
	"testing"

	"acupuntos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	token, err := authentication.CreateToken(&models.UserFromAuth{
		ID:          "user-1",
		Email:       "user@example.com",
		DisplayName: "Usuario Uno",
		Role:        models.RoleAdmin,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := authentication.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, "Usuario Uno", user.DisplayName)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestAuthenticationWrongSecret(t *testing.T) {
	issuer, err := NewAuthentication("secret-a")
	require.NoError(t, err)
	verifier, err := NewAuthentication("secret-b")
	require.NoError(t, err)

	token, err := issuer.CreateToken(&models.UserFromAuth{ID: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestAuthenticationGarbageToken(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	_, err = authentication.Validate("not-a-token")
	assert.Error(t, err)
}
