package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	token, err := manager.GenerateToken("user1", RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "user1", claims.Username)
	require.Equal(t, RoleUser, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	token, err := manager.GenerateToken("user1", RoleUser)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)

	token, err := manager.GenerateToken("user1", RoleUser)
	require.NoError(t, err)

	_, err = manager.ParseToken(token)
	require.Error(t, err)
}

func TestCookieForRole(t *testing.T) {
	require.Equal(t, UserCookie, CookieForRole(RoleUser))
	require.Equal(t, DonorCookie, CookieForRole(RoleDonor))
	require.Equal(t, DeliveryBoyCookie, CookieForRole(RoleDeliveryBoy))
	require.Equal(t, ModeratorCookie, CookieForRole(RoleModerator))
}
