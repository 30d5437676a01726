package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedmentor/appointment-portal/internal/model"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := NewSessionToken("secret", time.Minute, Claims{
		UserID:   "u-1",
		Role:     model.RoleStudent,
		Approved: true,
	})
	require.NoError(t, err)

	claims, err := ParseSessionToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.True(t, claims.Approved)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := NewSessionToken("secret", time.Minute, Claims{UserID: "u-1", Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = ParseSessionToken("other-secret", token)
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := NewSessionToken("secret", -time.Minute, Claims{UserID: "u-1", Role: model.RoleTeacher})
	require.NoError(t, err)

	_, err = ParseSessionToken("secret", token)
	assert.Error(t, err)
}
