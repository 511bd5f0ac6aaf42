package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanmelo/agenda-api/internal/model"
)

func testUser() *model.User {
	u := &model.User{
		Email: "admin@example.com",
		Role:  model.UserRoleAdmin,
	}
	u.ID = uuid.New()
	return u
}

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := testUser()

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, user.Email, session.Email)
	assert.Equal(t, model.UserRoleAdmin, session.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.Expiry, 5*time.Second)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).GenerateToken(testUser())
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
