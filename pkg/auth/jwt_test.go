package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicare/monitor-api/internal/model"
)

func TestValidateCarriesTokenExpiry(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "pat@example.com",
		Role:  model.RolePatient,
	}

	token, expiresAt, err := svc.Generate(user)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RolePatient, claims.Role)
	// The exp claim carries second precision.
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)
	user := &model.User{
		Base: model.Base{ID: uuid.New()},
		Role: model.RoleNurse,
	}

	token, _, err := svc.Generate(user)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}
