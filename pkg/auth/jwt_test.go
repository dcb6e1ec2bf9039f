package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/marketplace-api/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &model.User{Email: "p@example.com", Role: model.RoleProvider}
	user.ID = uuid.New()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	p, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.ID)
	assert.Equal(t, model.RoleProvider, p.Role)
	assert.Equal(t, "p@example.com", p.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &model.User{Email: "c@example.com", Role: model.RoleCustomer}
	user.ID = uuid.New()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = NewJWTService("other-secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTService("test-secret", time.Minute).(*hmacService)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
