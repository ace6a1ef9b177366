package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Grace", "  Grace@Example.com ", "hunter22", "")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.Equal(t, domain.RoleAthlete, user.Role)
	assert.Empty(t, user.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, "grace@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleAthlete, claims.Role)
	assert.Equal(t, "fitness-coach", claims.Issuer)
}

func TestAuthService_Failures(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Grace", "grace@example.com", "hunter22", domain.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"duplicate email", func() error {
			_, err := svc.Register(ctx, "Other", "GRACE@example.com", "pw", "")
			return err
		}, ErrUserAlreadyExists},
		{"unknown role", func() error {
			_, err := svc.Register(ctx, "Other", "other@example.com", "pw", "coach")
			return err
		}, ErrInvalidRole},
		{"wrong password", func() error {
			_, _, err := svc.Login(ctx, "grace@example.com", "nope")
			return err
		}, ErrAuthenticationFailed},
		{"unknown email", func() error {
			_, _, err := svc.Login(ctx, "nobody@example.com", "hunter22")
			return err
		}, ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}
}
