//go:build !integration && !e2e

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/llm-router-go/internal/repository"
	"github.com/user/llm-router-go/internal/routererrors"
	"github.com/user/llm-router-go/internal/testutil"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	repo := repository.NewAdminRepository(testutil.NewTestDB(t), zap.NewNop())
	return NewAuthService(repo, zap.NewNop())
}

func TestAuthService_DefaultAdminAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateDefaultAdmin(ctx, "admin", "changeme"))
	// Idempotent on restart.
	require.NoError(t, svc.CreateDefaultAdmin(ctx, "admin", "ignored"))

	token, err := svc.Login(ctx, "admin", "changeme")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	admin, err := svc.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.CreateDefaultAdmin(ctx, "admin", "changeme"))

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.True(t, routererrors.IsUnauthorized(err))

	_, err = svc.Login(ctx, "nobody", "changeme")
	assert.True(t, routererrors.IsUnauthorized(err))
}

func TestAuthService_Logout(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.CreateDefaultAdmin(ctx, "admin", "changeme"))

	token, err := svc.Login(ctx, "admin", "changeme")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.ValidateSession(ctx, token)
	assert.True(t, routererrors.IsUnauthorized(err))
}

func TestAuthService_InvalidSession(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ValidateSession(context.Background(), "bogus")
	assert.True(t, routererrors.IsUnauthorized(err))
}
