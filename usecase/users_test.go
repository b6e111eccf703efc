package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioauth/common"
	"bioauth/database/dbtest"
	"bioauth/services"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(dbtest.NewStore(t), fixedClock, false)

	id, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = svc.Register(ctx, "bob", "pw2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	_, err = svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, common.ErrDuplicateUser)

	for _, tc := range []struct{ username, password string }{
		{"", "pw"},
		{"   ", "pw"},
		{"carol", ""},
	} {
		_, err := svc.Register(ctx, tc.username, tc.password)
		assert.ErrorIs(t, err, common.ErrInvalidInput, "%q/%q", tc.username, tc.password)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(dbtest.NewStore(t), fixedClock, false)

	_, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, services.HashPassword("pw1"), user.PasswordHash)
	assert.Equal(t, "2024-03-05T14:07:09.123456", user.CreatedAt)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "pw1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "alice", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUserService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(dbtest.NewStore(t), fixedClock, false)

	_, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "alice", "pw2", ""))

	_, err = svc.Authenticate(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "alice", "pw2")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "ghost", "x", ""), common.ErrUserNotFound)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "alice", "", ""), common.ErrInvalidInput)
}

func TestUserService_ResetPasswordRequiresOld(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(dbtest.NewStore(t), fixedClock, true)

	_, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "alice", "pw2", ""), common.ErrInvalidInput)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "alice", "pw2", "nope"), common.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "ghost", "pw2", "pw1"), common.ErrUserNotFound)

	require.NoError(t, svc.ResetPassword(ctx, "alice", "pw2", "pw1"))
	_, err = svc.Authenticate(ctx, "alice", "pw2")
	assert.NoError(t, err)
}

func TestUserService_EnsureUser(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewStore(t)
	svc := NewUserService(store, fixedClock, false)

	existing, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	id, err := svc.EnsureUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, existing, id)

	id, err = svc.EnsureUser(ctx, "bob")
	require.NoError(t, err)
	again, err := svc.EnsureUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	n, err := countRows(ctx, store, `SELECT COUNT(*) FROM users WHERE username = ? AND password_hash = ?`,
		"bob", services.PlaceholderDigest)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Provisioned users have no usable password.
	_, err = svc.Authenticate(ctx, "bob", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUserService_UsernamesAreExact(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(dbtest.NewStore(t), fixedClock, false)

	plain, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	padded, err := svc.Register(ctx, " alice", "pw2")
	require.NoError(t, err, "surrounding whitespace makes a different username")
	assert.NotEqual(t, plain, padded)

	user, err := svc.Authenticate(ctx, " alice", "pw2")
	require.NoError(t, err)
	assert.Equal(t, " alice", user.Username)

	_, err = svc.Authenticate(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}
