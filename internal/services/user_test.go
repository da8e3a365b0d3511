package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
)

func TestUserCreateAndAuthenticate(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	user, err := svc.Create("boone", "boone@pathsixdesigns.com", "hunter2", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, user.FsUniquifier)

	got, err := svc.Authenticate("boone@pathsixdesigns.com", "hunter2")
	require.NoError(t, err)
	assert.True(t, got.HasRole("admin"))
	assert.NotNil(t, got.LastLoginAt)

	_, err = svc.Authenticate("boone@pathsixdesigns.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email and bad password are indistinguishable")
}

func TestUserCheckUnique(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	existing, err := svc.Create("boone", "boone@pathsixdesigns.com", "pw", "user")
	require.NoError(t, err)

	v := validation.Violations{}
	require.NoError(t, svc.CheckUnique("boone", "boone@pathsixdesigns.com", 0, v))
	assert.Equal(t, []string{"Username Taken. Please choose another."}, v["username"])
	assert.Equal(t, []string{"There is already an account using that email."}, v["email"])

	// Self-edit excludes the user's own row.
	v = validation.Violations{}
	require.NoError(t, svc.CheckUnique("boone", "boone@pathsixdesigns.com", existing.ID, v))
	assert.True(t, v.Empty())
}

func TestUserUpdateReplacesRole(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	user, err := svc.Create("editor1", "e@example.com", "pw", "editor")
	require.NoError(t, err)

	roles, err := svc.Roles()
	require.NoError(t, err)
	var adminID uint
	for _, r := range roles {
		if r.Name == "admin" {
			adminID = r.ID
		}
	}
	require.NotZero(t, adminID)

	require.NoError(t, svc.Update(user.ID, "editor1", "e@example.com", adminID))

	got, err := svc.Get(user.ID)
	require.NoError(t, err)
	assert.True(t, got.HasRole("admin"))
	assert.False(t, got.HasRole("editor"), "role replacement, not accumulation")
}

func TestUserResetPasswordRotatesUniquifier(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	user, err := svc.Create("boone", "boone@pathsixdesigns.com", "old", "user")
	require.NoError(t, err)
	before := user.FsUniquifier

	require.NoError(t, svc.ResetPassword(user.ID, "new"))

	got, err := svc.Get(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before, got.FsUniquifier)

	_, err = svc.Authenticate("boone@pathsixdesigns.com", "new")
	assert.NoError(t, err)
}

func TestUserDelete(t *testing.T) {
	svc := NewUserService(openTestDB(t))

	user, err := svc.Create("gone", "gone@example.com", "pw", "user")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(user.ID))
	_, err = svc.Get(user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(user.ID), ErrNotFound)
}
