package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_FirstUserIsAdmin(t *testing.T) {
	db := setupTestDB(t)

	first := mustCreateUser(t, db, "first@example.com", "pw", "First")
	second := mustCreateUser(t, db, "second@example.com", "pw", "Second")

	assert.Equal(t, RoleAdmin, first.Role)
	assert.True(t, first.IsAdmin())
	assert.Equal(t, RoleUser, second.Role)
	assert.False(t, second.IsAdmin())
	assert.False(t, first.CreatedAt.IsZero())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	mustCreateUser(t, db, "dup@example.com", "pw", "One")

	_, err := createUser(context.Background(), db, "dup@example.com", "hash", "Two")
	require.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, countRows(t, db, "users"))
}

func TestGetUserByEmail(t *testing.T) {
	db := setupTestDB(t)
	created := mustCreateUser(t, db, "reader@example.com", "secret", "Reader")

	user, err := getUserByEmail(context.Background(), db, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "Reader", user.Name)
	assert.True(t, checkPassword(user.PasswordHash, "secret"))

	_, err = getUserByEmail(context.Background(), db, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := getUserByID(context.Background(), db, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetUserRole(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustCreateUser(t, db, "admin@example.com", "pw", "Admin")
	reader := mustCreateUser(t, db, "reader@example.com", "pw", "Reader")

	require.NoError(t, setUserRole(ctx, db, "reader@example.com", RoleAdmin))
	user, err := getUserByID(ctx, db, reader.ID)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	require.NoError(t, setUserRole(ctx, db, "reader@example.com", RoleUser))
	user, err = getUserByID(ctx, db, reader.ID)
	require.NoError(t, err)
	assert.False(t, user.IsAdmin())

	assert.ErrorIs(t, setUserRole(ctx, db, "ghost@example.com", RoleAdmin), ErrUserNotFound)
	assert.Error(t, setUserRole(ctx, db, "reader@example.com", "owner"))
}

func TestIsAdmin_NilUser(t *testing.T) {
	var u *User
	assert.False(t, u.IsAdmin())
}
