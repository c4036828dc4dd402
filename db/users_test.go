// ABOUTME: Tests for user account operations
// ABOUTME: Covers lookups, duplicate detection and reset key hashing
package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whitefoxstudios/onboarding/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestIdentity(email string) models.NewIdentity {
	return models.NewIdentity{
		Login:       email,
		Email:       email,
		DisplayName: "Jane Doe",
		FirstName:   "Jane",
		LastName:    "Doe",
		Role:        models.RoleCustomer,
	}
}

func TestCreateAndFindUser(t *testing.T) {
	repo := NewUsersRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestIdentity("jane@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.RoleCustomer, created.Role)

	byEmail, err := repo.FindByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	byLogin, err := repo.FindByLogin(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, byLogin)
	assert.Equal(t, created.ID, byLogin.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Jane", byID.FirstName)
	assert.Equal(t, "Doe", byID.LastName)
}

func TestFindUserMissing(t *testing.T) {
	repo := NewUsersRepository(setupTestDB(t))
	ctx := context.Background()

	u, err := repo.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = repo.FindByLogin(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := NewUsersRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestIdentity("jane@example.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newTestIdentity("jane@example.com"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateUser))

	// Same email under a different login still collides
	dup := newTestIdentity("jane@example.com")
	dup.Login = "jane"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestCreateUserInvalid(t *testing.T) {
	repo := NewUsersRepository(setupTestDB(t))

	_, err := repo.Create(context.Background(), newTestIdentity("not-an-email"))
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestCreateUserStoresHashedPassword(t *testing.T) {
	database := setupTestDB(t)
	repo := NewUsersRepository(database)

	u, err := repo.Create(context.Background(), newTestIdentity("jane@example.com"))
	require.NoError(t, err)

	var pass string
	require.NoError(t, database.QueryRow(`SELECT user_pass FROM users WHERE id = ?`, u.ID).Scan(&pass))
	_, err = bcrypt.Cost([]byte(pass))
	assert.NoError(t, err, "user_pass should be a bcrypt hash")
}

func TestIssueResetKey(t *testing.T) {
	database := setupTestDB(t)
	repo := NewUsersRepository(database)
	ctx := context.Background()

	u, err := repo.Create(ctx, newTestIdentity("jane@example.com"))
	require.NoError(t, err)

	key, err := repo.IssueResetKey(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, key, resetKeyLength)

	var hash string
	require.NoError(t, database.QueryRow(`SELECT activation_key FROM users WHERE id = ?`, u.ID).Scan(&hash))
	assert.NotEqual(t, key, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)))

	second, err := repo.IssueResetKey(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, key, second, "each key is freshly generated")
}

func TestIssueResetKeyUnknownUser(t *testing.T) {
	repo := NewUsersRepository(setupTestDB(t))

	_, err := repo.IssueResetKey(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRandomString(t *testing.T) {
	s, err := randomString(passwordLength)
	require.NoError(t, err)
	assert.Len(t, s, passwordLength)
	for _, r := range s {
		assert.Contains(t, passwordChars, string(r))
	}
}
