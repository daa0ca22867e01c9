package repository

import (
	"context"
	"testing"

	"koinonia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Lookups(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		Username:     "lookup_me",
		Email:        "lookup_me@example.com",
		PasswordHash: "x",
	}))

	byName, err := repo.GetByUsername(ctx, "lookup_me")
	require.NoError(t, err)
	assert.Equal(t, "lookup_me@example.com", byName.Email)

	byEmail, err := repo.GetByEmail(ctx, "lookup_me@example.com")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, byName.ID)
	require.NoError(t, err)
	assert.Equal(t, "lookup_me", byID.Username)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_IsAdmin(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	plain := createTestUser(t, db, "plain_member")
	admin := &models.User{
		Username:     "steward",
		Email:        "steward@example.com",
		PasswordHash: "x",
		IsAdmin:      true,
	}
	require.NoError(t, db.Create(admin).Error)

	ok, err := repo.IsAdmin(ctx, plain.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.IsAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.IsAdmin(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
