package repository

import (
	"testing"
	"time"

	"koinonia/internal/database"
	"koinonia/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestContent(t *testing.T, db *gorm.DB, owner *models.User, ct models.ContentType) *models.Content {
	t.Helper()
	content := &models.Content{
		Type:      ct,
		Title:     "Test " + string(ct),
		OwnerID:   owner.ID,
		Published: true,
	}
	require.NoError(t, db.Create(content).Error)
	return content
}

func createEngagementAt(t *testing.T, db *gorm.DB, userID, contentID uint, ct models.ContentType, kind models.Kind, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Engagement{
		UserID:      userID,
		ContentID:   contentID,
		ContentType: ct,
		Kind:        kind,
		CreatedAt:   at,
	}).Error)
}
