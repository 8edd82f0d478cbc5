package services

import (
	"path/filepath"
	"testing"
	"time"

	"item-feedback-server/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.Assignment{},
		&models.Feedback{},
		&models.Group{},
		&models.OperationLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, name, role, group string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Name:         name,
		PasswordHash: "x",
		Role:         role,
		Group:        group,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestItem(t *testing.T, db *gorm.DB, title string, creatorID uint, assigneeIDs ...uint) *models.Item {
	t.Helper()
	item, err := CreateItem(db, CreateItemInput{
		Title:        title,
		Description:  "test item",
		Deadline:     time.Now().UTC().Add(7 * 24 * time.Hour),
		MustFeedback: true,
		CreatorID:    creatorID,
		AssigneeIDs:  assigneeIDs,
	})
	if err != nil {
		t.Fatalf("failed to create item %s: %v", title, err)
	}
	return item
}

func assignmentFor(t *testing.T, db *gorm.DB, itemID, userID uint) *models.Assignment {
	t.Helper()
	var a models.Assignment
	if err := db.Where("item_id = ? AND user_id = ?", itemID, userID).First(&a).Error; err != nil {
		t.Fatalf("no assignment for item %d user %d: %v", itemID, userID, err)
	}
	return &a
}

func itemStatus(t *testing.T, db *gorm.DB, itemID uint) string {
	t.Helper()
	var item models.Item
	if err := db.First(&item, itemID).Error; err != nil {
		t.Fatalf("failed to reload item %d: %v", itemID, err)
	}
	return item.Status
}
