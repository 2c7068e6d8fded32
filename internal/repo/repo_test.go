package repo

import (
	"concordvault/internal/model"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB opens an in-memory SQLite (modernc.org/sqlite) database and
// migrates all models. Each test gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.File{}, &model.Share{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return db
}

// seedUser inserts a user row directly.
func seedUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedFile inserts a file row directly.
func seedFile(t *testing.T, db *gorm.DB, ownerID, name string, uploadedAt time.Time) *model.File {
	t.Helper()
	f := &model.File{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		FileName:         name,
		OriginalFileName: name,
		ContentType:      "application/octet-stream",
		FileSize:         int64(len(name)),
		StorageID:        uuid.NewString(),
		UploadedAt:       uploadedAt,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("seed file: %v", err)
	}
	return f
}
