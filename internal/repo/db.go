package repo

import (
	"concordvault/internal/model"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the database connection and migrates all server models.
// TranslateError is required: the share registry relies on
// gorm.ErrDuplicatedKey to signal share-code collisions.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.File{}, &model.Share{}); err != nil {
		return nil, err
	}
	return db, nil
}

// duplicateKey normalizes unique-index violations to
// gorm.ErrDuplicatedKey. The postgres driver translates them via
// TranslateError; the sqlite driver reports the raw constraint error,
// which would otherwise slip past errors.Is checks upstream.
func duplicateKey(err error) error {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}
