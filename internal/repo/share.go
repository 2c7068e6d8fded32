package repo

import (
	"concordvault/internal/model"
	"context"

	"gorm.io/gorm"
)

// ShareRepository is the share registry: at most one share row per file,
// share codes unique across the registry.
type ShareRepository interface {
	// Replace atomically swaps the file's share for the given one.
	// Any previous share row is deleted in the same transaction, so two
	// racing callers can never leave two live shares for one file.
	// A share-code uniqueness violation surfaces as gorm.ErrDuplicatedKey.
	Replace(ctx context.Context, share *model.Share) error
	GetByCode(ctx context.Context, code string) (*model.Share, error)
	GetByFileID(ctx context.Context, fileID string) (*model.Share, error)
}

type shareRepo struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepo{db: db}
}

func (r *shareRepo) Replace(ctx context.Context, share *model.Share) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", share.FileID).Delete(&model.Share{}).Error; err != nil {
			return err
		}
		return tx.Create(share).Error
	})
	return duplicateKey(err)
}

func (r *shareRepo) GetByCode(ctx context.Context, code string) (*model.Share, error) {
	var share model.Share
	if err := r.db.WithContext(ctx).First(&share, "share_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *shareRepo) GetByFileID(ctx context.Context, fileID string) (*model.Share, error) {
	var share model.Share
	if err := r.db.WithContext(ctx).First(&share, "file_id = ?", fileID).Error; err != nil {
		return nil, err
	}
	return &share, nil
}
