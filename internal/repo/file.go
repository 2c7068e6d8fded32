package repo

import (
	"concordvault/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// FileRepository is the persistence contract for file metadata.
type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	// GetByID loads a file with its share preloaded.
	GetByID(ctx context.Context, id string) (*model.File, error)
	// ListByOwner returns the owner's files, newest first, shares preloaded.
	ListByOwner(ctx context.Context, ownerID string) ([]model.File, error)
	ListAll(ctx context.Context) ([]model.File, error)
	UpdateName(ctx context.Context, id, name string) error
	// Delete removes the metadata row and its share row in one
	// transaction. gorm.ErrRecordNotFound when the file is already gone.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountUploadedSince(ctx context.Context, since time.Time) (int64, error)
	SumSizes(ctx context.Context) (int64, error)
}

type fileRepo struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, file *model.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	var file model.File
	if err := r.db.WithContext(ctx).Preload("Share").First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Preload("Share").
		Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepo) ListAll(ctx context.Context) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Preload("Share").
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepo) UpdateName(ctx context.Context, id, name string) error {
	tx := r.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Update("file_name", name)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the share goes with its file; done explicitly so the invariant
		// does not depend on database-level cascades
		if err := tx.Where("file_id = ?", id).Delete(&model.Share{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.File{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *fileRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.File{}).Count(&n).Error
	return n, err
}

func (r *fileRepo) CountUploadedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.File{}).Where("uploaded_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *fileRepo) SumSizes(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.File{}).
		Select("COALESCE(SUM(file_size), 0)").Scan(&total).Error
	return total, err
}
