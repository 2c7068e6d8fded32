package service

import (
	"concordvault/internal/model"
	"concordvault/internal/repo"
	"concordvault/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileRecord is the caller-facing view of a stored file. Storage ids
// never leave the service.
type FileRecord struct {
	ID             string
	FileName       string
	ContentType    string
	FileSize       int64
	UploadedAt     time.Time
	HasActiveShare bool
}

// ShareRecord is the result of creating or regenerating a share link.
type ShareRecord struct {
	ShareCode string
	ExpiresAt time.Time
	FileName  string
}

// Download carries a blob stream back to the caller. The caller closes
// Content; it is a pass-through stream, never a buffered copy.
type Download struct {
	Content     io.ReadCloser
	FileName    string
	ContentType string
	FileSize    int64
}

// FileService orchestrates blob store, file metadata and the share
// registry, and enforces the authorization policy on every call.
type FileService struct {
	files  repo.FileRepository
	shares repo.ShareRepository
	users  repo.UserRepository
	blobs  storage.BlobStore
	codes  CodeGenerator
	logger *zap.SugaredLogger

	// injectable clock for expiry tests
	now func() time.Time
}

func NewFileService(
	files repo.FileRepository,
	shares repo.ShareRepository,
	users repo.UserRepository,
	blobs storage.BlobStore,
	codes CodeGenerator,
	logger *zap.SugaredLogger,
) *FileService {
	return &FileService{
		files:  files,
		shares: shares,
		users:  users,
		blobs:  blobs,
		codes:  codes,
		logger: logger,
		now:    time.Now,
	}
}

// Upload stores the stream and records its metadata for the owner.
// The blob is written first: a crash in between leaks a blob, never a
// metadata row pointing at missing bytes.
func (s *FileService) Upload(ctx context.Context, ownerID, originalName, contentType string, size int64, r io.Reader) (*FileRecord, error) {
	if strings.TrimSpace(originalName) == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrValidation)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative file size", ErrValidation)
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("verify owner: %w", err)
	}

	storageID, written, err := s.blobs.Save(ctx, r, originalName)
	if err != nil {
		return nil, fmt.Errorf("save blob: %w", err)
	}
	if size > 0 && size != written {
		s.logger.Warnw("declared upload size differs from written bytes",
			"declared", size, "written", written, "name", originalName)
	}

	file := &model.File{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		FileName:         filepath.Base(originalName),
		OriginalFileName: originalName,
		ContentType:      contentType,
		FileSize:         written,
		StorageID:        storageID,
		UploadedAt:       s.now().UTC(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		// take the just-written blob back out so the failed upload
		// leaves nothing addressable behind
		if _, delErr := s.blobs.Delete(ctx, storageID); delErr != nil {
			s.logger.Errorw("blob cleanup after metadata failure",
				"storage_id", storageID, "error", delErr)
		}
		return nil, fmt.Errorf("create file record: %w", err)
	}

	return s.record(file), nil
}

// List returns the owner's files, newest first, each annotated with the
// live state of its share.
func (s *FileService) List(ctx context.Context, ownerID string) ([]FileRecord, error) {
	files, err := s.files.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	records := make([]FileRecord, 0, len(files))
	for i := range files {
		records = append(records, *s.record(&files[i]))
	}
	return records, nil
}

// Rename updates the display name. Owner or admin only.
func (s *FileService) Rename(ctx context.Context, actorID string, role model.Role, fileID, newName string) (*FileRecord, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrValidation)
	}
	file, err := s.loadForActor(ctx, OpRename, actorID, role, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.files.UpdateName(ctx, file.ID, newName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rename file: %w", err)
	}
	file.FileName = newName
	return s.record(file), nil
}

// Delete removes the file. Metadata (with its share) goes first inside
// one transaction; the blob delete afterwards is best effort. A
// failure there is logged, the file is gone from the user's view either
// way and a dangling blob is a cleanup-job concern.
func (s *FileService) Delete(ctx context.Context, actorID string, role model.Role, fileID string) error {
	file, err := s.loadForActor(ctx, OpDelete, actorID, role, fileID)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, file.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete file record: %w", err)
	}
	if _, err := s.blobs.Delete(ctx, file.StorageID); err != nil {
		s.logger.Errorw("blob delete failed after metadata removal",
			"file_id", file.ID, "error", err)
	}
	return nil
}

// CreateShare mints a share link for the file, replacing any previous
// one. The old code stops resolving immediately. Owner only; the
// policy denies admins here.
func (s *FileService) CreateShare(ctx context.Context, actorID string, role model.Role, fileID string, expirationDays int) (*ShareRecord, error) {
	if expirationDays < 1 {
		return nil, fmt.Errorf("%w: expiration days must be positive", ErrValidation)
	}
	file, err := s.loadForActor(ctx, OpShare, actorID, role, fileID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(time.Duration(expirationDays) * 24 * time.Hour)

	for attempt := 1; attempt <= shareCodeAttempts; attempt++ {
		code, err := s.codes.NewCode()
		if err != nil {
			return nil, fmt.Errorf("generate share code: %w", err)
		}
		share := &model.Share{
			ID:        uuid.NewString(),
			FileID:    file.ID,
			ShareCode: code,
			CreatedAt: now,
			ExpiresAt: expiresAt,
		}
		err = s.shares.Replace(ctx, share)
		if err == nil {
			return &ShareRecord{ShareCode: code, ExpiresAt: expiresAt, FileName: file.FileName}, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("store share: %w", err)
		}
		s.logger.Warnw("share code collision, regenerating",
			"file_id", file.ID, "attempt", attempt)
	}
	return nil, ErrCodeCollision
}

// DownloadByID streams the file to its owner or an admin.
func (s *FileService) DownloadByID(ctx context.Context, actorID string, role model.Role, fileID string) (*Download, error) {
	file, err := s.loadForActor(ctx, OpDownload, actorID, role, fileID)
	if err != nil {
		return nil, err
	}
	return s.openDownload(ctx, file)
}

// DownloadByShareCode streams the file behind an active share code.
// No actor check: the code is the credential. Callers must not reveal
// whether a failing code is unknown or merely expired.
func (s *FileService) DownloadByShareCode(ctx context.Context, code string) (*Download, error) {
	share, err := s.shares.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve share code: %w", err)
	}
	if !share.ActiveAt(s.now()) {
		return nil, ErrShareExpired
	}
	file, err := s.files.GetByID(ctx, share.FileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load shared file: %w", err)
	}
	return s.openDownload(ctx, file)
}

// loadForActor resolves the file and applies the authorization policy.
func (s *FileService) loadForActor(ctx context.Context, op Operation, actorID string, role model.Role, fileID string) (*model.File, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load file: %w", err)
	}
	if !Allowed(op, file.OwnerID == actorID, role) {
		return nil, ErrForbidden
	}
	return file, nil
}

func (s *FileService) openDownload(ctx context.Context, file *model.File) (*Download, error) {
	rc, err := s.blobs.Open(ctx, file.StorageID)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) || errors.Is(err, storage.ErrBadStorageID) {
			// metadata can outlive a vanished blob; to the caller the
			// file simply is not there
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return &Download{
		Content:     rc,
		FileName:    file.OriginalFileName,
		ContentType: file.ContentType,
		FileSize:    file.FileSize,
	}, nil
}

func (s *FileService) record(f *model.File) *FileRecord {
	return &FileRecord{
		ID:             f.ID,
		FileName:       f.FileName,
		ContentType:    f.ContentType,
		FileSize:       f.FileSize,
		UploadedAt:     f.UploadedAt,
		HasActiveShare: f.Share != nil && f.Share.ActiveAt(s.now()),
	}
}
