package service

import (
	"concordvault/internal/model"
	"concordvault/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserSummary is the admin view of one account.
type UserSummary struct {
	ID               string
	Email            string
	Role             model.Role
	CreatedAt        time.Time
	LastLoginAt      *time.Time
	FilesCount       int
	TotalStorageUsed int64
}

// PlatformStats are the simple platform-wide counters.
type PlatformStats struct {
	TotalUsers       int64
	TotalFiles       int64
	TotalStorageUsed int64
	NewUsersLastWeek int64
	NewFilesLastWeek int64
}

// AdminService covers account inspection and management. File mutations
// go through FileService with the admin role so every invariant,
// including blob cleanup, applies the same way.
type AdminService struct {
	users    repo.UserRepository
	fileRepo repo.FileRepository
	files    *FileService
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewAdminService(users repo.UserRepository, fileRepo repo.FileRepository, files *FileService, logger *zap.SugaredLogger) *AdminService {
	return &AdminService{users: users, fileRepo: fileRepo, files: files, logger: logger, now: time.Now}
}

// ListUsers returns every account with its file count and storage use.
func (s *AdminService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.ListWithFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, summarize(&users[i]))
	}
	return summaries, nil
}

// UserDetails returns one account's summary.
func (s *AdminService) UserDetails(ctx context.Context, userID string) (*UserSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	files, err := s.fileRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user files: %w", err)
	}
	user.Files = files
	summary := summarize(user)
	return &summary, nil
}

// ResetUserPassword sets a new password without the current one.
func (s *AdminService) ResetUserPassword(ctx context.Context, userID, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	return nil
}

// DeleteUser removes the account and everything it owns. Files are
// deleted one by one through FileService rather than a database
// cascade, so the blob-removal side effect runs for each of them.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	files, err := s.fileRepo.ListByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("list user files: %w", err)
	}
	for i := range files {
		if err := s.files.Delete(ctx, adminID, model.RoleAdmin, files[i].ID); err != nil {
			// a file vanishing mid-delete is fine; anything else aborts
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return fmt.Errorf("delete file %s of user %s: %w", files[i].ID, userID, err)
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Infow("user deleted", "user_id", userID, "files_removed", len(files))
	return nil
}

// ListAllFiles returns every file in the vault, newest first.
func (s *AdminService) ListAllFiles(ctx context.Context) ([]FileRecord, error) {
	files, err := s.fileRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	records := make([]FileRecord, 0, len(files))
	for i := range files {
		records = append(records, *s.files.record(&files[i]))
	}
	return records, nil
}

// ListUserFiles returns one user's files, same shape the owner sees.
func (s *AdminService) ListUserFiles(ctx context.Context, userID string) ([]FileRecord, error) {
	return s.files.List(ctx, userID)
}

// DeleteFile removes any user's file with admin privileges.
func (s *AdminService) DeleteFile(ctx context.Context, adminID, fileID string) error {
	return s.files.Delete(ctx, adminID, model.RoleAdmin, fileID)
}

// Stats returns the platform-wide counters.
func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	totalFiles, err := s.fileRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	totalStorage, err := s.fileRepo.SumSizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum storage: %w", err)
	}

	weekAgo := s.now().UTC().AddDate(0, 0, -7)
	newUsers, err := s.users.CountCreatedSince(ctx, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("count new users: %w", err)
	}
	newFiles, err := s.fileRepo.CountUploadedSince(ctx, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("count new files: %w", err)
	}

	return &PlatformStats{
		TotalUsers:       totalUsers,
		TotalFiles:       totalFiles,
		TotalStorageUsed: totalStorage,
		NewUsersLastWeek: newUsers,
		NewFilesLastWeek: newFiles,
	}, nil
}

// EnsureDefaultAdmin creates the bootstrap admin account once. A no-op
// when credentials are unset or any admin already exists.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	admins, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	s.logger.Infow("default admin created", "email", email)
	return nil
}

func summarize(u *model.User) UserSummary {
	var total int64
	for i := range u.Files {
		total += u.Files[i].FileSize
	}
	return UserSummary{
		ID:               u.ID,
		Email:            u.Email,
		Role:             u.Role,
		CreatedAt:        u.CreatedAt,
		LastLoginAt:      u.LastLoginAt,
		FilesCount:       len(u.Files),
		TotalStorageUsed: total,
	}
}
