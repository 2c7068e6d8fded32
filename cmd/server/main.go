package main

import (
	"concordvault/internal/config"
	"concordvault/internal/handlers"
	"concordvault/internal/middleware"
	"concordvault/internal/repo"
	"concordvault/internal/service"
	"concordvault/internal/storage"
	"context"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	middleware.SetLogger(sugar)
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("failed to sync logger", "error", err)
		}
	}()

	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("invalid configuration", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize blob store", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	fileRepo := repo.NewFileRepository(gormDB)
	shareRepo := repo.NewShareRepository(gormDB)

	userService := service.NewUserService(userRepo)
	fileService := service.NewFileService(fileRepo, shareRepo, userRepo, blobs, service.NewCodeGenerator(), sugar)
	adminService := service.NewAdminService(userRepo, fileRepo, fileService, sugar)

	if err := adminService.EnsureDefaultAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		sugar.Fatalw("failed to ensure default admin", "error", err)
	}

	h := handlers.NewHandler(userService, fileService, adminService, sugar, cfg)

	sugar.Infow("starting server",
		"addr", cfg.BaseURL,
		"storage_backend", cfg.StorageBackend,
		"upload_max_mb", cfg.UploadMaxSizeMB,
	)

	if err := http.ListenAndServe(cfg.BaseURL, h.Router); err != nil {
		sugar.Fatalw("server failed", "error", err)
	}
}

// newBlobStore picks the configured blob backend. The rest of the
// server only ever sees the storage.BlobStore contract.
func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	if cfg.StorageBackend == "s3" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3KeyPrefix), nil
	}
	return storage.NewDiskStore(cfg.StorageDir)
}
