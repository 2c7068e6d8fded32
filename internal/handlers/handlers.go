package handlers

import (
	"concordvault/internal/config"
	"concordvault/internal/middleware"
	"concordvault/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler wires the router: middleware chain, then all routes.
func NewHandler(
	userService *service.UserService,
	fileService *service.FileService,
	adminService *service.AdminService,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(cfg.AuthSecret))

	userHandler := NewUserHandler(userService, logger, cfg)
	fileHandler := NewFileHandler(fileService, logger, cfg)
	adminHandler := NewAdminHandler(adminService, logger)

	// Account
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/logout", userHandler.Logout)
	r.Post("/api/user/password", userHandler.ChangePassword)
	r.Get("/api/user/me", userHandler.Me)

	// Files and shares
	r.Get("/api/files", fileHandler.List)
	r.Post("/api/files/upload", fileHandler.Upload)
	r.Patch("/api/files/{fileID}/rename", fileHandler.Rename)
	r.Delete("/api/files/{fileID}", fileHandler.Delete)
	r.Get("/api/files/{fileID}/download", fileHandler.Download)
	r.Post("/api/files/{fileID}/share", fileHandler.CreateShare)

	// Anonymous share redemption; the code is the credential
	r.Get("/api/share/{code}", fileHandler.DownloadByShareCode)

	// Admin
	r.Get("/api/admin/users", adminHandler.ListUsers)
	r.Get("/api/admin/users/{userID}", adminHandler.UserDetails)
	r.Post("/api/admin/users/{userID}/reset-password", adminHandler.ResetUserPassword)
	r.Delete("/api/admin/users/{userID}", adminHandler.DeleteUser)
	r.Get("/api/admin/users/{userID}/files", adminHandler.ListUserFiles)
	r.Get("/api/admin/files", adminHandler.ListFiles)
	r.Delete("/api/admin/files/{fileID}", adminHandler.DeleteFile)
	r.Get("/api/admin/stats", adminHandler.Stats)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return &Handler{Router: r}
}
