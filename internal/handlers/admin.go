package handlers

import (
	"concordvault/internal/service"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler serves the administrator endpoints. Every route is
// gated on the admin role from the auth cookie.
type AdminHandler struct {
	AdminService *service.AdminService
	Logger       *zap.SugaredLogger
}

func NewAdminHandler(adminService *service.AdminService, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{AdminService: adminService, Logger: logger}
}

type userSummaryDTO struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	Role             string  `json:"role"`
	CreatedAt        string  `json:"created_at"`
	LastLoginAt      *string `json:"last_login_at,omitempty"`
	FilesCount       int     `json:"files_count"`
	TotalStorageUsed int64   `json:"total_storage_used"`
}

func toUserSummaryDTO(s *service.UserSummary) userSummaryDTO {
	dto := userSummaryDTO{
		ID:               s.ID,
		Email:            s.Email,
		Role:             string(s.Role),
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
		FilesCount:       s.FilesCount,
		TotalStorageUsed: s.TotalStorageUsed,
	}
	if s.LastLoginAt != nil {
		t := s.LastLoginAt.UTC().Format(time.RFC3339)
		dto.LastLoginAt = &t
	}
	return dto
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	summaries, err := h.AdminService.ListUsers(r.Context())
	if err != nil {
		h.Logger.Errorw("admin list users", "error", err)
		writeServiceError(w, err)
		return
	}
	out := make([]userSummaryDTO, 0, len(summaries))
	for i := range summaries {
		out = append(out, toUserSummaryDTO(&summaries[i]))
	}
	writeOK(w, "ok", out)
}

func (h *AdminHandler) UserDetails(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	summary, err := h.AdminService.UserDetails(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "ok", toUserSummaryDTO(summary))
}

type resetPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *AdminHandler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeFail(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	if err := h.AdminService.ResetUserPassword(r.Context(), chi.URLParam(r, "userID"), req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "user password reset successfully", nil)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "userID")
	if userID == id.UserID {
		writeFail(w, http.StatusBadRequest, "administrators cannot delete their own account")
		return
	}
	if err := h.AdminService.DeleteUser(r.Context(), id.UserID, userID); err != nil {
		h.Logger.Errorw("admin delete user", "user_id", userID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeOK(w, "user deleted successfully", nil)
}

func (h *AdminHandler) ListUserFiles(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	records, err := h.AdminService.ListUserFiles(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "ok", toFileDTOs(records))
}

func (h *AdminHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	records, err := h.AdminService.ListAllFiles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "ok", toFileDTOs(records))
}

func (h *AdminHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	if err := h.AdminService.DeleteFile(r.Context(), id.UserID, chi.URLParam(r, "fileID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "file deleted successfully", nil)
}

type statsDTO struct {
	TotalUsers       int64 `json:"total_users"`
	TotalFiles       int64 `json:"total_files"`
	TotalStorageUsed int64 `json:"total_storage_used"`
	NewUsersLastWeek int64 `json:"new_users_last_week"`
	NewFilesLastWeek int64 `json:"new_files_last_week"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	stats, err := h.AdminService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "ok", statsDTO{
		TotalUsers:       stats.TotalUsers,
		TotalFiles:       stats.TotalFiles,
		TotalStorageUsed: stats.TotalStorageUsed,
		NewUsersLastWeek: stats.NewUsersLastWeek,
		NewFilesLastWeek: stats.NewFilesLastWeek,
	})
}
