package handlers

import (
	"concordvault/internal/config"
	"concordvault/internal/middleware"
	"concordvault/internal/service"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// UserHandler serves registration, login and account endpoints.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type userDTO struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	CreatedAt   string  `json:"created_at"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeFail(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "registration successful", toUserDTO(user.ID, user.Email, string(user.Role), user.CreatedAt, user.LastLoginAt))
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, user.Role, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("set login cookie", "user_id", user.ID, "error", err)
		writeFail(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, "login successful", toUserDTO(user.ID, user.Email, string(user.Role), user.CreatedAt, user.LastLoginAt))
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	writeOK(w, "logged out", nil)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeFail(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	if err := h.UserService.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "password changed successfully", nil)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	user, err := h.UserService.Get(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "ok", toUserDTO(user.ID, user.Email, string(user.Role), user.CreatedAt, user.LastLoginAt))
}

func toUserDTO(id, email, role string, createdAt time.Time, lastLoginAt *time.Time) userDTO {
	dto := userDTO{
		ID:        id,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
	if lastLoginAt != nil {
		s := lastLoginAt.UTC().Format(time.RFC3339)
		dto.LastLoginAt = &s
	}
	return dto
}
