package handlers

import (
	"concordvault/internal/middleware"
	"concordvault/internal/model"
	"concordvault/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// apiResponse is the uniform envelope of every JSON answer: a success
// flag, a human-readable message, optionally a payload.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Message: message})
}

// writeServiceError maps the service failure taxonomy onto HTTP status
// codes. Unrecognized errors become an opaque 500; the cause is already
// logged at the service layer.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeFail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeFail(w, http.StatusForbidden, "you do not have permission to perform this operation")
	case errors.Is(err, service.ErrNotFound):
		writeFail(w, http.StatusNotFound, "file not found")
	case errors.Is(err, service.ErrOwnerNotFound), errors.Is(err, service.ErrUserNotFound):
		writeFail(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEmailTaken):
		writeFail(w, http.StatusConflict, "this email is already in use")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeFail(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrCodeCollision):
		writeFail(w, http.StatusServiceUnavailable, "could not create share link, please retry")
	default:
		writeFail(w, http.StatusInternalServerError, "internal error")
	}
}

// requireIdentity rejects anonymous requests with 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}

// requireAdmin rejects anonymous requests with 401 and non-admins with 403.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "authentication required")
		return id, false
	}
	if id.Role != model.RoleAdmin {
		writeFail(w, http.StatusForbidden, "administrator access required")
		return id, false
	}
	return id, true
}

// fileDTO is the wire shape of a FileRecord.
type fileDTO struct {
	ID             string `json:"id"`
	FileName       string `json:"file_name"`
	ContentType    string `json:"content_type"`
	FileSize       int64  `json:"file_size"`
	UploadedAt     string `json:"uploaded_at"`
	HasActiveShare bool   `json:"has_active_share"`
}

func toFileDTO(rec *service.FileRecord) fileDTO {
	return fileDTO{
		ID:             rec.ID,
		FileName:       rec.FileName,
		ContentType:    rec.ContentType,
		FileSize:       rec.FileSize,
		UploadedAt:     rec.UploadedAt.UTC().Format(time.RFC3339),
		HasActiveShare: rec.HasActiveShare,
	}
}

func toFileDTOs(recs []service.FileRecord) []fileDTO {
	out := make([]fileDTO, 0, len(recs))
	for i := range recs {
		out = append(out, toFileDTO(&recs[i]))
	}
	return out
}
