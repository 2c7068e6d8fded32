package handlers

import (
	"concordvault/internal/config"
	"concordvault/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// invalidShareMessage is deliberately the same for unknown and expired
// codes so an outside prober cannot tell whether a code ever existed.
const invalidShareMessage = "share link is invalid or has expired"

// FileHandler serves upload, listing, rename, delete, download and
// share endpoints.
type FileHandler struct {
	FileService *service.FileService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewFileHandler(fileService *service.FileService, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{FileService: fileService, Logger: logger, Config: cfg}
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	records, err := h.FileService.List(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Errorw("list files", "user_id", id.UserID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeOK(w, "ok", toFileDTOs(records))
}

// Upload reads the multipart body part by part and hands the file part
// to the service as a stream; the body is never buffered whole.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	maxBody := int64(h.Config.UploadMaxSizeMB)*1024*1024 + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	mr, err := r.MultipartReader()
	if err != nil {
		writeFail(w, http.StatusBadRequest, "multipart form expected")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			writeFail(w, http.StatusBadRequest, "missing file part")
			return
		}
		if err != nil {
			writeFail(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		if part.FormName() != "file" {
			continue
		}

		contentType := part.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		declared := r.ContentLength

		record, err := h.FileService.Upload(r.Context(), id.UserID, part.FileName(), contentType, declared, part)
		part.Close()
		if err != nil {
			h.Logger.Errorw("upload failed", "user_id", id.UserID, "name", part.FileName(), "error", err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, apiResponse{Success: true, Message: "file uploaded successfully", Data: toFileDTO(record)})
		return
	}
}

type renameRequest struct {
	NewFileName string `json:"new_file_name"`
}

func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := h.FileService.Rename(r.Context(), id.UserID, id.Role, chi.URLParam(r, "fileID"), req.NewFileName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "file renamed successfully", toFileDTO(record))
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if err := h.FileService.Delete(r.Context(), id.UserID, id.Role, chi.URLParam(r, "fileID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "file deleted successfully", nil)
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	dl, err := h.FileService.DownloadByID(r.Context(), id.UserID, id.Role, chi.URLParam(r, "fileID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.stream(w, r, dl)
}

type createShareRequest struct {
	ExpirationDays int `json:"expiration_days"`
}

type shareDTO struct {
	ShareCode string `json:"share_code"`
	ExpiresAt string `json:"expires_at"`
	FileName  string `json:"file_name"`
}

func (h *FileHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req createShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := h.FileService.CreateShare(r.Context(), id.UserID, id.Role, chi.URLParam(r, "fileID"), req.ExpirationDays)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOK(w, "share link created", shareDTO{
		ShareCode: record.ShareCode,
		ExpiresAt: record.ExpiresAt.UTC().Format(time.RFC3339),
		FileName:  record.FileName,
	})
}

func (h *FileHandler) DownloadByShareCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	dl, err := h.FileService.DownloadByShareCode(r.Context(), code)
	if err != nil {
		// unknown and expired must be indistinguishable on the wire
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrShareExpired) {
			writeFail(w, http.StatusNotFound, invalidShareMessage)
			return
		}
		writeServiceError(w, err)
		return
	}
	h.stream(w, r, dl)
}

// stream copies the blob to the response. Client disconnects end the
// copy through the request context; the blob handle is always released.
func (h *FileHandler) stream(w http.ResponseWriter, r *http.Request, dl *service.Download) {
	defer dl.Content.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
		mime.QEncoding.Encode("utf-8", dl.FileName)))

	if _, err := io.Copy(w, dl.Content); err != nil {
		// headers are gone; nothing to send, just note the broken stream
		h.Logger.Warnw("download stream interrupted", "name", dl.FileName, "error", err)
	}
}
