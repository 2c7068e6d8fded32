package handlers

import (
	"concordvault/internal/model"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFileHandler_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	for _, probe := range []struct{ method, path string }{
		{http.MethodGet, "/api/files"},
		{http.MethodPost, "/api/files/upload"},
		{http.MethodDelete, "/api/files/some-id"},
		{http.MethodGet, "/api/files/some-id/download"},
	} {
		rec := env.doJSON(t, probe.method, probe.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", probe.method, probe.path)
	}
}

func TestFileHandler_UploadListDownload(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerAndLogin(t, "owner@example.com", "secret123")

	fileID := env.upload(t, cookie, "notes.txt", "remember the milk")

	rec := env.doJSON(t, http.MethodGet, "/api/files", cookie, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, _, data := decodeEnvelope(t, rec)
	var files []struct {
		ID             string `json:"id"`
		FileName       string `json:"file_name"`
		FileSize       int64  `json:"file_size"`
		HasActiveShare bool   `json:"has_active_share"`
	}
	assert.NoError(t, json.Unmarshal(data, &files))
	assert.Len(t, files, 1)
	assert.Equal(t, fileID, files[0].ID)
	assert.Equal(t, "notes.txt", files[0].FileName)
	assert.Equal(t, int64(len("remember the milk")), files[0].FileSize)
	assert.False(t, files[0].HasActiveShare)

	rec = env.doJSON(t, http.MethodGet, "/api/files/"+fileID+"/download", cookie, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "remember the milk", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestFileHandler_OwnerIsolation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerAndLogin(t, "owner@example.com", "secret123")
	intruder := env.registerAndLogin(t, "intruder@example.com", "secret123")

	fileID := env.upload(t, owner, "private.txt", "confidential")

	rec := env.doJSON(t, http.MethodGet, "/api/files/"+fileID+"/download", intruder, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSON(t, http.MethodDelete, "/api/files/"+fileID, intruder, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the intruder's listing stays empty
	rec = env.doJSON(t, http.MethodGet, "/api/files", intruder, nil)
	_, _, data := decodeEnvelope(t, rec)
	var files []json.RawMessage
	assert.NoError(t, json.Unmarshal(data, &files))
	assert.Empty(t, files)
}

func TestFileHandler_RenameAndDelete(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerAndLogin(t, "owner@example.com", "secret123")
	fileID := env.upload(t, cookie, "draft.txt", "v1")

	rec := env.doJSON(t, http.MethodPatch, "/api/files/"+fileID+"/rename", cookie, map[string]string{
		"new_file_name": "final.txt",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, _, data := decodeEnvelope(t, rec)
	var renamed struct {
		FileName string `json:"file_name"`
	}
	assert.NoError(t, json.Unmarshal(data, &renamed))
	assert.Equal(t, "final.txt", renamed.FileName)

	rec = env.doJSON(t, http.MethodDelete, "/api/files/"+fileID, cookie, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/api/files/"+fileID+"/download", cookie, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileHandler_ShareLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerAndLogin(t, "owner@example.com", "secret123")
	fileID := env.upload(t, cookie, "shared.txt", "public content")

	rec := env.doJSON(t, http.MethodPost, "/api/files/"+fileID+"/share", cookie, map[string]int{
		"expiration_days": 7,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, _, data := decodeEnvelope(t, rec)
	var share struct {
		ShareCode string `json:"share_code"`
		FileName  string `json:"file_name"`
	}
	assert.NoError(t, json.Unmarshal(data, &share))
	assert.Len(t, share.ShareCode, 8)
	assert.Equal(t, "shared.txt", share.FileName)

	// redemption needs no session
	rec = env.doJSON(t, http.MethodGet, "/api/share/"+share.ShareCode, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public content", rec.Body.String())

	// regenerating kills the first code
	rec = env.doJSON(t, http.MethodPost, "/api/files/"+fileID+"/share", cookie, map[string]int{
		"expiration_days": 7,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/api/share/"+share.ShareCode, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileHandler_Share_ZeroDaysRejected(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerAndLogin(t, "owner@example.com", "secret123")
	fileID := env.upload(t, cookie, "x.txt", "x")

	rec := env.doJSON(t, http.MethodPost, "/api/files/"+fileID+"/share", cookie, map[string]int{
		"expiration_days": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileHandler_Share_ExpiredAndUnknownIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerAndLogin(t, "owner@example.com", "secret123")
	fileID := env.upload(t, cookie, "old.txt", "stale")

	// plant an already expired share directly
	expired := &model.Share{
		ID:        uuid.NewString(),
		FileID:    fileID,
		ShareCode: "Gone1234",
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-24 * time.Hour),
	}
	assert.NoError(t, env.db.Create(expired).Error)

	expiredRec := env.doJSON(t, http.MethodGet, "/api/share/Gone1234", nil, nil)
	unknownRec := env.doJSON(t, http.MethodGet, "/api/share/Never111", nil, nil)

	assert.Equal(t, http.StatusNotFound, expiredRec.Code)
	assert.Equal(t, http.StatusNotFound, unknownRec.Code)
	// byte-identical answers keep probers from mapping the code space
	assert.Equal(t, unknownRec.Body.String(), expiredRec.Body.String())
}
