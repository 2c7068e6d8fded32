package handlers

import (
	"bytes"
	"concordvault/internal/config"
	"concordvault/internal/model"
	"concordvault/internal/repo"
	"concordvault/internal/service"
	"concordvault/internal/storage"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// testEnv runs the full router against in-memory SQLite and a disk
// blob store, the same wiring main uses minus the listener.
type testEnv struct {
	router http.Handler
	db     *gorm.DB
	admin  *service.AdminService
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.File{}, &model.Share{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}

	blobs, err := storage.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}

	cfg := &config.Config{
		DatabaseDSN:     dsn,
		AuthSecret:      "test-secret",
		BaseURL:         "localhost:8080",
		StorageBackend:  "disk",
		StorageDir:      "unused",
		UploadMaxSizeMB: 10,
	}
	logger := zap.NewNop().Sugar()

	userRepo := repo.NewUserRepository(db)
	fileRepo := repo.NewFileRepository(db)
	shareRepo := repo.NewShareRepository(db)

	fileService := service.NewFileService(fileRepo, shareRepo, userRepo, blobs, service.NewCodeGenerator(), logger)
	userService := service.NewUserService(userRepo)
	adminService := service.NewAdminService(userRepo, fileRepo, fileService, logger)

	h := NewHandler(userService, fileService, adminService, logger, cfg)
	return &testEnv{router: h.Router, db: db, admin: adminService, cfg: cfg}
}

func (e *testEnv) doJSON(t *testing.T, method, path string, cookie *http.Cookie, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates an account over the API and returns its
// session cookie.
func (e *testEnv) registerAndLogin(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/user/register", nil, map[string]string{
		"email": email, "password": password, "confirm_password": password,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return e.login(t, email, password)
}

func (e *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/user/login", nil, map[string]string{
		"email": email, "password": password,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "vault_token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set the auth cookie")
	return nil
}

func (e *testEnv) upload(t *testing.T, cookie *http.Cookie, fileName, content string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.ID)
	return resp.Data.ID
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, string, json.RawMessage) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Success, resp.Message, resp.Data
}
