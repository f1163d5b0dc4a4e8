package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/devoriginal/account-backend/internal/app/repository"
	"github.com/devoriginal/account-backend/internal/app/service"
	"github.com/devoriginal/account-backend/internal/db"
	"github.com/devoriginal/account-backend/internal/middleware"
	"github.com/devoriginal/account-backend/internal/storage"
	"github.com/devoriginal/account-backend/pkg/mailer"
	"github.com/devoriginal/account-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 1 << 10

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type controllerTestEnv struct {
	router   *gin.Engine
	accounts service.AccountService
	auth     service.AuthService
	mailer   *recordingMailer
	photoDir string
	tempDir  string
}

func setupControllerTest(t *testing.T) *controllerTestEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	photoDir := t.TempDir()
	tempDir := t.TempDir()
	store, err := storage.NewLocalStorage(photoDir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(photoDir, "default.png"), pngBytes, 0o644))

	m := &recordingMailer{}
	tokens := util.NewTokenManager("test-secret", time.Hour)
	accountRepo := repository.NewAccountRepository(testDB)
	accounts := service.NewAccountService(accountRepo, m)
	auth := service.NewAuthService(accounts, tokens)
	resets := service.NewPasswordResetService(accounts, repository.NewPasswordResetRepository(testDB), tokens, m,
		service.PasswordResetConfig{ResetURL: "http://localhost:3000/recovery"})
	photos := service.NewPhotoService(accountRepo, store, "default.png")

	authCtrl := NewAuthController(accounts, auth, resets)
	userCtrl := NewUserController(accounts)
	photoCtrl := NewPhotoController(photos, tempDir, testMaxUpload)
	authMiddleware := middleware.NewAuthMiddleware(auth)
	authenticated := authMiddleware.Authenticate()

	router := gin.New()
	router.POST("/auth", authCtrl.CheckEmail)
	router.POST("/auth/register", authCtrl.Register)
	router.POST("/auth/login", authCtrl.Login)
	router.POST("/auth/forget", authCtrl.Forget)
	router.POST("/auth/password-reset", authCtrl.PasswordReset)
	router.GET("/auth/me", authenticated, authCtrl.GetMe)
	router.DELETE("/auth/me", authenticated, authCtrl.DeleteMe)
	router.PUT("/auth/profile", authenticated, authCtrl.UpdateProfile)
	router.PUT("/auth/password", authenticated, authCtrl.ChangePassword)
	router.PUT("/auth/profile-picture", authenticated, photoCtrl.UploadPhoto)
	router.GET("/auth/photo", authenticated, photoCtrl.GetPhoto)
	router.DELETE("/auth/photo", authenticated, photoCtrl.DeletePhoto)
	router.GET("/users/:id", authenticated, userCtrl.GetByID)
	router.GET("/users/email/:email", authenticated, userCtrl.GetByEmail)
	router.PUT("/users/:id", authenticated, authMiddleware.RequireSelf("id"), userCtrl.Update)

	return &controllerTestEnv{
		router:   router,
		accounts: accounts,
		auth:     auth,
		mailer:   m,
		photoDir: photoDir,
		tempDir:  tempDir,
	}
}

func (e *controllerTestEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *controllerTestEnv) upload(token, contentType string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="photo"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, _ := mw.CreatePart(h)
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/auth/profile-picture", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its ID and token
func (e *controllerTestEnv) register(t *testing.T, name, email, password string) (uint, string) {
	t.Helper()
	w := e.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User  AccountResponse `json:"user"`
		Token string          `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User.ID, resp.Token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
