package controller

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/devoriginal/account-backend/internal/app/service"
	apperrors "github.com/devoriginal/account-backend/internal/errors"
	"github.com/devoriginal/account-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// multipartOverhead leaves room for boundaries and headers around the file part
const multipartOverhead = 64 << 10

type PhotoController struct {
	photoService service.PhotoService
	tempDir      string
	maxSize      int64
}

func NewPhotoController(photoService service.PhotoService, tempDir string, maxSize int64) *PhotoController {
	return &PhotoController{
		photoService: photoService,
		tempDir:      tempDir,
		maxSize:      maxSize,
	}
}

// UploadPhoto replaces the authenticated account's photo with the multipart "file" field
// PUT /api/v1/auth/profile-picture
func (ctrl *PhotoController) UploadPhoto(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.maxSize+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			ctrl.respondTooLarge(c)
			return
		}
		log.Warn("Missing photo upload", map[string]interface{}{
			"account_id": accountID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "File field is required")
		return
	}

	if file.Size > ctrl.maxSize {
		log.Warn("Photo upload too large", map[string]interface{}{
			"account_id": accountID,
			"size":       file.Size,
		})
		ctrl.respondTooLarge(c)
		return
	}

	if err := os.MkdirAll(ctrl.tempDir, 0o755); err != nil {
		log.Error("Failed to prepare upload directory", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to save the upload")
		return
	}

	tempPath := filepath.Join(ctrl.tempDir, "upload-"+uuid.NewString())
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		log.Error("Failed to save upload", err, map[string]interface{}{
			"account_id": accountID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to save the upload")
		return
	}

	account, err := ctrl.photoService.SetPhoto(c.Request.Context(), accountID, service.Upload{
		TempPath:    tempPath,
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		apperrors.RespondWithServiceError(c, err, "upload photo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewAccountResponse(account)})
}

// GetPhoto streams the authenticated account's photo or the placeholder
// GET /api/v1/auth/photo
func (ctrl *PhotoController) GetPhoto(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	rc, ext, err := ctrl.photoService.GetPhoto(c.Request.Context(), accountID)
	if err != nil {
		apperrors.RespondWithServiceError(c, err, "get photo")
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, photoContentType(ext), rc, nil)
}

// DeletePhoto clears the authenticated account's photo
// DELETE /api/v1/auth/photo
func (ctrl *PhotoController) DeletePhoto(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	account, err := ctrl.photoService.RemovePhoto(c.Request.Context(), accountID)
	if err != nil {
		apperrors.RespondWithServiceError(c, err, "remove photo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewAccountResponse(account)})
}

func (ctrl *PhotoController) respondTooLarge(c *gin.Context) {
	apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge, "File exceeds the upload size limit")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func photoContentType(ext string) string {
	if ext == "jpg" {
		ext = "jpeg"
	}
	return "image/" + ext
}
