package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/devoriginal/account-backend/internal/app/model"
	"github.com/devoriginal/account-backend/internal/app/repository"
	apperrors "github.com/devoriginal/account-backend/internal/errors"
	"github.com/devoriginal/account-backend/internal/storage"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrInvalidPhotoType = apperrors.Validation(apperrors.UploadInvalidFileType, "Only image files are allowed")
	ErrPhotoNotFound    = apperrors.Missing(apperrors.PhotoNotFound, "Photo not found")
)

// Upload is a file already written to the temp upload directory
type Upload struct {
	TempPath    string
	ContentType string // as declared by the client
}

type PhotoService interface {
	SetPhoto(ctx context.Context, accountID uint, upload Upload) (*model.Account, error)
	RemovePhoto(ctx context.Context, accountID uint) (*model.Account, error)
	// GetPhoto returns the photo bytes and their extension without the dot.
	// The caller closes the reader.
	GetPhoto(ctx context.Context, accountID uint) (io.ReadCloser, string, error)
}

type photoService struct {
	accountRepo  repository.AccountRepository
	store        storage.PhotoStorage
	defaultPhoto string
}

func NewPhotoService(accountRepo repository.AccountRepository, store storage.PhotoStorage, defaultPhoto string) PhotoService {
	return &photoService{
		accountRepo:  accountRepo,
		store:        store,
		defaultPhoto: defaultPhoto,
	}
}

// PhotoName is the stored object name for an account's photo
func PhotoName(accountID uint, ext string) string {
	return fmt.Sprintf("photo-%d.%s", accountID, ext)
}

func (s *photoService) SetPhoto(ctx context.Context, accountID uint, upload Upload) (*model.Account, error) {
	discard := func() {
		if err := os.Remove(upload.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove rejected upload", map[string]interface{}{
				"path":  upload.TempPath,
				"error": err.Error(),
			})
		}
	}

	if !strings.HasPrefix(strings.ToLower(upload.ContentType), "image/") {
		logger.Warn("Photo rejected: declared type is not an image", map[string]interface{}{
			"account_id":   accountID,
			"content_type": upload.ContentType,
		})
		discard()
		return nil, ErrInvalidPhotoType
	}

	detected, err := mimetype.DetectFile(upload.TempPath)
	if err != nil {
		discard()
		return nil, fmt.Errorf("failed to inspect upload: %w", err)
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		logger.Warn("Photo rejected: content is not an image", map[string]interface{}{
			"account_id": accountID,
			"detected":   detected.String(),
		})
		discard()
		return nil, ErrInvalidPhotoType
	}

	account, err := s.accountRepo.FindByID(accountID)
	if err != nil {
		discard()
		return nil, mapAccountLookupError(err)
	}

	name := PhotoName(accountID, strings.TrimPrefix(detected.Extension(), "."))

	// the previous object goes only after the new one is stored and referenced
	if err := s.store.Store(ctx, upload.TempPath, name); err != nil {
		discard()
		return nil, err
	}

	if err := s.accountRepo.UpdatePhoto(accountID, &name); err != nil {
		return nil, mapAccountLookupError(err)
	}

	if account.Photo != nil && *account.Photo != name {
		if err := s.store.Remove(ctx, *account.Photo); err != nil {
			logger.Warn("Failed to remove previous photo", map[string]interface{}{
				"account_id": accountID,
				"photo":      *account.Photo,
				"error":      err.Error(),
			})
		}
	}

	logger.Info("Profile photo updated", map[string]interface{}{
		"account_id": accountID,
		"photo":      name,
	})

	account.Photo = &name
	account.PasswordHash = ""
	return account, nil
}

func (s *photoService) RemovePhoto(ctx context.Context, accountID uint) (*model.Account, error) {
	account, err := s.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, mapAccountLookupError(err)
	}

	if account.Photo != nil {
		if err := s.store.Remove(ctx, *account.Photo); err != nil {
			return nil, err
		}
		if err := s.accountRepo.UpdatePhoto(accountID, nil); err != nil {
			return nil, mapAccountLookupError(err)
		}
		logger.Info("Profile photo removed", map[string]interface{}{
			"account_id": accountID,
		})
	}

	account.Photo = nil
	account.PasswordHash = ""
	return account, nil
}

func (s *photoService) GetPhoto(ctx context.Context, accountID uint) (io.ReadCloser, string, error) {
	account, err := s.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, "", mapAccountLookupError(err)
	}

	name := s.defaultPhoto
	if account.Photo != nil {
		name = *account.Photo
	}

	rc, err := s.store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			logger.Warn("Photo reference points to a missing object", map[string]interface{}{
				"account_id": accountID,
				"photo":      name,
			})
			return nil, "", ErrPhotoNotFound
		}
		return nil, "", err
	}

	return rc, strings.TrimPrefix(filepath.Ext(name), "."), nil
}
