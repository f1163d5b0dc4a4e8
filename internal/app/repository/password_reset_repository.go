package repository

import (
	"time"

	"github.com/devoriginal/account-backend/internal/app/model"
	"github.com/devoriginal/account-backend/pkg/logger"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(request *model.PasswordResetRequest) error
	FindUnconsumedByToken(token string) (*model.PasswordResetRequest, error)
	MarkConsumed(id uint, at time.Time) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(request *model.PasswordResetRequest) error {
	logger.Debug("Creating password reset request in database", map[string]interface{}{
		"account_id": request.AccountID,
	})

	if err := r.db.Create(request).Error; err != nil {
		logger.Error("Failed to create password reset request in database", err, map[string]interface{}{
			"account_id": request.AccountID,
		})
		return err
	}

	logger.Debug("Password reset request created in database", map[string]interface{}{
		"id":         request.ID,
		"account_id": request.AccountID,
	})
	return nil
}

// FindUnconsumedByToken returns gorm.ErrRecordNotFound both for unknown and consumed tokens
func (r *passwordResetRepository) FindUnconsumedByToken(token string) (*model.PasswordResetRequest, error) {
	logger.Debug("Finding unconsumed password reset request by token in database")

	var request model.PasswordResetRequest
	err := r.db.Where("token = ? AND consumed_at IS NULL", token).First(&request).Error
	if err != nil {
		logLookupError("Failed to find password reset request by token in database", err, nil)
		return nil, err
	}

	return &request, nil
}

// MarkConsumed sets consumed_at once; a second call reports gorm.ErrRecordNotFound
func (r *passwordResetRepository) MarkConsumed(id uint, at time.Time) error {
	logger.Debug("Marking password reset request as consumed in database", map[string]interface{}{
		"id": id,
	})

	result := r.db.Model(&model.PasswordResetRequest{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	if result.Error != nil {
		logger.Error("Failed to mark password reset request as consumed in database", result.Error, map[string]interface{}{
			"id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
