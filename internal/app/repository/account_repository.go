package repository

import (
	"errors"

	"github.com/devoriginal/account-backend/internal/app/model"
	"github.com/devoriginal/account-backend/pkg/logger"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(account *model.Account) error
	FindByID(id uint) (*model.Account, error)
	FindByEmail(email string) (*model.Account, error)
	ExistsByEmail(email string) (bool, error)
	UpdateFields(id uint, fields map[string]interface{}) error
	UpdateProfileFields(accountID uint, fields map[string]interface{}) error
	UpdatePasswordHash(id uint, hash string) error
	UpdatePhoto(id uint, photo *string) error
	Delete(id uint) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts the account and its profile in one statement batch
func (r *accountRepository) Create(account *model.Account) error {
	logger.Debug("Creating account in database", map[string]interface{}{
		"email": account.Email,
	})

	if err := r.db.Create(account).Error; err != nil {
		logger.Error("Failed to create account in database", err, map[string]interface{}{
			"email": account.Email,
		})
		return err
	}

	logger.Debug("Account created in database", map[string]interface{}{
		"account_id": account.ID,
		"profile_id": account.Profile.ID,
	})
	return nil
}

func (r *accountRepository) FindByID(id uint) (*model.Account, error) {
	logger.Debug("Finding account by ID in database", map[string]interface{}{
		"account_id": id,
	})

	var account model.Account
	if err := r.db.Preload("Profile").First(&account, id).Error; err != nil {
		logLookupError("Failed to find account by ID in database", err, map[string]interface{}{
			"account_id": id,
		})
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) FindByEmail(email string) (*model.Account, error) {
	logger.Debug("Finding account by email in database", map[string]interface{}{
		"email": email,
	})

	var account model.Account
	if err := r.db.Preload("Profile").Where("email = ?", email).First(&account).Error; err != nil {
		logLookupError("Failed to find account by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		logger.Error("Failed to check account email in database", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

// UpdateFields applies only the given columns to the account row
func (r *accountRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.updates(r.db.Model(&model.Account{}).Where("id = ?", id), fields, map[string]interface{}{
		"account_id": id,
	})
}

// UpdateProfileFields applies only the given columns to the account's profile
func (r *accountRepository) UpdateProfileFields(accountID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.updates(r.db.Model(&model.Profile{}).Where("account_id = ?", accountID), fields, map[string]interface{}{
		"account_id": accountID,
		"profile":    true,
	})
}

func (r *accountRepository) UpdatePasswordHash(id uint, hash string) error {
	return r.updates(r.db.Model(&model.Account{}).Where("id = ?", id), map[string]interface{}{
		"password_hash": hash,
	}, map[string]interface{}{
		"account_id": id,
	})
}

// UpdatePhoto sets the photo reference; nil clears it
func (r *accountRepository) UpdatePhoto(id uint, photo *string) error {
	var value interface{}
	if photo != nil {
		value = *photo
	}
	return r.updates(r.db.Model(&model.Account{}).Where("id = ?", id), map[string]interface{}{
		"photo": value,
	}, map[string]interface{}{
		"account_id": id,
	})
}

// Delete removes the account together with its profile
func (r *accountRepository) Delete(id uint) error {
	logger.Debug("Deleting account from database", map[string]interface{}{
		"account_id": id,
	})

	result := r.db.Select("Profile").Delete(&model.Account{ID: id})
	if result.Error != nil {
		logger.Error("Failed to delete account from database", result.Error, map[string]interface{}{
			"account_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Account deleted from database", map[string]interface{}{
		"account_id": id,
	})
	return nil
}

func (r *accountRepository) updates(query *gorm.DB, fields map[string]interface{}, logFields map[string]interface{}) error {
	result := query.Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update account in database", result.Error, logFields)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Account updated in database", logFields)
	return nil
}

// logLookupError keeps not-found lookups out of the error log
func logLookupError(msg string, err error, fields map[string]interface{}) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Debug(msg, fields)
		return
	}
	logger.Error(msg, err, fields)
}
