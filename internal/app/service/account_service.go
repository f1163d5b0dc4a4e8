package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devoriginal/account-backend/internal/app/model"
	"github.com/devoriginal/account-backend/internal/app/repository"
	apperrors "github.com/devoriginal/account-backend/internal/errors"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/devoriginal/account-backend/pkg/mailer"
	"github.com/devoriginal/account-backend/pkg/util"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// BirthDateLayout is the accepted format of birth dates (YYYY-MM-DD)
const BirthDateLayout = "2006-01-02"

// bcrypt ignores everything past 72 bytes and x/crypto rejects longer input
const maxPasswordBytes = 72

// same rules gin applies to `binding` tags; limits follow the column sizes in model
var validate = validator.New()

const (
	emailRule    = "email,max=250"
	nameRule     = "max=250"
	phoneRule    = "max=16"
	documentRule = "max=14"
)

var (
	ErrNameRequired           = apperrors.Validation(apperrors.ValidationRequired, "Name is required")
	ErrEmailRequired          = apperrors.Validation(apperrors.ValidationRequired, "E-mail is required")
	ErrPasswordRequired       = apperrors.Validation(apperrors.ValidationRequired, "Password is required")
	ErrNewPasswordRequired    = apperrors.Validation(apperrors.ValidationRequired, "New password is required")
	ErrPasswordTooLong        = apperrors.Validation(apperrors.ValidationInvalidInput, "Password must be at most 72 bytes")
	ErrInvalidBirthDate       = apperrors.Validation(apperrors.ValidationInvalidFormat, "Birth date must use the YYYY-MM-DD format")
	ErrInvalidEmail           = apperrors.Validation(apperrors.ValidationInvalidFormat, "E-mail address is invalid")
	ErrNameTooLong            = apperrors.Validation(apperrors.ValidationTooLong, "Name must be at most 250 characters")
	ErrPhoneTooLong           = apperrors.Validation(apperrors.ValidationTooLong, "Phone must be at most 16 characters")
	ErrDocumentTooLong        = apperrors.Validation(apperrors.ValidationTooLong, "Document must be at most 14 characters")
	ErrInvalidAccountID       = apperrors.Validation(apperrors.ValidationInvalidID, "Invalid user ID")
	ErrEmailAlreadyExists     = apperrors.Duplicate(apperrors.AuthEmailAlreadyExists, "E-mail already exists")
	ErrAccountNotFound        = apperrors.Missing(apperrors.AccountNotFound, "User not found")
	ErrCurrentPasswordInvalid = apperrors.Unauthenticated(apperrors.AuthInvalidCredentials, "Current password is incorrect")
)

// CreateAccountInput carries registration data. Optional fields are empty when absent.
type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	BirthAt  string
	Phone    string
	Document string
}

// AccountPatch is a partial update: nil fields are left untouched.
// An empty BirthAt, Phone or Document clears the stored value.
type AccountPatch struct {
	Name     *string
	Email    *string
	BirthAt  *string
	Phone    *string
	Document *string
}

func (p AccountPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.BirthAt == nil && p.Phone == nil && p.Document == nil
}

type AccountService interface {
	Create(input CreateAccountInput) (*model.Account, error)
	Get(id uint, includeHash bool) (*model.Account, error)
	GetByEmail(email string, includeHash bool) (*model.Account, error)
	Exists(email string) (bool, error)
	Update(id uint, patch AccountPatch) (*model.Account, error)
	ChangePassword(id uint, currentPassword, newPassword string) (*model.Account, error)
	UpdatePassword(id uint, newPassword string) (*model.Account, error)
	Delete(id uint) error
}

type accountService struct {
	accountRepo repository.AccountRepository
	mailer      mailer.Mailer
}

func NewAccountService(accountRepo repository.AccountRepository, m mailer.Mailer) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		mailer:      m,
	}
}

// NormalizeEmail trims and lowercases an address; accounts are stored and looked up this way
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) Create(input CreateAccountInput) (*model.Account, error) {
	email := NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	logger.Info("Attempting account registration", map[string]interface{}{
		"email": email,
	})

	switch {
	case name == "":
		return nil, ErrNameRequired
	case email == "":
		return nil, ErrEmailRequired
	case input.Password == "":
		return nil, ErrPasswordRequired
	}

	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	birthAt, err := parseBirthDate(input.BirthAt)
	if err != nil {
		return nil, err
	}
	phone := optional(input.Phone)
	document := optional(input.Document)
	if err := checkContact(phone, document); err != nil {
		return nil, err
	}

	exists, err := s.Exists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Email:        email,
		PasswordHash: hash,
		Profile: model.Profile{
			Name:     name,
			BirthAt:  birthAt,
			Phone:    phone,
			Document: document,
		},
	}

	if err := s.accountRepo.Create(account); err != nil {
		// the unique index is the real guard against concurrent registrations
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Warn("Registration lost race on unique email", map[string]interface{}{
				"email": email,
			})
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("Account registered successfully", map[string]interface{}{
		"account_id": account.ID,
		"email":      email,
	})

	account.PasswordHash = ""
	return account, nil
}

func (s *accountService) Get(id uint, includeHash bool) (*model.Account, error) {
	if id == 0 {
		return nil, ErrInvalidAccountID
	}

	account, err := s.accountRepo.FindByID(id)
	if err != nil {
		return nil, mapAccountLookupError(err)
	}

	if !includeHash {
		account.PasswordHash = ""
	}
	return account, nil
}

func (s *accountService) GetByEmail(email string, includeHash bool) (*model.Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	account, err := s.accountRepo.FindByEmail(email)
	if err != nil {
		return nil, mapAccountLookupError(err)
	}

	if !includeHash {
		account.PasswordHash = ""
	}
	return account, nil
}

func (s *accountService) Exists(email string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, ErrEmailRequired
	}
	return s.accountRepo.ExistsByEmail(email)
}

func (s *accountService) Update(id uint, patch AccountPatch) (*model.Account, error) {
	current, err := s.Get(id, false)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	accountFields := map[string]interface{}{}
	profileFields := map[string]interface{}{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if err := checkName(name); err != nil {
			return nil, err
		}
		profileFields["name"] = name
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if err := checkEmail(email); err != nil {
			return nil, err
		}
		if email != current.Email {
			exists, err := s.Exists(email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrEmailAlreadyExists
			}
			accountFields["email"] = email
		}
	}

	if patch.BirthAt != nil {
		birthAt, err := parseBirthDate(*patch.BirthAt)
		if err != nil {
			return nil, err
		}
		profileFields["birth_at"] = nullable(birthAt)
	}
	if patch.Phone != nil {
		phone := optional(*patch.Phone)
		if err := checkContact(phone, nil); err != nil {
			return nil, err
		}
		profileFields["phone"] = nullable(phone)
	}
	if patch.Document != nil {
		document := optional(*patch.Document)
		if err := checkContact(nil, document); err != nil {
			return nil, err
		}
		profileFields["document"] = nullable(document)
	}

	if err := s.accountRepo.UpdateFields(id, accountFields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, mapAccountLookupError(err)
	}
	if err := s.accountRepo.UpdateProfileFields(id, profileFields); err != nil {
		return nil, mapAccountLookupError(err)
	}

	logger.Info("Account updated", map[string]interface{}{
		"account_id":     id,
		"account_fields": len(accountFields),
		"profile_fields": len(profileFields),
	})

	return s.Get(id, false)
}

func (s *accountService) ChangePassword(id uint, currentPassword, newPassword string) (*model.Account, error) {
	if err := CheckNewPassword(newPassword); err != nil {
		return nil, err
	}

	account, err := s.Get(id, true)
	if err != nil {
		return nil, err
	}

	if !util.VerifyPassword(account.PasswordHash, currentPassword) {
		logger.Warn("Password change rejected: current password mismatch", map[string]interface{}{
			"account_id": id,
		})
		return nil, ErrCurrentPasswordInvalid
	}

	return s.UpdatePassword(id, newPassword)
}

// UpdatePassword stores a new hash and notifies the account holder
func (s *accountService) UpdatePassword(id uint, newPassword string) (*model.Account, error) {
	if err := CheckNewPassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePasswordHash(id, hash); err != nil {
		return nil, mapAccountLookupError(err)
	}

	account, err := s.Get(id, false)
	if err != nil {
		return nil, err
	}

	logger.Info("Password updated", map[string]interface{}{
		"account_id": id,
	})

	err = s.mailer.Send(mailer.Message{
		To:       account.Email,
		Subject:  "Your password was changed",
		Template: mailer.TemplateResetPasswordConfirm,
		Data: map[string]interface{}{
			"name": account.Profile.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("password updated but confirmation mail failed: %w", err)
	}

	return account, nil
}

func (s *accountService) Delete(id uint) error {
	if id == 0 {
		return ErrInvalidAccountID
	}

	if err := s.accountRepo.Delete(id); err != nil {
		return mapAccountLookupError(err)
	}

	logger.Info("Account deleted", map[string]interface{}{
		"account_id": id,
	})
	return nil
}

// CheckNewPassword applies the rules UpdatePassword enforces, so callers can reject early
func CheckNewPassword(password string) error {
	if password == "" {
		return ErrNewPasswordRequired
	}
	return checkPassword(password)
}

func checkPassword(password string) error {
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func checkName(name string) error {
	if validate.Var(name, nameRule) != nil {
		return ErrNameTooLong
	}
	return nil
}

func checkEmail(email string) error {
	if validate.Var(email, emailRule) != nil {
		return ErrInvalidEmail
	}
	return nil
}

// checkContact validates the optional profile fields; nil means absent
func checkContact(phone, document *string) error {
	if phone != nil && validate.Var(*phone, phoneRule) != nil {
		return ErrPhoneTooLong
	}
	if document != nil && validate.Var(*document, documentRule) != nil {
		return ErrDocumentTooLong
	}
	return nil
}

func mapAccountLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAccountNotFound
	}
	return err
}

func parseBirthDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(BirthDateLayout, value)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}
	return &t, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// nullable turns a nil pointer into an untyped nil so gorm writes NULL
func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
