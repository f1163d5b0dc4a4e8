package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/devoriginal/account-backend/internal/app/model"
	"github.com/devoriginal/account-backend/internal/app/repository"
	apperrors "github.com/devoriginal/account-backend/internal/errors"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/devoriginal/account-backend/pkg/mailer"
	"github.com/devoriginal/account-backend/pkg/util"
	"gorm.io/gorm"
)

// DefaultResetTokenExpiry bounds how long a recovery link stays usable
const DefaultResetTokenExpiry = 30 * time.Minute

// ErrInvalidResetToken covers bad signature, expiry, unknown and already used tokens alike
var ErrInvalidResetToken = apperrors.Validation(apperrors.AuthResetTokenInvalid, "Invalid or expired reset token")

// RecoverResult is the response shape of Recover
type RecoverResult struct {
	Success bool `json:"success"`
}

// ResetThrottle limits how often recovery mails go to the same address
type ResetThrottle interface {
	Allow(email string) (bool, error)
}

type PasswordResetService interface {
	Recover(email string) (*RecoverResult, error)
	Reset(token, newPassword string) (*model.Account, error)
}

type PasswordResetConfig struct {
	TokenExpiry time.Duration
	ResetURL    string
	Throttle    ResetThrottle // optional
}

type passwordResetService struct {
	accountService AccountService
	resetRepo      repository.PasswordResetRepository
	tokens         *util.TokenManager
	mailer         mailer.Mailer
	cfg            PasswordResetConfig
	now            func() time.Time
}

func NewPasswordResetService(
	accountService AccountService,
	resetRepo repository.PasswordResetRepository,
	tokens *util.TokenManager,
	m mailer.Mailer,
	cfg PasswordResetConfig,
) PasswordResetService {
	if cfg.TokenExpiry <= 0 {
		cfg.TokenExpiry = DefaultResetTokenExpiry
	}
	return &passwordResetService{
		accountService: accountService,
		resetRepo:      resetRepo,
		tokens:         tokens,
		mailer:         m,
		cfg:            cfg,
		now:            time.Now,
	}
}

func (s *passwordResetService) Recover(email string) (*RecoverResult, error) {
	email = NormalizeEmail(email)
	logger.Info("Processing password recovery request", map[string]interface{}{
		"email": email,
	})

	account, err := s.accountService.GetByEmail(email, false)
	if err != nil {
		return nil, err
	}

	if s.cfg.Throttle != nil {
		allowed, err := s.cfg.Throttle.Allow(email)
		if err != nil {
			// fail open: a throttle outage must not block recovery
			logger.Warn("Reset throttle unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else if !allowed {
			logger.Info("Password recovery throttled", map[string]interface{}{
				"account_id": account.ID,
			})
			return &RecoverResult{Success: true}, nil
		}
	}

	token, err := s.tokens.Issue(util.PurposeReset, util.Claims{AccountID: account.ID}, s.cfg.TokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := s.resetRepo.Create(&model.PasswordResetRequest{
		AccountID: account.ID,
		Token:     token,
	}); err != nil {
		return nil, err
	}

	link, err := resetLink(s.cfg.ResetURL, token)
	if err != nil {
		return nil, err
	}

	err = s.mailer.Send(mailer.Message{
		To:       account.Email,
		Subject:  "Password recovery",
		Template: mailer.TemplateForget,
		Data: map[string]interface{}{
			"name": account.Profile.Name,
			"url":  link,
		},
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Password recovery mail sent", map[string]interface{}{
		"account_id": account.ID,
	})
	return &RecoverResult{Success: true}, nil
}

func (s *passwordResetService) Reset(token, newPassword string) (*model.Account, error) {
	// reject before the request is consumed so the link stays usable
	if err := CheckNewPassword(newPassword); err != nil {
		return nil, err
	}

	claims, err := s.tokens.Verify(token, util.PurposeReset)
	if err != nil {
		logger.Warn("Password reset rejected: token verification failed", map[string]interface{}{
			"expired": errors.Is(err, util.ErrExpiredToken),
		})
		return nil, ErrInvalidResetToken
	}

	request, err := s.resetRepo.FindUnconsumedByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset rejected: no pending request for token", map[string]interface{}{
				"account_id": claims.AccountID,
			})
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}
	if request.AccountID != claims.AccountID {
		return nil, ErrInvalidResetToken
	}

	if err := s.resetRepo.MarkConsumed(request.ID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// consumed concurrently
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}

	account, err := s.accountService.UpdatePassword(request.AccountID, newPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"account_id": account.ID,
		"request_id": request.ID,
	})
	return account, nil
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
