package service

import (
	"errors"

	"github.com/devoriginal/account-backend/internal/app/model"
	apperrors "github.com/devoriginal/account-backend/internal/errors"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/devoriginal/account-backend/pkg/util"
)

var (
	ErrInvalidCredentials = apperrors.Unauthenticated(apperrors.AuthInvalidCredentials, "E-mail or password is incorrect")
	ErrTokenInvalid       = apperrors.Unauthenticated(apperrors.AuthTokenInvalid, "Invalid token")
	ErrTokenExpired       = apperrors.Unauthenticated(apperrors.AuthTokenExpired, "Token has expired")
)

type AuthService interface {
	Login(email, password string) (string, error)
	GetToken(accountID uint) (string, error)
	DecodeToken(token string) (*util.Claims, error)
}

type authService struct {
	accountService AccountService
	tokens         *util.TokenManager
}

func NewAuthService(accountService AccountService, tokens *util.TokenManager) AuthService {
	return &authService{
		accountService: accountService,
		tokens:         tokens,
	}
}

// Login returns a credential token. Unknown e-mail and wrong password are indistinguishable.
func (s *authService) Login(email, password string) (string, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": NormalizeEmail(email),
	})

	account, err := s.accountService.GetByEmail(email, true)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrEmailRequired) {
			logger.Warn("Login failed: account not found", map[string]interface{}{
				"email": NormalizeEmail(email),
			})
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !util.VerifyPassword(account.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"account_id": account.ID,
		})
		return "", ErrInvalidCredentials
	}

	token, err := s.issue(account)
	if err != nil {
		return "", err
	}

	logger.Info("Account logged in successfully", map[string]interface{}{
		"account_id": account.ID,
	})
	return token, nil
}

func (s *authService) GetToken(accountID uint) (string, error) {
	account, err := s.accountService.Get(accountID, false)
	if err != nil {
		return "", err
	}
	return s.issue(account)
}

// DecodeToken verifies the token before trusting its claims
func (s *authService) DecodeToken(token string) (*util.Claims, error) {
	if _, err := s.tokens.Verify(token, util.PurposeAccess); err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		logger.Debug("Token verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrTokenInvalid
	}

	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *authService) issue(account *model.Account) (string, error) {
	token, err := s.tokens.Issue(util.PurposeAccess, util.Claims{
		AccountID: account.ID,
		Name:      account.Profile.Name,
		Email:     account.Email,
		Photo:     account.Photo,
	}, 0)
	if err != nil {
		logger.Error("Failed to issue token", err, map[string]interface{}{
			"account_id": account.ID,
		})
		return "", err
	}
	return token, nil
}
