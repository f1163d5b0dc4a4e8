package controller

import (
	"net/http"

	"github.com/devoriginal/account-backend/internal/app/service"
	apperrors "github.com/devoriginal/account-backend/internal/errors"
	"github.com/devoriginal/account-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	accountService       service.AccountService
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

func NewAuthController(
	accountService service.AccountService,
	authService service.AuthService,
	passwordResetService service.PasswordResetService,
) *AuthController {
	return &AuthController{
		accountService:       accountService,
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

type CheckEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
	BirthAt  string `json:"birthAt"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ForgetRequest struct {
	Email string `json:"email" binding:"required"`
}

type PasswordResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password"`
}

// CheckEmail reports whether an account uses the e-mail
// POST /api/v1/auth
func (ctrl *AuthController) CheckEmail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid check email request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	exists, err := ctrl.accountService.Exists(req.Email)
	if err != nil {
		log.Error("Failed to check email", err, nil)
		apperrors.RespondWithServiceError(c, err, "check email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// Register handles account registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	account, err := ctrl.accountService.Create(service.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		BirthAt:  req.BirthAt,
		Phone:    req.Phone,
		Document: req.Document,
	})
	if err != nil {
		log.Warn("Registration failed", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithServiceError(c, err, "register account")
		return
	}

	token, err := ctrl.authService.GetToken(account.ID)
	if err != nil {
		log.Error("Failed to issue token after registration", err, map[string]interface{}{
			"account_id": account.ID,
		})
		apperrors.RespondWithServiceError(c, err, "register account")
		return
	}

	log.Info("Account registered", map[string]interface{}{
		"account_id": account.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"user":  NewAccountResponse(account),
		"token": token,
	})
}

// Login exchanges credentials for a token
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		apperrors.RespondWithServiceError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetMe returns the authenticated account
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	account, err := ctrl.accountService.Get(accountID, false)
	if err != nil {
		apperrors.RespondWithServiceError(c, err, "get account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewAccountResponse(account)})
}

// UpdateProfile applies a partial update to the authenticated account
// PUT /api/v1/auth/profile
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	updateAccount(c, ctrl.accountService, accountID)
}

// ChangePassword replaces the password after checking the current one
// PUT /api/v1/auth/password
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	account, err := ctrl.accountService.ChangePassword(accountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		log.Warn("Password change failed", map[string]interface{}{
			"account_id": accountID,
			"error":      err.Error(),
		})
		apperrors.RespondWithServiceError(c, err, "change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewAccountResponse(account)})
}

// DeleteMe removes the authenticated account
// DELETE /api/v1/auth/me
func (ctrl *AuthController) DeleteMe(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.accountService.Delete(accountID); err != nil {
		apperrors.RespondWithServiceError(c, err, "delete account")
		return
	}

	c.Status(http.StatusNoContent)
}

// Forget starts password recovery for an e-mail
// POST /api/v1/auth/forget
func (ctrl *AuthController) Forget(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	result, err := ctrl.passwordResetService.Recover(req.Email)
	if err != nil {
		log.Warn("Password recovery failed", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithServiceError(c, err, "recover password")
		return
	}

	c.JSON(http.StatusOK, result)
}

// PasswordReset sets a new password with a recovery token
// POST /api/v1/auth/password-reset
func (ctrl *AuthController) PasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.AuthResetTokenInvalid, "Reset token is required")
		return
	}

	account, err := ctrl.passwordResetService.Reset(req.Token, req.Password)
	if err != nil {
		apperrors.RespondWithServiceError(c, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewAccountResponse(account)})
}
