package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/devoriginal/account-backend/internal/app/model"
	"github.com/devoriginal/account-backend/internal/app/service"
	apperrors "github.com/devoriginal/account-backend/internal/errors"
	"github.com/devoriginal/account-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AccountResponse is the public view of an account; the password hash never appears
type AccountResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	BirthAt   *string   `json:"birthAt"`
	Phone     *string   `json:"phone"`
	Document  *string   `json:"document"`
	Photo     *string   `json:"photo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewAccountResponse(a *model.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		Name:      a.Profile.Name,
		Email:     a.Email,
		Phone:     a.Profile.Phone,
		Document:  a.Profile.Document,
		Photo:     a.Photo,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Profile.BirthAt != nil {
		birth := a.Profile.BirthAt.Format(service.BirthDateLayout)
		resp.BirthAt = &birth
	}
	return resp
}

// UpdateAccountRequest fields are pointers so absent keys stay untouched
type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	BirthAt  *string `json:"birthAt"`
	Phone    *string `json:"phone"`
	Document *string `json:"document"`
}

type UserController struct {
	accountService service.AccountService
}

func NewUserController(accountService service.AccountService) *UserController {
	return &UserController{
		accountService: accountService,
	}
}

// GetByID
// GET /api/v1/users/:id
func (ctrl *UserController) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	account, err := ctrl.accountService.Get(id, false)
	if err != nil {
		apperrors.RespondWithServiceError(c, err, "get account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewAccountResponse(account)})
}

// GetByEmail
// GET /api/v1/users/email/:email
func (ctrl *UserController) GetByEmail(c *gin.Context) {
	account, err := ctrl.accountService.GetByEmail(c.Param("email"), false)
	if err != nil {
		apperrors.RespondWithServiceError(c, err, "get account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewAccountResponse(account)})
}

// Update changes an account; the route only lets owners through
// PUT /api/v1/users/:id
func (ctrl *UserController) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	updateAccount(c, ctrl.accountService, id)
}

func updateAccount(c *gin.Context, accountService service.AccountService, id uint) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update request", map[string]interface{}{
			"account_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
		return
	}

	account, err := accountService.Update(id, service.AccountPatch{
		Name:     req.Name,
		Email:    req.Email,
		BirthAt:  req.BirthAt,
		Phone:    req.Phone,
		Document: req.Document,
	})
	if err != nil {
		log.Warn("Account update failed", map[string]interface{}{
			"account_id": id,
			"error":      err.Error(),
		})
		apperrors.RespondWithServiceError(c, err, "update account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": NewAccountResponse(account)})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid user ID")
		return 0, false
	}
	return uint(id), true
}
