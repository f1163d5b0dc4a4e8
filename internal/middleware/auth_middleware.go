package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/devoriginal/account-backend/internal/errors"
	"github.com/devoriginal/account-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated account
const (
	AccountIDKey = "account_id"
	ClaimsKey    = "claims"
)

// TokenDecoder verifies a bearer token and returns its claims
type TokenDecoder interface {
	DecodeToken(token string) (*util.Claims, error)
}

type AuthMiddleware struct {
	decoder TokenDecoder
}

func NewAuthMiddleware(decoder TokenDecoder) *AuthMiddleware {
	return &AuthMiddleware{
		decoder: decoder,
	}
}

// Authenticate requires a valid "Authorization: Bearer <token>" header
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Login required")
			c.Abort()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := m.decoder.DecodeToken(strings.TrimSpace(token))
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			errors.RespondWithServiceError(c, err, "authenticate")
			c.Abort()
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(ClaimsKey, claims)

		log.Debug("Account authenticated", map[string]interface{}{
			"account_id": claims.AccountID,
		})

		c.Next()
	}
}

// RequireSelf lets a request through only when the path parameter equals the authenticated account ID
func (m *AuthMiddleware) RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		accountID, ok := GetAccountID(c)
		if !ok {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		target, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidID, "Invalid user ID")
			c.Abort()
			return
		}

		if uint(target) != accountID {
			log.Warn("Account tried to act on another account", map[string]interface{}{
				"account_id": accountID,
				"target_id":  target,
			})
			errors.Forbidden(c, "You can only change your own account")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetAccountID extracts the authenticated account ID from context
func GetAccountID(c *gin.Context) (uint, bool) {
	id, exists := c.Get(AccountIDKey)
	if !exists {
		return 0, false
	}
	accountID, ok := id.(uint)
	return accountID, ok
}

// GetClaims extracts the verified token claims from context
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	return claims, ok
}
