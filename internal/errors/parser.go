package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a client-safe code and message derived from an arbitrary error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns storage and driver errors into client-safe codes.
// Driver details (table names, SQL) never reach the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Internal server error",
		}
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return ErrorInfo{Code: appErr.Code, Message: appErr.Message}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(err.Error())
	}

	errStrLower := strings.ToLower(err.Error())

	// Unique constraint violation (postgres 23505, sqlite UNIQUE)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(err.Error())
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    AccountNotFound,
			Message: "Referenced account does not exist",
		}
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return parseNotNullError(errStrLower)
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A dependent service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	if strings.Contains(strings.ToLower(errStr), "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "E-mail already exists",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "Resource already exists",
	}
}

func parseNotNullError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: ValidationRequired, Message: "E-mail is required"}
	case strings.Contains(errLower, "password"):
		return ErrorInfo{Code: ValidationRequired, Message: "Password is required"}
	case strings.Contains(errLower, "name"):
		return ErrorInfo{Code: ValidationRequired, Message: "Name is required"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "A required field is missing",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "photo") {
		return "Photo not found"
	}
	if strings.Contains(contextLower, "account") || strings.Contains(contextLower, "user") {
		return "User not found"
	}
	if strings.Contains(contextLower, "reset") {
		return "Password reset request not found"
	}

	return "Requested resource not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "register") || strings.Contains(contextLower, "create"):
		return "Failed to create the account, please try again later"
	case strings.Contains(contextLower, "update") || strings.Contains(contextLower, "change"):
		return "Failed to save changes, please try again later"
	case strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "remove"):
		return "Failed to delete, please try again later"
	case strings.Contains(contextLower, "photo") || strings.Contains(contextLower, "upload"):
		return "Failed to process the photo, please try again later"
	}

	return "Internal server error, please try again later"
}

// ParseAndRespond parses err and writes it with statusCode
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
