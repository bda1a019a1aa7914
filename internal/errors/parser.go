package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo is a code plus a message that is safe to show to clients
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts an unexpected error into client-safe info. Driver
// details never reach the message; context only picks the wording.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return duplicateKeyInfo(err.Error(), context)
	}

	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "check constraint") && strings.Contains(errLower, "value") {
		return ErrorInfo{Code: RatingInvalidValue, Message: "Rating must be between 1 and 5"}
	}
	if strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record does not exist"}
	}
	if strings.Contains(errLower, "connection refused") || strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "Service temporarily unavailable, please retry later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Server error"}
}

func duplicateKeyInfo(errStr, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)
	ctx := strings.ToLower(context)

	switch {
	case strings.Contains(errLower, "rating") || strings.Contains(ctx, "rating"):
		return ErrorInfo{Code: RatingAlreadyExists, Message: "You have already submitted a rating for this store. Please modify it instead."}
	case strings.Contains(ctx, "store") && strings.Contains(errLower, "email"):
		return ErrorInfo{Code: StoreEmailExists, Message: "Store with this email already exists"}
	case strings.Contains(ctx, "store"):
		return ErrorInfo{Code: StoreNameExists, Message: "Store with this name already exists"}
	case strings.Contains(errLower, "email") || strings.Contains(ctx, "user"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "User with this email already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Record already exists"}
}

func notFoundMessage(context string) string {
	ctx := strings.ToLower(context)
	switch {
	case strings.Contains(ctx, "rating"):
		return "Rating not found"
	case strings.Contains(ctx, "store"):
		return "Store not found"
	case strings.Contains(ctx, "user"):
		return "User not found"
	}
	return "Requested record not found"
}

// ParseAndRespond parses err and writes it with the status that matches
// the resulting code.
func ParseAndRespond(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	switch info.Code {
	case ResourceNotFound:
		NotFound(c, info.Code, info.Message)
	case RatingAlreadyExists, StoreEmailExists, StoreNameExists, AuthEmailAlreadyExists, ResourceAlreadyExists:
		Conflict(c, info.Code, info.Message)
	case RatingInvalidValue:
		BadRequest(c, info.Code, info.Message)
	case InternalDatabaseError:
		RespondWithError(c, http.StatusServiceUnavailable, info.Code, info.Message)
	default:
		InternalError(c, info.Message)
	}
}
