package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/pkg/validation"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// serviceErrors maps service sentinels to responses. The sentinel's own
// text is the client message.
var serviceErrors = []errorMapping{
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
	{service.ErrInvalidOldPassword, http.StatusUnauthorized, apperrors.AuthInvalidOldPassword},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.AuthUserNotFound},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, apperrors.AuthTooManyAttempts},
	{service.ErrStoreNameExists, http.StatusConflict, apperrors.StoreNameExists},
	{service.ErrStoreEmailExists, http.StatusConflict, apperrors.StoreEmailExists},
	{service.ErrStoreOwnerInvalid, http.StatusBadRequest, apperrors.StoreOwnerInvalid},
	{service.ErrOwnerHasStore, http.StatusConflict, apperrors.StoreOwnerHasStore},
	{service.ErrStoreNotFound, http.StatusNotFound, apperrors.StoreNotFound},
	{service.ErrOwnerStoreNotFound, http.StatusNotFound, apperrors.OwnerStoreNotFound},
	{service.ErrRatingNotFound, http.StatusNotFound, apperrors.RatingNotFound},
	{service.ErrRatingAlreadyExists, http.StatusConflict, apperrors.RatingAlreadyExists},
	{service.ErrInvalidRatingValue, http.StatusBadRequest, apperrors.RatingInvalidValue},
}

// respondError writes the response for a service error. Unknown errors are
// logged and reduced to a client-safe response by apperrors.ParseAndRespond.
func respondError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	if verr, ok := validation.AsErrors(err); ok {
		log.Warn("Validation failed", map[string]interface{}{
			"context": context,
			"fields":  verr.Fields,
		})
		apperrors.RespondWithValidationError(c, verr.Fields)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			log.Warn("Request rejected", map[string]interface{}{
				"context": context,
				"code":    m.code,
			})
			apperrors.RespondWithError(c, m.status, m.code, err.Error())
			return
		}
	}

	log.Error("Request failed", err, map[string]interface{}{
		"context": context,
	})
	apperrors.ParseAndRespond(c, err, context)
}

// bindJSON decodes the body; a malformed body is answered with 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return false
	}
	return true
}

// requireCaller returns the authenticated caller or answers 401.
func requireCaller(c *gin.Context) (middleware.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "")
	}
	return caller, ok
}
