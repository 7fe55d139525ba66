package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

type errorMapping struct {
	target   error
	status   int
	code     dto.ErrorCode
	fallback string
}

// Order matters: the first matching kind wins
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrBusinessRule, http.StatusBadRequest, dto.ErrorCodeBusinessRule, "Business rule violated"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Resource conflict"},
	{apperrors.ErrInvalidState, http.StatusConflict, dto.ErrorCodeInvalidState, "Invalid state"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
}

// HandleAPIError maps a service error onto the HTTP error envelope
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled error")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, messageOf(err, m.fallback))
		if details := apperrors.DetailsOf(err); len(details) > 0 {
			detail = detail.WithDetails(details)
		}
		return m.status, detail
	}
	detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	return http.StatusInternalServerError, detail.WithSeverity(dto.ErrorSeverityCritical)
}

// messageOf prefers the message a service attached over the generic one
func messageOf(err error, fallback string) string {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		if ce.StatusMsg != "" {
			return ce.StatusMsg
		}
		if ce.Message != "" {
			return ce.Message
		}
	}
	return fallback
}

// Recovery converts panics into the 500 envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
	})
}
