package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/svpddu/studentrecords/internal/app/models/dto"
	"github.com/svpddu/studentrecords/internal/pkg/apperrors"
	"github.com/svpddu/studentrecords/internal/pkg/auth"
	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

// Client-facing messages
const (
	MsgInvalidStudentID   = "Invalid student ID format."
	MsgStudentNotFound    = "Student not found"
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidYear        = "Invalid year format. Expected YYYY."
	MsgConcurrentUpdate   = "Student was modified by another request, please retry"
	MsgServerError        = "Server error"
)

// HandleAPIError maps service errors onto HTTP responses. Unknown errors become a
// generic 500.
func HandleAPIError(c *gin.Context, err error) {
	HandleAPIErrorWithMessage(c, err, MsgServerError)
}

// HandleAPIErrorWithMessage is HandleAPIError with a custom text for the 500 case
func HandleAPIErrorWithMessage(c *gin.Context, err error, serverMessage string) {
	status, body := resolveError(err, serverMessage)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Msg(serverMessage)
	}
	c.AbortWithStatusJSON(status, body)
}

func messageOr(err error, fallback string) string {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

func detailsOf(err error) map[string]interface{} {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}

func resolveError(err error, serverMessage string) (int, *dto.ErrorResponse) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidStudentID):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeInvalidIdentifier, MsgInvalidStudentID)
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeResourceNotFound, MsgStudentNotFound)
	case errors.Is(err, apperrors.ErrInvalidYear):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeValidationFailed, MsgInvalidYear)
	case errors.Is(err, apperrors.ErrValidationFailed):
		resp := dto.NewErrorResponse(dto.ErrorCodeValidationFailed, messageOr(err, "Validation failed"))
		if d := detailsOf(err); d != nil {
			resp = resp.WithDetails(d)
		}
		return http.StatusBadRequest, resp
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeValidationFailed, messageOr(err, "Bad request"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorCodeInvalidCredentials, MsgInvalidCredentials).WithMessage()
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorCodeExpiredToken, "Token has expired")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorCodeInvalidToken, "Authentication required")
	case errors.Is(err, apperrors.ErrRevisionConflict):
		return http.StatusConflict, dto.NewErrorResponse(dto.ErrorCodeConcurrentUpdate, MsgConcurrentUpdate)
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorResponse(dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrUploadFailed), errors.Is(err, apperrors.ErrRenderFailed):
		return http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeExternalServiceError, serverMessage)
	case errors.Is(err, apperrors.ErrDuplicateSerial):
		return http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeDatabaseError, serverMessage)
	default:
		return http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeInternalServer, serverMessage)
	}
}
