package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"giftwise-backend/internal/common/errors"
	"giftwise-backend/internal/common/logger"
)

// RequestID assigns every request an id, reused from the X-Request-ID
// header when the caller supplies one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
}

// AbortWithError translates an application error into the matching HTTP
// response and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(errors.ErrCodeInternal, "internal server error", err)
	}

	requestID := c.GetString("request_id")

	event := logger.Warn()
	if appErr.Code == errors.ErrCodeInfrastructure || appErr.Code == errors.ErrCodeInternal {
		event = logger.Error()
	}
	event.
		Err(appErr).
		Str("request_id", requestID).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")

	c.AbortWithStatusJSON(httpStatus(appErr.Code), ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	})
}

func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeAlreadyClaimed:
		return http.StatusConflict
	case errors.ErrCodeInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
