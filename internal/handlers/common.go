package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/examforge/exam-link-service/internal/link"
	"github.com/examforge/exam-link-service/internal/services"
	"github.com/examforge/exam-link-service/internal/session"
	"github.com/examforge/exam-link-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and response helpers for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	}
	c.JSON(statusCode, ErrorResponse{Message: message})
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{Message: message, Data: data})
}

// RespondWithServiceError maps a service error onto the right status code and
// its message onto the response body.
func (h *BaseHandler) RespondWithServiceError(c *gin.Context, err error) {
	h.RespondWithError(c, serviceErrorStatus(err), err.Error(), err)
}

func serviceErrorStatus(err error) int {
	switch {
	case services.IsNotFound(err) || errors.Is(err, session.ErrQuestionNotFound) ||
		errors.Is(err, session.ErrOptionNotFound):
		return http.StatusNotFound
	case services.IsAccessDenied(err):
		return http.StatusForbidden
	case services.IsConflict(err) || errors.Is(err, session.ErrSessionNotInProgress):
		return http.StatusConflict
	case errors.Is(err, link.ErrMalformedLink) || errors.Is(err, services.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrExtractionUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ParseStringIDParam reads a non-empty path parameter, writing the 400
// response itself when the parameter is blank.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}
