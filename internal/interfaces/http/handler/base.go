package handler

import (
	"errors"
	"net/http"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getActorID extracts the acting user from the X-User-ID header. Every
// mutation records who performed it.
func getActorID(c *gin.Context) (uuid.UUID, error) {
	actor := c.GetHeader("X-User-ID")
	if actor == "" {
		return uuid.Nil, errors.New("user ID not found in request")
	}
	return uuid.Parse(actor)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, page, pageSize, count int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, page, pageSize, count))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// HandleError converts domain errors to HTTP responses. Validation and
// balance errors keep their figures in the details so the client can show
// both sides of the comparison.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	var balanceErr *shared.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		code := dto.NormalizeErrorCode(balanceErr.Code)
		resp := dto.NewErrorResponseWithRequestID(code, balanceErr.Message, requestID)
		resp.Error.Details = []dto.ValidationDetail{
			{Field: "requested", Message: balanceErr.Requested.StringFixed(2)},
			{Field: "available", Message: balanceErr.Available.StringFixed(2)},
		}
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		code := dto.NormalizeErrorCode(validationErr.Code)
		resp := dto.NewErrorResponseWithRequestID(code, validationErr.Message, requestID)
		resp.Error.Details = []dto.ValidationDetail{
			{Field: "requested", Message: validationErr.Requested.StringFixed(2)},
			{Field: validationErr.Field, Message: validationErr.Allowed.StringFixed(2)},
		}
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
