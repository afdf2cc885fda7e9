package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ErrorBody is the common failure payload: a plain message plus optional
// per-field detail for validation failures.
type ErrorBody struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// ListBody wraps list results with pagination metadata.
type ListBody struct {
	Items      interface{}        `json:"items"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// JSON sends the resource directly as the response body.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, data)
}

// List sends paginated list results.
func List(c *gin.Context, items interface{}, pagination *models.Pagination) {
	JSON(c, http.StatusOK, ListBody{Items: items, Pagination: pagination})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error translates any error into the common failure payload. Validation
// failures carry per-field details; unexpected errors are reported with a
// generic message in release mode so internals never leak.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")

	body := ErrorBody{Error: appErr.Message}

	var vErrs validator.ValidationErrors
	if errors.As(appErr.Err, &vErrs) {
		body.Error = appErrors.ErrValidation.Message
		body.Details = fieldErrors(vErrs)
	}

	if appErr.Code == appErrors.ErrInternal.Code && gin.Mode() == gin.ReleaseMode {
		body.Error = appErrors.ErrInternal.Message
	} else if appErr.Code == appErrors.ErrInternal.Code && appErr.Err != nil {
		// development echoes the underlying cause for debugging
		body.Error = appErr.Err.Error()
	}

	c.JSON(appErr.Status, body)
}

func fieldErrors(vErrs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		details = append(details, FieldError{
			Path:    strings.ToLower(fe.Field()),
			Message: messageForTag(fe),
		})
	}
	return details
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
