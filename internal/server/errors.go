package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
	"github.com/smallbiznis/clearwire/pkg/db"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// Record validation failures carry the complete list; the row index
	// travels in the field path so the caller can address every record.
	var recordErrs exportdomain.ValidationErrors
	if errors.As(err, &recordErrs) {
		items := make([]ValidationError, 0, len(recordErrs))
		for _, e := range recordErrs {
			items = append(items, ValidationError{
				Field:   fmt.Sprintf("records[%d].%s", e.Row, e.Field),
				Code:    e.Code,
				Message: e.Message,
			})
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  items,
		}
	}

	switch {
	case errors.Is(err, exportdomain.ErrNoEligiblePayments):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "no_eligible_payments",
			Message: "none of the selected invoices can be exported",
		}
	case errors.Is(err, exportdomain.ErrBatchTooLarge):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidPageToken),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid request",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case db.IsDuplicateKeyErr(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, supplierdomain.ErrNotFound),
		errors.Is(err, exportdomain.ErrBatchNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog maps errors to (type, code) labels for the access
// log; it must stay low-cardinality.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case asValidationErrors(err) != nil:
		return "validation_error", "validation_error"
	case errors.Is(err, exportdomain.ErrNoEligiblePayments):
		return "business_rule", "no_eligible_payments"
	case errors.Is(err, exportdomain.ErrBatchTooLarge):
		return "business_rule", "batch_too_large"
	case isNotFoundError(err):
		return "not_found", "not_found"
	default:
		var recordErrs exportdomain.ValidationErrors
		if errors.As(err, &recordErrs) {
			return "validation_error", "record_validation"
		}
		var encErr *exportdomain.EncodingError
		if errors.As(err, &encErr) {
			return "internal_error", "encoding_error"
		}
		return "internal_error", "internal_error"
	}
}
