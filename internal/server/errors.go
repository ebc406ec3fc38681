package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	artikaldomain "github.com/pausalko/pausalko/internal/artikal/domain"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
	komitentdomain "github.com/pausalko/pausalko/internal/komitent/domain"
	kpodomain "github.com/pausalko/pausalko/internal/kpo/domain"
	"github.com/pausalko/pausalko/internal/providers/nbs"
	userdomain "github.com/pausalko/pausalko/internal/user/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware turns domain errors collected on the context into
// the JSON error envelope. Infra errors get a generic body; the full error
// goes to the log, never to the client.
func ErrorHandlingMiddleware(log *zap.Logger) gin.HandlerFunc {
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
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(lastErr.Err),
			)
		}
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

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Code:    err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, userdomain.ErrInvalidCredentials),
		errors.Is(err, userdomain.ErrInactive):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
			Code:    conflictCode(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, fakturadomain.ErrKursUnavailable),
		errors.Is(err, nbs.ErrUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, firmadomain.ErrInvalidPIB),
		errors.Is(err, firmadomain.ErrInvalidData),
		errors.Is(err, komitentdomain.ErrInvalidPIB),
		errors.Is(err, komitentdomain.ErrInvalidData),
		errors.Is(err, komitentdomain.ErrInvalidScope),
		errors.Is(err, artikaldomain.ErrInvalidData),
		errors.Is(err, artikaldomain.ErrInvalidCena),
		errors.Is(err, artikaldomain.ErrInvalidJedinica),
		errors.Is(err, artikaldomain.ErrInvalidScope),
		errors.Is(err, fakturadomain.ErrInvalidScope),
		errors.Is(err, fakturadomain.ErrInvalidStavka),
		errors.Is(err, fakturadomain.ErrInvalidTip),
		errors.Is(err, fakturadomain.ErrInvalidValuta),
		errors.Is(err, fakturadomain.ErrNoStavke),
		errors.Is(err, fakturadomain.ErrNoKomitent),
		errors.Is(err, fakturadomain.ErrMissingRazlog),
		errors.Is(err, fakturadomain.ErrInvalidAvansna),
		errors.Is(err, kpodomain.ErrInvalidScope),
		errors.Is(err, userdomain.ErrInvalidData):
		return true
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, fakturadomain.ErrInvalidTransition),
		errors.Is(err, fakturadomain.ErrPDFNotReady),
		errors.Is(err, komitentdomain.ErrInUse),
		errors.Is(err, komitentdomain.ErrPIBExists),
		errors.Is(err, firmadomain.ErrPIBTaken),
		errors.Is(err, userdomain.ErrEmailTaken),
		errors.Is(err, kpodomain.ErrDuplicateEntry):
		return true
	}
	return false
}

func conflictCode(err error) string {
	switch {
	case errors.Is(err, fakturadomain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, fakturadomain.ErrPDFNotReady):
		return "pdf_not_ready"
	case errors.Is(err, komitentdomain.ErrInUse):
		return "komitent_in_use"
	default:
		return err.Error()
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, firmadomain.ErrNotFound),
		errors.Is(err, komitentdomain.ErrNotFound),
		errors.Is(err, artikaldomain.ErrNotFound),
		errors.Is(err, fakturadomain.ErrNotFound),
		errors.Is(err, kpodomain.ErrEntryNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	}
	return false
}
