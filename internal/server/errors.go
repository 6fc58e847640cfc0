package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/events"
	syncdomain "github.com/loopworks/therapysync/internal/persistence/domain"
)

// APIError is the wire shape of every error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Code }

var (
	ErrUnknownKind = &APIError{Status: http.StatusNotFound, Code: "unknown_record_kind", Message: "no such record kind"}
	ErrBadRequest  = &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "malformed request"}
	ErrUnsupported = &APIError{Status: http.StatusMethodNotAllowed, Code: "unsupported_operation", Message: "operation not supported for this record kind"}
)

// AbortWithError maps service errors onto HTTP responses. Unrecognized
// errors surface as 500 without leaking internals; the middleware logs
// the cause.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(apiErr.Status, apiErr)
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, syncdomain.ErrInvalidID),
		errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		status = http.StatusBadRequest
		code = err.Error()
	case errors.Is(err, events.ErrUnknownKind):
		status = http.StatusNotFound
		code = err.Error()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, APIError{Code: code, Message: http.StatusText(status)})
}
