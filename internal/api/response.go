package api

import (
	"errors"
	"net/http"

	"cebuano/internal/domain"
	"cebuano/internal/service"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps an APIError
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes an error response
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	})
}

// respondDomainError maps service errors to statuses. Unknown errors are
// reported as internal without leaking their text.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDailyLimitReached):
		RespondError(c, http.StatusTooManyRequests, "daily_limit_reached", errors.New("daily review limit reached, come back tomorrow"))
	case errors.Is(err, domain.ErrInvalidRating):
		RespondError(c, http.StatusBadRequest, "invalid_rating", err)
	case errors.Is(err, domain.ErrItemNotFound):
		RespondError(c, http.StatusNotFound, "item_not_found", err)
	case errors.Is(err, service.ErrUnknownKind):
		RespondError(c, http.StatusNotFound, "unknown_kind", err)
	default:
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}
