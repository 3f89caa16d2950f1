package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuehub/reservations/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errMalformedBody = errors.New("malformed request body")

func statusFor(code string) int {
	switch code {
	case domain.CodePastDate, domain.CodeUnavailableDate, domain.CodeInvalidDuration,
		domain.CodeInvalidCapacity, domain.CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case domain.CodeSlotConflict, domain.CodeLifecycleViolation:
		return http.StatusConflict
	case domain.CodeResourceNotFound, domain.CodeReservationNotFound:
		return http.StatusNotFound
	case domain.CodeStorage:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError renders err with its taxonomy code. Internal failures get a
// generic message so driver details do not leak.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := domain.Code(err)
	msg := err.Error()
	switch code {
	case domain.CodeStorage:
		msg = "storage is temporarily unavailable, retry the request"
	case domain.CodeInternal:
		msg = "internal error"
	}
	c.AbortWithStatusJSON(statusFor(code), errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func writeBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: errorDetail{
		Code:    domain.CodeInvalidInput,
		Message: errMalformedBody.Error() + ": " + err.Error(),
	}})
}
