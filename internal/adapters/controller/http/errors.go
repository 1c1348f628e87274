package http

import (
	"errors"
	"net/http"

	"github.com/bcplughub/backend/internal/domain/common/errorz"
	"github.com/gin-gonic/gin"
)

// statusFor maps the domain error taxonomy onto HTTP status codes in one
// place so handlers never pick codes ad hoc.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errorz.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errorz.Conflict),
		errors.Is(err, errorz.AlreadyRegistered),
		errors.Is(err, errorz.AlreadyRated),
		errors.Is(err, errorz.AlreadyInvited),
		errors.Is(err, errorz.AtCapacity):
		return http.StatusConflict
	case errors.Is(err, errorz.CapacityExceeded),
		errors.Is(err, errorz.Invalid):
		return http.StatusBadRequest
	case errors.Is(err, errorz.Forbidden),
		errors.Is(err, errorz.NotEligible):
		return http.StatusForbidden
	case errors.Is(err, errorz.Expired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
