package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cricket-booking/internal/services"
	"cricket-booking/internal/utils"
)

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Causes of storage failures stay in the server log.
func respondError(c *gin.Context, err error) {
	status := statusFor(services.KindOf(err))
	message := "internal error"
	var e *services.Error
	if errors.As(err, &e) {
		message = e.Public()
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, utils.ErrorResponse(message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, utils.ErrorResponse(message))
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}
