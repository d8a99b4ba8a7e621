package api

import (
	"net/http"

	"betpool/application"
	"betpool/domain/entities"

	"github.com/gin-gonic/gin"
)

// statusFor maps a failed envelope to an HTTP status
func statusFor(kind entities.ErrorKind, code string) int {
	switch kind {
	case entities.KindValidation:
		return http.StatusBadRequest
	case entities.KindNotFound:
		return http.StatusNotFound
	case entities.KindAuthorization:
		if code == entities.ErrInvalidCredentials.Code || code == entities.ErrInvalidToken.Code {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case entities.KindConflict, entities.KindIntegrity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respond[T any](c *gin.Context, result application.Result[T]) {
	if result.Success {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(statusFor(result.Kind, result.Code), result)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, application.Result[any]{
		Success: false,
		Message: message,
		Code:    "INVALID_REQUEST",
		Kind:    entities.KindValidation,
	})
}
