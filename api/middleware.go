package api

import (
	"net/http"
	"strings"
	"time"

	"betpool/application"
	"betpool/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	contextUserID    = "userID"
	contextRequestID = "requestID"
	bearerSchema     = "Bearer "
)

// RequestLogger logs every request with logrus and tags it with a request id
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(contextRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("HTTP request failed")
			return
		}
		entry.Debug("HTTP request")
	}
}

// RequireAuth verifies the bearer token and stores the user id in the context
func RequireAuth(ops Operations) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, application.Result[any]{
				Success: false,
				Message: "Authorization header must be a bearer token.",
				Code:    entities.ErrInvalidToken.Code,
				Kind:    entities.ErrInvalidToken.Kind,
			})
			return
		}

		result := ops.VerifyToken(c.Request.Context(), strings.TrimSpace(header[len(bearerSchema):]))
		if !result.Success {
			c.AbortWithStatusJSON(statusFor(result.Kind, result.Code), result)
			return
		}

		c.Set(contextUserID, result.Payload)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(contextUserID)
}
