package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/logging"
	"github.com/dmitrijs2005/orgchat/internal/server/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey    = "user_id"
	ctxUsernameKey  = "username"
	ctxRequestIDKey = "request_id"

	headerRequestID = "X-Request-ID"
	bearerPrefix    = "bearer "
)

// TokenValidator verifies access tokens for the bearer middleware.
type TokenValidator interface {
	Validate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// CORS allows every origin.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:   []string{"Content-Length", "Content-Type", headerRequestID},
		MaxAge:          12 * time.Hour,
	})
}

// RequestLogger tags every request with an id and logs its outcome.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestIDKey, requestID)
		c.Header(headerRequestID, requestID)

		start := time.Now()
		c.Next()

		args := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error(c.Request.Context(), "request failed", args...)
		case status >= http.StatusBadRequest:
			logger.Warn(c.Request.Context(), "request rejected", args...)
		default:
			logger.Info(c.Request.Context(), "request completed", args...)
		}
	}
}

// RequestMetrics records method, matched route, status and latency of
// every request.
func RequestMetrics(m RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Recovery turns a handler panic into a 500 reply.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"path", c.Request.URL.Path,
					"panic", fmt.Sprint(p))
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Detail: common.ErrorInternal.Error()})
			}
		}()
		c.Next()
	}
}

// BearerAuth requires a valid access token in the Authorization header and
// stores its subject and username in the gin context.
func BearerAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: "missing bearer token"})
			return
		}

		claims, err := v.Validate(c.Request.Context(), strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ctxUserIDKey, claims.Subject)
		c.Set(ctxUsernameKey, claims.Username)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
