package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizeos/workforce/internal/auth"
	"github.com/rizeos/workforce/pkg/metrics"
)

// Context keys set by the auth middleware.
const (
	ctxKeyOrgID   = "org_id"
	ctxKeySubject = "subject"
	ctxKeyRole    = "role"
)

// AuthMiddleware verifies the Bearer token and stores its claims on the
// request context. A missing or malformed header is a 401; a token that
// fails verification is a 403.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": ErrMissingAuthHeader.Error(),
			})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": ErrMalformedAuth.Error(),
			})
			return
		}

		claims, err := auth.Verify(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false, "message": auth.ErrInvalidToken.Error(),
			})
			return
		}

		c.Set(ctxKeyOrgID, claims.OrgID)
		c.Set(ctxKeySubject, claims.Subject)
		c.Set(ctxKeyRole, claims.Role)
		c.Next()
	}
}

// MetricsMiddleware records Prometheus request metrics for every route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		durationMs := float64(time.Since(start).Milliseconds())

		metrics.RecordHTTPRequest(endpoint, c.Request.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, c.Request.Method, status, durationMs)
	}
}

// orgID returns the org claim set by AuthMiddleware.
func orgID(c *gin.Context) string {
	return c.GetString(ctxKeyOrgID)
}

// subject returns the subject claim set by AuthMiddleware.
func subject(c *gin.Context) string {
	return c.GetString(ctxKeySubject)
}
