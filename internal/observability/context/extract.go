package context

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestIDFromGin resolves the request id for a gin request, preferring the
// request context over the gin keystore.
func RequestIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if ctx := c.Request.Context(); ctx != nil {
		if value := RequestIDFromContext(ctx); value != "" {
			return value
		}
	}
	if value := strings.TrimSpace(c.GetString("request_id")); value != "" {
		return value
	}
	return ""
}
