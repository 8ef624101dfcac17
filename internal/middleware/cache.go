package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl marks list responses as briefly cacheable and everything
// else as no-store. The records behind these endpoints are re-fetched
// per view anyway; the header only smooths rapid remounts.
func CacheControl(maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}
		c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d, must-revalidate", maxAge))
		c.Next()
	}
}
