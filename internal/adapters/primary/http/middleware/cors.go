// Package middleware holds the gin middleware of the HTTP surface.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS applies the open cross-origin policy: any origin, GET/POST/OPTIONS,
// preflight cached for a day.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
