package middleware

import "github.com/gin-gonic/gin"

// NoStore stops browsers and proxies from caching responses. Exam state and
// results change from one request to the next.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
