package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowedMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowedHeaders = "Origin,Content-Type,Accept,X-Request-ID,X-Trace-ID"
)

// CORS restricts cross-origin access to the configured console origins.
// Sessions ride on cookies, so the middleware always sends
// Access-Control-Allow-Credentials and never answers with a wildcard
// origin: browsers refuse credentialed responses carrying "*", and a
// wildcard would hand the session cookie to any page anyway. A literal
// "*" in the configuration is therefore treated as "echo any origin".
func CORS(allowedOrigins []string) gin.HandlerFunc {
	echoAny := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			echoAny = true
			continue
		}
		allowed[strings.TrimRight(origin, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && (echoAny || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", corsAllowedMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowedHeaders)
			c.Header("Access-Control-Max-Age", "86400")

			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
