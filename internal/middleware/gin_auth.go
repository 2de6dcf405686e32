package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinAuthenticate adapts the net/http AuthGate to Gin. The gate itself
// never aborts the request; it only enriches the context.
func GinAuthenticate(gate *AuthGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		gate.Authenticate(next).ServeHTTP(c.Writer, c.Request)
	}
}

// RequireAuth rejects anonymous requests. Must run after GinAuthenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "not authenticated",
			})
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose principal lacks the given role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "not authenticated",
			})
			return
		}
		if !p.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "forbidden",
			})
			return
		}
		c.Next()
	}
}
