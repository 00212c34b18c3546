package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireAuth adapts the net/http RequireAuth middleware to a gin
// chain. Auth decisions stay session-based and provider-agnostic.
func GinRequireAuth(auth *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r // carry the user id the middleware attached
			c.Next()
		})

		auth.RequireAuth(next).ServeHTTP(c.Writer, c.Request)

		// The middleware wrote the 401 itself; stop the gin chain.
		if c.Writer.Written() {
			c.Abort()
		}
	}
}
