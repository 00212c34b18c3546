package handler

import (
	"net/http"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/session"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Logout(c *gin.Context) {
	// Delete session from store (best-effort), then clear the cookie.
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Idempotent response
	c.Status(http.StatusNoContent)
}
