package handler

import (
	"errors"
	"net/http"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/guard"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/login"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login is the direct email/password path. It runs through the same
// bridge as SSO logins, so the login-method guard applies here too: an
// SSO-created account cannot authenticate with a password, even a
// correct one.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// No declared method: the guard defaults to emailAndPassword.
	lc := login.Context{Locale: login.LocaleFrom(c.Request)}

	accountID, err := h.bridge.Authenticate(
		c.Request.Context(),
		req.Email,
		req.Password,
		lc,
	)

	if err != nil {
		var mismatch *guard.MismatchError
		if errors.As(err, &mismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": mismatch.Message()})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.bridge.EstablishSession(c, accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
}
