package handler

import (
	"net/http"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Me returns the authenticated account's public fields. loginMethod is
// read-only: no client-writable path for it exists anywhere.
func (h *Handler) Me(c *gin.Context) {
	accountID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	acct, err := h.accounts.FindByID(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          acct.ID,
		"email":       acct.Email,
		"firstName":   acct.FirstName,
		"lastName":    acct.LastName,
		"loginMethod": acct.LoginMethod,
		"activated":   acct.Activated,
		"verified":    acct.Verified,
	})
}

type updateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

// UpdateMe edits owner-editable profile fields. For SSO-bound accounts
// the email mirrors the provider identity and a change request is
// silently dropped.
func (h *Handler) UpdateMe(c *gin.Context) {
	accountID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	acct, err := h.accounts.FindByID(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	upd := account.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if acct.LoginMethod == auth.MethodEmailAndPassword {
		upd.Email = req.Email
	} else if req.Email != nil {
		logger.Warn("email change ignored for sso account", map[string]any{
			"account_id": acct.ID,
			"method":     string(acct.LoginMethod),
		})
	}

	if err := h.accounts.UpdateProfile(c.Request.Context(), accountID, upd); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
