package handler

import (
	"errors"
	"net/http"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Register creates a password account. SSO accounts are never created
// here; they are provisioned by the identity resolver.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()

	_, err := h.accounts.FindByEmail(ctx, req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		return
	}
	if !errors.Is(err, account.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	acct, err := h.accounts.Create(ctx, account.New{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		LoginMethod: auth.MethodEmailAndPassword,
		Password:    req.Password,
		Activated:   false,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "registration failed"})
		return
	}

	if err := h.bridge.EstablishSession(c, acct.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}
