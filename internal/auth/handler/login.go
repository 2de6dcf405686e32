package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utpal16raj09/flfe/internal/auth/issuer"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.issuer.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, issuer.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, session)
}
