package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utpal16raj09/flfe/internal/auth/credentials"
	"github.com/utpal16raj09/flfe/internal/auth/issuer"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.issuer.Signup(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, issuer.ErrDuplicateAccount):
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		case errors.Is(err, credentials.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "password too short"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}
