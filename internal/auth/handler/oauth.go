package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/utpal16raj09/flfe/internal/logger"
)

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	pending, err := h.states.Begin(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to start oauth flow",
		})
		return
	}

	authURL := p.AuthCodeURL(pending.State, pending.Challenge())
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	pending, err := h.states.Consume(c.Request.Context(), c.Query("state"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	// Provider-reported error, e.g. the user cancelled the consent screen.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	identity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		pending.Verifier,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	session, err := h.issuer.CompleteOAuth(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	logger.Info("oauth login success", map[string]any{
		"provider": providerName,
		"subject":  session.Email,
	})

	// Original frontend contract: land on the callback page with the token
	// in the query string.
	redirect := h.frontendCallbackURL + "?token=" + url.QueryEscape(session.Token)
	c.Redirect(http.StatusFound, redirect)
}
