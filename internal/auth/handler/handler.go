package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/utpal16raj09/flfe/internal/auth/issuer"
	"github.com/utpal16raj09/flfe/internal/auth/provider"
	"github.com/utpal16raj09/flfe/internal/middleware"
	"github.com/utpal16raj09/flfe/internal/oauthstate"
)

type Handler struct {
	providers *provider.Registry
	states    *oauthstate.Store
	issuer    *issuer.Service

	// Browser destination after a successful OAuth callback; the issued
	// token is appended as ?token=.
	frontendCallbackURL string
}

func NewHandler(
	registry *provider.Registry,
	states *oauthstate.Store,
	issuer *issuer.Service,
	frontendCallbackURL string,
) *Handler {
	return &Handler{
		providers:           registry,
		states:              states,
		issuer:              issuer,
		frontendCallbackURL: frontendCallbackURL,
	}
}

// RegisterRoutes mounts the public auth endpoints plus the authenticated
// reissue endpoint.
func (h *Handler) RegisterRoutes(r *gin.Engine, authed *gin.RouterGroup) {
	r.POST("/api/auth/signup", h.Signup)
	r.POST("/api/auth/login", h.Login)
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)

	authed.GET("/auth/me", h.Me)
}

// Me reissues a fresh token for the already-authenticated subject.
func (h *Handler) Me(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(401, gin.H{"error": "not authenticated"})
		return
	}

	session, err := h.issuer.Reissue(c.Request.Context(), p.Email)
	if err != nil {
		// The account may have been deleted since the token was issued.
		c.JSON(404, gin.H{"error": "user not found"})
		return
	}

	c.JSON(200, session)
}
