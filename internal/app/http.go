package app

import (
	"context"

	"github.com/gin-gonic/gin"

	authhandler "github.com/utpal16raj09/flfe/internal/auth/handler"
	"github.com/utpal16raj09/flfe/internal/auth/issuer"
	"github.com/utpal16raj09/flfe/internal/auth/provider"
	"github.com/utpal16raj09/flfe/internal/auth/provider/google"
	"github.com/utpal16raj09/flfe/internal/auth/reconciler"
	"github.com/utpal16raj09/flfe/internal/config"
	"github.com/utpal16raj09/flfe/internal/middleware"
	"github.com/utpal16raj09/flfe/internal/oauthstate"
	"github.com/utpal16raj09/flfe/internal/token"
	"github.com/utpal16raj09/flfe/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	tokenService, err := token.NewService(
		[]byte(cfg.TokenSigningKey),
		cfg.TokenIssuer,
		cfg.TokenTTL,
	)
	if err != nil {
		return nil, nil, err
	}

	userStore := user.NewPostgresStore(infra.DB)
	accountReconciler := reconciler.New(userStore, infra.Sender)
	sessionIssuer := issuer.New(userStore, tokenService, accountReconciler, infra.Sender)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(googleProvider)
	stateStore := oauthstate.NewStore(infra.Redis.Client)

	authHandler := authhandler.NewHandler(
		registry,
		stateStore,
		sessionIssuer,
		cfg.FrontendCallbackURL,
	)

	userHandler := user.NewHandler(userStore)
	gate := middleware.NewAuthGate(tokenService, userStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.GinAuthenticate(gate))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Routes
	// ----------------------------

	authed := router.Group("/api")
	authed.Use(middleware.RequireAuth())

	authHandler.RegisterRoutes(router, authed)

	admin := router.Group("/api")
	admin.Use(middleware.RequireRole(user.RoleAdmin))
	userHandler.RegisterRoutes(admin)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if err := infra.Redis.Close(); err != nil {
			return err
		}
		return infra.DB.Close()
	}, nil
}
