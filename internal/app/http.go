package app

import (
	"context"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/handler"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/login"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/provider"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/provider/apple"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/provider/google"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/resolver"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/verifier"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/config"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/middleware"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	accounts := account.NewPGStore(infra.DB)
	identityResolver := resolver.NewStoreResolver(accounts)
	bridge := login.NewService(accounts, infra.Sessions, cfg.AppClientURL)

	var strategies []provider.Strategy
	verifiers := map[string]verifier.Verifier{}

	if cfg.Google.Enabled() {
		googleStrategy, err := google.New(cfg.Google)
		if err != nil {
			return nil, nil, err
		}
		strategies = append(strategies, googleStrategy)
		verifiers[googleStrategy.Name()] = verifier.NewGoogle()
		logger.Info("google sso enabled", nil)
	}

	if cfg.Apple.Enabled() {
		appleStrategy, err := apple.New(cfg.Apple)
		if err != nil {
			return nil, nil, err
		}
		appleVerifier, err := verifier.NewApple(ctx, cfg.Apple.ClientID)
		if err != nil {
			return nil, nil, err
		}
		strategies = append(strategies, appleStrategy)
		verifiers[appleStrategy.Name()] = appleVerifier
		logger.Info("apple sso enabled", nil)
	}

	registry := provider.NewRegistry(strategies...)

	authHandler := handler.NewHandler(
		registry,
		verifiers,
		identityResolver,
		bridge,
		accounts,
		infra.Sessions,
		cfg.AppClientURL,
	)

	authMiddleware := middleware.NewAuthMiddleware(infra.Sessions)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", authHandler.Me)
	api.PATCH("/me", authHandler.UpdateMe)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
