// Package http wires the gin engine, handlers and middleware together.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"authgate/internal/application/sessions"
	"authgate/internal/infrastructure/cache"
	"authgate/internal/interfaces/http/handlers"
	"authgate/internal/interfaces/http/middleware"
	"authgate/internal/interfaces/http/routes"
	sharedConfig "authgate/internal/shared/config"
	"authgate/internal/shared/logger"
)

// Router holds the HTTP engine and its handler dependencies.
type Router struct {
	engine      *gin.Engine
	authHandler *handlers.AuthHandler
	sessionAuth *middleware.SessionAuth
}

// NewRouter builds the engine and registers all routes.
func NewRouter(manager *sessions.Manager, redisClient *redis.Client, cfg *sharedConfig.Config, log logger.Interface) *Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(log))

	stateStore := cache.NewOAuthStateStore(redisClient)
	authHandler := handlers.NewAuthHandler(manager, stateStore, log)
	sessionAuth := middleware.NewSessionAuth(manager, log)

	routes.SetupAuthRoutes(engine, &routes.AuthRouteConfig{
		AuthHandler: authHandler,
		SessionAuth: sessionAuth,
	})

	return &Router{
		engine:      engine,
		authHandler: authHandler,
		sessionAuth: sessionAuth,
	}
}

// Engine exposes the underlying gin engine for serving and for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
