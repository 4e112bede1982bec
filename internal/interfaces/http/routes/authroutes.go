package routes

import (
	"github.com/gin-gonic/gin"

	"authgate/internal/interfaces/http/handlers"
	"authgate/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for authentication routes.
type AuthRouteConfig struct {
	AuthHandler *handlers.AuthHandler
	SessionAuth *middleware.SessionAuth
}

// SetupAuthRoutes configures the authentication and session endpoints. The
// OAuth login paths must stay in the login/OAuthLogin/<provider> shape the
// callback URL validation enforces.
func SetupAuthRoutes(engine *gin.Engine, cfg *AuthRouteConfig) {
	engine.GET("/realm", cfg.AuthHandler.GetRealm)

	login := engine.Group("/login")
	{
		login.POST("", cfg.AuthHandler.Login)
		login.GET("/OAuthLogin/:provider", cfg.AuthHandler.OAuthCallback)
		login.POST("/OAuthLogin/:provider", cfg.AuthHandler.InitiateOAuth)
	}

	session := engine.Group("/session", cfg.SessionAuth.RequireAuth())
	{
		session.GET("", cfg.AuthHandler.GetCurrentSession)
		session.DELETE("", cfg.AuthHandler.Logout)
	}
}
