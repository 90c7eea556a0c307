package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gagan3036/compliance-platform-api/internal/config"
	"github.com/Gagan3036/compliance-platform-api/internal/http/handler"
	"github.com/Gagan3036/compliance-platform-api/internal/http/middleware"
)

// NewRouter wires Gin routes and middleware. All endpoints live under the
// fixed /api root.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, quizHandler *handler.QuizHandler, authMiddleware *middleware.Auth) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(nil))
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/profile", authMiddleware.RequireAccessToken, authHandler.GetProfile)
		auth.PUT("/profile", authMiddleware.RequireAccessToken, authHandler.UpdateProfile)
		auth.GET("/users", authMiddleware.RequireAccessToken, authHandler.ListUsers)
	}

	api.POST("/submit", quizHandler.Submit)
	api.GET("/history/:userId", quizHandler.History)
	api.GET("/showUsers", quizHandler.ShowUsers)
	api.GET("/analytics/:userId", quizHandler.Analytics)

	return r
}
