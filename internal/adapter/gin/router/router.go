package router

import (
	"user-record-service/internal/adapter/gin/handler"
	"user-record-service/internal/adapter/gin/middleware"
	"user-record-service/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options carries the optional pieces of the HTTP stack.
type Options struct {
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	router.GET("/", healthHandler.Info)

	api := router.Group("/api")
	{
		api.POST("/user", userHandler.CreateUser)
		api.GET("/users", userHandler.ListUsers)
		api.GET("/user/:id", userHandler.GetUser)
		api.PUT("/update/user/:id", userHandler.UpdateUser)
		api.DELETE("/delete/user/:id", userHandler.DeleteUser)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = append(config.AllowHeaders, logger.RequestIDHeader)
	config.ExposeHeaders = append(config.ExposeHeaders, logger.RequestIDHeader)
	return config
}
