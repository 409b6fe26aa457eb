package server

import (
	"net/http"
	"time"

	"user-record-service/cmd/api/di"
	ginrouter "user-record-service/internal/adapter/gin/router"

	"go.uber.org/zap"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(c *di.Container, addr string, l *zap.Logger) *http.Server {
	router := ginrouter.SetupRouter(
		c.UserHandler,
		c.HealthHandler,
		ginrouter.Options{
			AllowedOrigins: c.Config.CORS.AllowedOrigins,
			RateLimiter:    c.RateLimiter,
		},
		l,
	)

	l.Info("Gin REST API configured", zap.String("address", addr))

	// Bio generation may hold a request open while the remote model answers.
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
