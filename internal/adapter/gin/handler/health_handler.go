package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	dbConnected    = "Connected"
	dbDisconnected = "Disconnected"
)

// pingTimeout bounds the store check so the health route stays responsive.
const pingTimeout = 2 * time.Second

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the service info route
type HealthHandler struct {
	store   Pinger
	version string
	port    string
	log     *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. A nil store is reported as disconnected.
func NewHealthHandler(store Pinger, version, port string, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		version: version,
		port:    port,
		log:     log,
	}
}

// HealthResponse is the body of GET /
type HealthResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Port      string            `json:"port"`
	Database  string            `json:"database"`
	Endpoints map[string]string `json:"endpoints"`
}

// Endpoints lists the public routes advertised by the info route.
var Endpoints = map[string]string{
	"createUser":  "POST /api/user",
	"getAllUsers": "GET /api/users",
	"getUserById": "GET /api/user/:id",
	"updateUser":  "PUT /api/update/user/:id",
	"deleteUser":  "DELETE /api/delete/user/:id",
}

// Info handles GET /
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "OK",
		Message:   "API is running!",
		Version:   h.version,
		Port:      h.port,
		Database:  h.databaseState(c.Request.Context()),
		Endpoints: Endpoints,
	})
}

func (h *HealthHandler) databaseState(ctx context.Context) string {
	if h.store == nil {
		return dbDisconnected
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("store ping failed", zap.Error(err))
		return dbDisconnected
	}
	return dbConnected
}
