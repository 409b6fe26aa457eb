package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"user-record-service/internal/usecase/user"
	apperrors "user-record-service/pkg/errors"
	"user-record-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// Field rules are enforced by the usecase.
type CreateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Age     *int   `json:"age"`
	Address string `json:"address"`
	Bio     string `json:"bio"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Age     *int    `json:"age"`
	Address *string `json:"address"`
	Bio     *string `json:"bio"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	Address   string    `json:"address,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrorResponse is the body for client and server failures
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

// MessageResponse is the body for not-found outcomes and confirmations
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateUser handles POST /api/user
func (h *UserHandler) CreateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{ErrorMessage: err.Error()})
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:    req.Name,
		Email:   req.Email,
		Age:     req.Age,
		Address: req.Address,
		Bio:     req.Bio,
	})
	if err != nil {
		h.respondError(c, "create user", err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp))
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, "list users", err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i := range resp.Users {
		users[i] = toResponse(&resp.Users[i])
	}

	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: c.Param("id")})
	if err != nil {
		h.respondError(c, "get user", err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp))
}

// UpdateUser handles PUT /api/update/user/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)
	id := c.Param("id")

	// An empty body is an empty update.
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("invalid update user request", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{ErrorMessage: err.Error()})
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Age:     req.Age,
		Address: req.Address,
		Bio:     req.Bio,
	})
	if err != nil {
		h.respondError(c, "update user", err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp))
}

// DeleteUser handles DELETE /api/delete/user/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: c.Param("id")})
	if err != nil {
		h.respondError(c, "delete user", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: resp.Message})
}

// respondError converts usecase errors to HTTP responses.
// Not-found outcomes use {message}; everything else uses {errorMessage}.
func (h *UserHandler) respondError(c *gin.Context, op string, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)
	status := apperrors.HTTPStatus(err)

	switch {
	case status == http.StatusNotFound:
		log.Info(op+" not found", zap.String("id", c.Param("id")))
		c.JSON(status, MessageResponse{Message: err.Error()})
	case status >= http.StatusInternalServerError:
		log.Error(op+" failed", zap.Error(err))
		c.JSON(status, ErrorResponse{ErrorMessage: err.Error()})
	default:
		log.Warn(op+" rejected", zap.Int("status", status), zap.Error(err))
		c.JSON(status, ErrorResponse{ErrorMessage: clientMessage(err)})
	}
}

// clientMessage strips the validation prefix so clients see the rule that failed.
func clientMessage(err error) string {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

func toResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		Address:   u.Address,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
