package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "user-record-service/internal/domain/user"
	usecase "user-record-service/internal/usecase/user"
	pkgerrors "user-record-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req usecase.UpdateUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) (*usecase.DeleteUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DeleteUserResponse), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *UserHandler, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	logger := zaptest.NewLogger(t)
	handler := NewUserHandler(mockUsecase, logger)

	r := gin.New()
	t.Cleanup(func() { mockUsecase.AssertExpectations(t) })
	return r, handler, mockUsecase
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/user", handler.CreateUser)

		age := 25
		reqBody := CreateUserRequest{Name: "Budi", Email: "budi@gmail.com", Age: &age, Address: "Jakarta"}

		mockUsecase.On("CreateUser", mock.Anything, mock.MatchedBy(func(req usecase.CreateUserRequest) bool {
			return req.Name == "Budi" && req.Email == "budi@gmail.com" && req.Age != nil && *req.Age == 25 && req.Address == "Jakarta"
		})).Return(&usecase.User{ID: "u-1", Name: "Budi", Email: "budi@gmail.com", Age: 25, Address: "Jakarta", Bio: "hi"}, nil)

		w := doJSON(r, http.MethodPost, "/api/user", reqBody)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[UserResponse](t, w)
		assert.Equal(t, "u-1", resp.ID)
		assert.Equal(t, "hi", resp.Bio)
		assert.Equal(t, 25, resp.Age)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.POST("/api/user", handler.CreateUser)

		w := doJSON(r, http.MethodPost, "/api/user", "invalid json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[map[string]string](t, w)
		assert.NotEmpty(t, resp["errorMessage"])
	})

	t.Run("Validation Error", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/user", handler.CreateUser)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("Email", "email must use @gmail.com"))

		w := doJSON(r, http.MethodPost, "/api/user", CreateUserRequest{Name: "A", Email: "a@example.com"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[map[string]string](t, w)
		assert.Equal(t, "email must use @gmail.com", resp["errorMessage"])
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/user", handler.CreateUser)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).Return(nil, domain.NewEmailTakenError())

		w := doJSON(r, http.MethodPost, "/api/user", CreateUserRequest{Name: "A", Email: "a@gmail.com"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[map[string]string](t, w)
		assert.Equal(t, domain.MsgEmailTaken, resp["errorMessage"])
	})

	t.Run("Usecase Error", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/user", handler.CreateUser)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		w := doJSON(r, http.MethodPost, "/api/user", CreateUserRequest{Name: "A", Email: "a@gmail.com"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode[map[string]string](t, w)
		assert.Equal(t, "connection refused", resp["errorMessage"])
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/user/:id", handler.GetUser)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: "u-1"}).
			Return(&usecase.User{ID: "u-1", Name: "Budi", Email: "budi@gmail.com", Age: 25}, nil)

		w := doJSON(r, http.MethodGet, "/api/user/u-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[map[string]any](t, w)
		assert.Equal(t, "u-1", resp["id"])
		assert.NotContains(t, resp, "bio", "empty bio is omitted")
	})

	t.Run("Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/user/:id", handler.GetUser)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: "missing"}).Return(nil, domain.NewNotFoundError())

		w := doJSON(r, http.MethodGet, "/api/user/missing", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[map[string]string](t, w)
		assert.Equal(t, domain.MsgNotFound, resp["message"])
		assert.NotContains(t, resp, "errorMessage")
	})

	t.Run("Internal Error", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/user/:id", handler.GetUser)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: "bad"}).
			Return(nil, pkgerrors.NewInternalError("failed to get user", errors.New("invalid user id")))

		w := doJSON(r, http.MethodGet, "/api/user/bad", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode[map[string]string](t, w)
		assert.Contains(t, resp["errorMessage"], "invalid user id")
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.PUT("/api/update/user/:id", handler.UpdateUser)

		mockUsecase.On("UpdateUser", mock.Anything, mock.MatchedBy(func(req usecase.UpdateUserRequest) bool {
			return req.ID == "u-1" && req.Age != nil && *req.Age == 30 && req.Name == nil && req.Email == nil
		})).Return(&usecase.User{ID: "u-1", Name: "Budi", Email: "budi@gmail.com", Age: 30, Bio: "new"}, nil)

		w := doJSON(r, http.MethodPut, "/api/update/user/u-1", `{"age":30}`)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[UserResponse](t, w)
		assert.Equal(t, 30, resp.Age)
		assert.Equal(t, "new", resp.Bio)
	})

	t.Run("Empty Body", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.PUT("/api/update/user/:id", handler.UpdateUser)

		mockUsecase.On("UpdateUser", mock.Anything, usecase.UpdateUserRequest{ID: "u-1"}).
			Return(&usecase.User{ID: "u-1", Name: "Budi", Email: "budi@gmail.com", Age: 25}, nil)

		w := doJSON(r, http.MethodPut, "/api/update/user/u-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[UserResponse](t, w)
		assert.Equal(t, "Budi", resp.Name)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.PUT("/api/update/user/:id", handler.UpdateUser)

		w := doJSON(r, http.MethodPut, "/api/update/user/u-1", `{"age":"old"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.PUT("/api/update/user/:id", handler.UpdateUser)

		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).Return(nil, domain.NewNotFoundError())

		w := doJSON(r, http.MethodPut, "/api/update/user/u-9", `{"name":"X"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[map[string]string](t, w)
		assert.Equal(t, domain.MsgNotFound, resp["message"])
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.DELETE("/api/delete/user/:id", handler.DeleteUser)

		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: "u-1"}).
			Return(&usecase.DeleteUserResponse{ID: "u-1", Message: usecase.MsgUserDeleted}, nil)

		w := doJSON(r, http.MethodDelete, "/api/delete/user/u-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[map[string]string](t, w)
		assert.Equal(t, "User Deleted Successfully", resp["message"])
	})

	t.Run("Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.DELETE("/api/delete/user/:id", handler.DeleteUser)

		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: "u-1"}).Return(nil, domain.NewNotFoundError())

		w := doJSON(r, http.MethodDelete, "/api/delete/user/u-1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users", handler.ListUsers)

		mockUsecase.On("ListUsers", mock.Anything).Return(&usecase.ListUsersResponse{
			Users: []usecase.User{
				{ID: "u-1", Name: "User 1"},
				{ID: "u-2", Name: "User 2"},
			},
		}, nil)

		w := doJSON(r, http.MethodGet, "/api/users", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[[]UserResponse](t, w)
		require.Len(t, resp, 2)
		assert.Equal(t, "u-2", resp[1].ID)
	})

	t.Run("Empty", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users", handler.ListUsers)

		mockUsecase.On("ListUsers", mock.Anything).Return(&usecase.ListUsersResponse{Users: []usecase.User{}}, nil)

		w := doJSON(r, http.MethodGet, "/api/users", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Internal Error", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users", handler.ListUsers)

		mockUsecase.On("ListUsers", mock.Anything).Return(nil, pkgerrors.NewInternalError("failed to list users", errors.New("timeout")))

		w := doJSON(r, http.MethodGet, "/api/users", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
