package user

import "time"

// MsgUserDeleted is returned on a successful delete.
const MsgUserDeleted = "User Deleted Successfully"

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email"`
	Age     *int   `validate:"required,gte=0,lte=150"`
	Address string `validate:"omitempty,max=200"`
	Bio     string `validate:"omitempty,max=500"`
}

// UpdateUserRequest represents a partial update. Nil fields are left untouched.
type UpdateUserRequest struct {
	ID      string  `validate:"required"`
	Name    *string `validate:"omitnil,min=1,max=100"`
	Email   *string `validate:"omitnil,email"`
	Age     *int    `validate:"omitnil,gte=0,lte=150"`
	Address *string `validate:"omitnil,max=200"`
	Bio     *string `validate:"omitnil,max=500"`
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID      string
	Message string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID        string
	Name      string
	Email     string
	Age       int
	Address   string
	Bio       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
