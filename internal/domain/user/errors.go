package user

import apperrors "user-record-service/pkg/errors"

// Client-facing messages shared by every store implementation.
const (
	MsgNotFound   = "User Not Found"
	MsgEmailTaken = "User with this email already exists"
)

// NewNotFoundError is returned by repositories when no record matches an id.
func NewNotFoundError() *apperrors.NotFoundError {
	return apperrors.NewNotFoundError("user", MsgNotFound)
}

// NewEmailTakenError is returned when a write would violate email uniqueness.
func NewEmailTakenError() *apperrors.AlreadyExistsError {
	return apperrors.NewAlreadyExistsError("user", MsgEmailTaken)
}
