package user

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-record-service/internal/domain/user"
	apperrors "user-record-service/pkg/errors"
	"user-record-service/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, MongoDB) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)   // Insert a new user, returns the stored record
	GetByID(ctx context.Context, id string) (*domain.User, error)       // Retrieve user by ID, NotFoundError when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // Retrieve user by email, nil when absent
	Update(ctx context.Context, u *domain.User) (*domain.User, error)   // Replace an existing user, returns the stored record
	Delete(ctx context.Context, id string) error                        // Delete user by ID
	List(ctx context.Context) ([]domain.User, error)                    // List every user
}

// BioGenerator produces a short biography for a user.
// Implementations never fail; they fall back to a fixed template.
type BioGenerator interface {
	Generate(ctx context.Context, name string, age int, location string) string
}

// Service implements the business logic for user management operations.
type Service struct {
	repo        Repository          // Repository for data access
	bio         BioGenerator        // Optional bio enrichment, nil disables it
	emailPolicy domain.EmailPolicy  // Extra rule applied on top of email syntax
	log         *zap.Logger         // Logger for structured logging
	validate    *validator.Validate // Validator for request validation
}

var _ Usecase = (*Service)(nil)

// New creates a new Service. A nil bio generator disables enrichment.
func New(r Repository, bio BioGenerator, policy domain.EmailPolicy, log *zap.Logger) *Service {
	return &Service{
		repo:        r,
		bio:         bio,
		emailPolicy: policy,
		log:         log,
		validate:    validator.New(),
	}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			case "gte":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "lte":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return apperrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return apperrors.NewValidationError("", err.Error())
}

// CreateUser creates a new user after validating the request and checking email uniqueness.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, s.log)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)

	log.Info("creating user", zap.String("name", in.Name), logger.Email(in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}
	if err := s.emailPolicy.Check(in.Email); err != nil {
		log.Warn("email rejected by policy", logger.Email(in.Email), zap.String("policy", string(s.emailPolicy)))
		return nil, apperrors.NewValidationError("Email", err.Error())
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to check existing email", logger.Email(in.Email), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil {
		log.Warn("email already exists", logger.Email(in.Email), zap.String("existing_id", existing.ID))
		return nil, domain.NewEmailTakenError()
	}

	candidate := &domain.User{
		Name:    in.Name,
		Email:   in.Email,
		Age:     *in.Age,
		Address: in.Address,
		Bio:     in.Bio,
	}
	if candidate.Bio == "" && s.bio != nil {
		candidate.Bio = s.bio.Generate(ctx, candidate.Name, candidate.Age, candidate.Address)
	}

	created, err := s.repo.Create(ctx, candidate)
	if err != nil {
		if apperrors.IsAlreadyExists(err) {
			// Lost a race with a concurrent create; the unique index caught it.
			log.Warn("email already exists at write time", logger.Email(in.Email))
			return nil, domain.NewEmailTakenError()
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	log.Info("user created", zap.String("id", created.ID))
	return toDTO(created), nil
}

// ListUsers returns every stored user. An empty store yields an empty list, not an error.
func (s *Service) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, s.log)

	domainUsers, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	if len(domainUsers) == 0 {
		log.Info("Users data Not Found")
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = *toDTO(&domainUsers[i])
	}

	return &ListUsersResponse{Users: users}, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	u, err := s.findExisting(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return toDTO(u), nil
}

// UpdateUser applies a partial update to an existing user.
// When the name or age changes the bio is regenerated from the merged record.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("updating user", zap.String("id", in.ID))

	// A missing record is reported before anything about the body.
	current, err := s.findExisting(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	trimPtr(in.Name)
	trimPtr(in.Email)
	trimPtr(in.Address)

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}
	if in.Email != nil {
		if err := s.emailPolicy.Check(*in.Email); err != nil {
			log.Warn("email rejected by policy", logger.Email(*in.Email), zap.String("policy", string(s.emailPolicy)))
			return nil, apperrors.NewValidationError("Email", err.Error())
		}
	}

	if in.Email != nil && *in.Email != current.Email {
		existing, err := s.repo.GetByEmail(ctx, *in.Email)
		if err != nil {
			log.Error("failed to check existing email", logger.Email(*in.Email), zap.Error(err))
			return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
		}
		if existing != nil && existing.ID != current.ID {
			log.Warn("email already exists", logger.Email(*in.Email), zap.String("existing_id", existing.ID))
			return nil, domain.NewEmailTakenError()
		}
	}

	merged := *current
	if in.Name != nil {
		merged.Name = *in.Name
	}
	if in.Email != nil {
		merged.Email = *in.Email
	}
	if in.Age != nil {
		merged.Age = *in.Age
	}
	if in.Address != nil {
		merged.Address = *in.Address
	}
	if in.Bio != nil {
		merged.Bio = *in.Bio
	}
	if (in.Name != nil || in.Age != nil) && s.bio != nil {
		merged.Bio = s.bio.Generate(ctx, merged.Name, merged.Age, merged.Address)
	}

	updated, err := s.repo.Update(ctx, &merged)
	if err != nil {
		switch {
		case apperrors.IsNotFound(err):
			log.Warn("user disappeared before update", zap.String("id", in.ID))
			return nil, domain.NewNotFoundError()
		case apperrors.IsAlreadyExists(err):
			return nil, domain.NewEmailTakenError()
		}
		log.Error("failed to update user", zap.String("id", in.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to update user", err)
	}

	return toDTO(updated), nil
}

// DeleteUser permanently removes an existing user.
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("deleting user", zap.String("id", in.ID))

	if _, err := s.findExisting(ctx, in.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, in.ID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, domain.NewNotFoundError()
		}
		log.Error("failed to delete user", zap.String("id", in.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to delete user", err)
	}

	return &DeleteUserResponse{ID: in.ID, Message: MsgUserDeleted}, nil
}

// findExisting loads a user and normalizes repository errors into outcomes.
func (s *Service) findExisting(ctx context.Context, id string) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewNotFoundError()
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			log.Warn("user not found", zap.String("id", id))
			return nil, domain.NewNotFoundError()
		}
		log.Error("failed to get user", zap.String("id", id), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return u, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func toDTO(u *domain.User) *User {
	return &User{
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
