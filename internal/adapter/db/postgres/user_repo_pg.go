package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-record-service/internal/domain/user"
	"user-record-service/pkg/logger"
)

// UserRepoPG implements the user Repository interface using GORM.
// It runs against PostgreSQL in production and SQLite locally and in tests.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"` // UUID assigned on insert
	Name      string    `gorm:"not null"`                    // User's display name (required)
	Email     string    `gorm:"not null;uniqueIndex"`        // User's unique email address (required, unique)
	Age       int       `gorm:"not null"`                    // Age in years (required)
	Address   string    // Optional location
	Bio       string    // Optional biography
	CreatedAt time.Time // Managed by GORM
	UpdatedAt time.Time // Managed by GORM
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates or updates the users table.
func (r *UserRepoPG) AutoMigrate() error {
	return r.db.AutoMigrate(&UserSchema{})
}

// Ping reports whether the underlying connection is alive.
func (r *UserRepoPG) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := fromDomain(u)
	model.ID = uuid.NewString()

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate email on insert", logger.Email(u.Email))
			return nil, fmt.Errorf("failed to create user: %w", user.NewEmailTakenError())
		}
		r.log.Error("failed to create user in db", zap.Error(err), logger.Email(u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// Update replaces every mutable column of an existing user and returns the stored row.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}
	if err := validateID(u.ID); err != nil {
		return nil, err
	}

	model := fromDomain(u)
	res := r.db.WithContext(ctx).
		Model(&UserSchema{ID: u.ID}).
		Select("Name", "Email", "Age", "Address", "Bio", "UpdatedAt").
		Updates(&model)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate email on update", zap.String("id", u.ID), logger.Email(u.Email))
			return nil, fmt.Errorf("failed to update user: %w", user.NewEmailTakenError())
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", u.ID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if res.RowsAffected == 0 {
		return nil, user.NewNotFoundError()
	}

	r.log.Info("user updated in db", zap.String("id", u.ID))
	return r.GetByID(ctx, u.ID)
}

// Delete removes a user from the database by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Delete(&UserSchema{}, "id = ?", id)
	if err := res.Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.RowsAffected == 0 {
		return user.NewNotFoundError()
	}

	r.log.Info("user deleted in db", zap.String("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.String("id", id))
			return nil, user.NewNotFoundError()
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user from the database by their email address.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", logger.Email(email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), logger.Email(email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// List retrieves every user in insertion order.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *models[i].toDomain()
	}

	return users, nil
}

// validateID rejects identifiers that can never exist, mirroring a cast failure.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid user id %q: %w", id, err)
	}
	return nil
}

// isUniqueViolation detects unique-index violations across drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

func fromDomain(u *user.User) UserSchema {
	return UserSchema{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Age:     u.Age,
		Address: u.Address,
		Bio:     u.Bio,
	}
}

func (m *UserSchema) toDomain() *user.User {
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Age:       m.Age,
		Address:   m.Address,
		Bio:       m.Bio,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
