package postgres

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-record-service/internal/domain/user"
	apperrors "user-record-service/pkg/errors"
)

func setupTestRepo(t *testing.T) *UserRepoPG {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps the in-memory database shared across queries
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewUserRepoPG(db, zaptest.NewLogger(t))
	require.NoError(t, repo.AutoMigrate())

	return repo
}

func TestUserRepoPG_CreateAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &user.User{Name: "Budi", Email: "budi@gmail.com", Age: 25, Address: "Jakarta", Bio: "hello"})
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi", got.Name)
	assert.Equal(t, "budi@gmail.com", got.Email)
	assert.Equal(t, 25, got.Age)
	assert.Equal(t, "Jakarta", got.Address)
	assert.Equal(t, "hello", got.Bio)
}

func TestUserRepoPG_CreateAssignsDistinctIDs(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, &user.User{Name: "A", Email: "a@gmail.com", Age: 1})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &user.User{Name: "B", Email: "b@gmail.com", Age: 2})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestUserRepoPG_CreateDuplicateEmail(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &user.User{Name: "A", Email: "same@gmail.com", Age: 1})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &user.User{Name: "B", Email: "same@gmail.com", Age: 2})
	require.Error(t, err)
	assert.True(t, apperrors.IsAlreadyExists(err))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepoPG_GetByID_NotFoundAndMalformed(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.GetByID(ctx, "not-a-uuid")
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "invalid user id")
}

func TestUserRepoPG_GetByEmail(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	got, err := repo.GetByEmail(ctx, "nobody@gmail.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	created, err := repo.Create(ctx, &user.User{Name: "Budi", Email: "budi@gmail.com", Age: 25})
	require.NoError(t, err)

	got, err = repo.GetByEmail(ctx, "budi@gmail.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
}

func TestUserRepoPG_Update(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &user.User{Name: "Budi", Email: "budi@gmail.com", Age: 25, Bio: "old"})
	require.NoError(t, err)

	changed := *created
	changed.Age = 26
	changed.Bio = ""

	updated, err := repo.Update(ctx, &changed)
	require.NoError(t, err)
	assert.Equal(t, 26, updated.Age)
	assert.Empty(t, updated.Bio, "zero values must be written")
	assert.Equal(t, created.ID, updated.ID)
}

func TestUserRepoPG_UpdateMissing(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Update(context.Background(), &user.User{ID: uuid.NewString(), Name: "Ghost", Email: "ghost@gmail.com", Age: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserRepoPG_UpdateDuplicateEmail(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &user.User{Name: "A", Email: "a@gmail.com", Age: 1})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &user.User{Name: "B", Email: "b@gmail.com", Age: 2})
	require.NoError(t, err)

	b.Email = "a@gmail.com"
	_, err = repo.Update(ctx, b)
	require.Error(t, err)
	assert.True(t, apperrors.IsAlreadyExists(err))
}

func TestUserRepoPG_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &user.User{Name: "Budi", Email: "budi@gmail.com", Age: 25})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))

	err = repo.Delete(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserRepoPG_ListEmpty(t *testing.T) {
	repo := setupTestRepo(t)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepoPG_Ping(t *testing.T) {
	repo := setupTestRepo(t)

	assert.NoError(t, repo.Ping(context.Background()))
}
