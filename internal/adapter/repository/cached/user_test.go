package cached

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-record-service/internal/adapter/cache"
	domain "user-record-service/internal/domain/user"
	apperrors "user-record-service/pkg/errors"
)

// fakeRepo is an in-memory repository counting GetByID calls
type fakeRepo struct {
	mu      sync.Mutex
	users   map[string]domain.User
	getHits atomic.Int32
	delay   time.Duration
}

func newFakeRepo(users ...domain.User) *fakeRepo {
	r := &fakeRepo{users: map[string]domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.getHits.Add(1)
	time.Sleep(r.delay)
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError()
	}
	return &u, nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return nil, domain.NewNotFoundError()
	}
	r.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.NewNotFoundError()
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context) ([]domain.User, error) {
	return nil, errors.New("not used")
}

func setup(t *testing.T, users ...domain.User) (*CachedUserRepository, *fakeRepo, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zaptest.NewLogger(t)
	db := newFakeRepo(users...)
	repo := NewCachedUserRepository(db, cache.NewRedisUserCache(client, time.Minute, log), log)
	return repo.(*CachedUserRepository), db, mr
}

func TestCachedUserRepository_GetByID_CachesAfterMiss(t *testing.T) {
	repo, db, mr := setup(t, domain.User{ID: "u1", Name: "Budi", Email: "budi@gmail.com", Age: 25})
	ctx := context.Background()

	first, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", first.Name)
	assert.True(t, mr.Exists("user:u1"))

	second, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.Email, second.Email)
	assert.Equal(t, int32(1), db.getHits.Load())
}

func TestCachedUserRepository_GetByID_NotFoundNotCached(t *testing.T) {
	repo, _, mr := setup(t)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, mr.Exists("user:missing"))
}

func TestCachedUserRepository_GetByID_SingleFlight(t *testing.T) {
	repo, db, _ := setup(t, domain.User{ID: "u1", Name: "Budi", Email: "budi@gmail.com", Age: 25})
	db.delay = 100 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := repo.GetByID(context.Background(), "u1")
			assert.NoError(t, err)
			assert.Equal(t, "Budi", u.Name)
		}()
	}
	wg.Wait()

	assert.Less(t, db.getHits.Load(), int32(10))
}

func TestCachedUserRepository_GetByID_CacheDownFallsBack(t *testing.T) {
	repo, db, mr := setup(t, domain.User{ID: "u1", Name: "Budi", Email: "budi@gmail.com", Age: 25})
	mr.Close()

	u, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", u.Name)
	assert.Equal(t, int32(1), db.getHits.Load())
}

func TestCachedUserRepository_UpdateInvalidates(t *testing.T) {
	repo, _, mr := setup(t, domain.User{ID: "u1", Name: "Budi", Email: "budi@gmail.com", Age: 25})
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, mr.Exists("user:u1"))

	updated, err := repo.Update(ctx, &domain.User{ID: "u1", Name: "Budi", Email: "budi@gmail.com", Age: 26})
	require.NoError(t, err)
	assert.Equal(t, 26, updated.Age)
	assert.False(t, mr.Exists("user:u1"))

	again, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 26, again.Age)
}

func TestCachedUserRepository_DeleteInvalidates(t *testing.T) {
	repo, _, mr := setup(t, domain.User{ID: "u1", Name: "Budi", Email: "budi@gmail.com", Age: 25})
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "u1"))
	assert.False(t, mr.Exists("user:u1"))

	_, err = repo.GetByID(ctx, "u1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCachedUserRepository_NilCache(t *testing.T) {
	db := newFakeRepo(domain.User{ID: "u1", Name: "Budi"})
	repo := NewCachedUserRepository(db, nil, zaptest.NewLogger(t))

	u, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", u.Name)
	require.NoError(t, repo.Delete(context.Background(), "u1"))
}
