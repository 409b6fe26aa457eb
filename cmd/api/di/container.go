package di

import (
	"context"
	"fmt"
	"time"

	"user-record-service/cmd/api/infrastructure"
	"user-record-service/internal/adapter/bio"
	"user-record-service/internal/adapter/cache"
	"user-record-service/internal/adapter/db/mongodb"
	"user-record-service/internal/adapter/db/postgres"
	ginhandler "user-record-service/internal/adapter/gin/handler"
	"user-record-service/internal/adapter/gin/middleware"
	"user-record-service/internal/adapter/repository/cached"
	"user-record-service/internal/config"
	domain "user-record-service/internal/domain/user"
	"user-record-service/internal/usecase/user"
	redisclient "user-record-service/pkg/redis"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// store is the record store as seen by the container.
type store interface {
	user.Repository
	ginhandler.Pinger
}

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB        // set for postgres and sqlite
	Mongo         *mongo.Database // set for mongo
	RedisClient   *redisclient.Client
	Store         ginhandler.Pinger
	UserUC        user.Usecase
	RateLimiter   *middleware.RateLimiter
	UserHandler   *ginhandler.UserHandler
	HealthHandler *ginhandler.HealthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	policy, err := domain.ParseEmailPolicy(cfg.User.EmailPolicy)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: l}

	dbRepo, err := c.openStore(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Store = dbRepo

	// Initialize Redis client
	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	var repo user.Repository = dbRepo
	if rdb != nil {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewCachedUserRepository(dbRepo, userCache, l)

		if cfg.RateLimit.Enabled {
			c.RateLimiter = middleware.NewRateLimiter(
				rdb.Client,
				middleware.RateLimiterConfig{
					RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
					BurstCapacity:     cfg.RateLimit.BurstCapacity,
					Enabled:           true,
				},
				l,
			)
		}
	}

	c.UserUC = user.New(repo, NewBioGenerator(cfg, l), policy, l)
	c.UserHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.HealthHandler = ginhandler.NewHealthHandler(c.Store, cfg.Logger.ServiceVersion, cfg.App.HTTPPort, l)

	return c, nil
}

// openStore connects the store selected by DB_DRIVER and prepares its schema.
func (c *Container) openStore(ctx context.Context) (store, error) {
	cfg, l := c.Config, c.Logger

	if cfg.DB.Driver == config.DriverMongo {
		db, err := infrastructure.NewDocumentStore(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize document store: %w", err)
		}
		c.Mongo = db

		repo := mongodb.NewUserRepoMongo(db, l)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	repo := postgres.NewUserRepoPG(db, l)
	if err := repo.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}
	return repo, nil
}

// NewBioGenerator selects the bio generator. A nil result disables enrichment.
func NewBioGenerator(cfg *config.Config, l *zap.Logger) user.BioGenerator {
	if !cfg.Bio.Enabled {
		l.Info("bio enrichment disabled")
		return nil
	}
	if cfg.Bio.APIKey == "" {
		l.Warn("no bio API key configured, using template bios")
		return bio.StaticGenerator{}
	}
	return bio.NewGeminiGenerator(bio.GeminiConfig{
		APIKey:  cfg.Bio.APIKey,
		Model:   cfg.Bio.Model,
		BaseURL: cfg.Bio.BaseURL,
		Timeout: time.Duration(cfg.Bio.TimeoutSeconds) * time.Second,
	}, l)
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := infrastructure.CloseDocumentStore(ctx, c.Mongo); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
