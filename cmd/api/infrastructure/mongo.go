package infrastructure

import (
	"context"
	"fmt"
	"time"

	"user-record-service/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const mongoConnectTimeout = 10 * time.Second

// NewDocumentStore connects to MongoDB and returns the configured database handle.
func NewDocumentStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.DB.MongoURL).
		SetMaxPoolSize(uint64(max(cfg.DB.MaxOpenConns, 1))).
		SetMaxConnIdleTime(time.Duration(cfg.DB.ConnMaxIdleTime) * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	l.Info("mongodb connected", zap.String("database", cfg.DB.MongoDatabase))

	return client.Database(cfg.DB.MongoDatabase), nil
}

// CloseDocumentStore disconnects the client behind db.
func CloseDocumentStore(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	if err := db.Client().Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}
