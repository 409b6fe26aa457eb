package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"user-record-service/internal/domain/user"
	"user-record-service/pkg/logger"
)

// CollectionName is the collection holding user documents.
const CollectionName = "users"

// UserRepoMongo implements the user Repository interface on a MongoDB collection.
type UserRepoMongo struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// NewUserRepoMongo creates a repository over db.users.
func NewUserRepoMongo(db *mongo.Database, log *zap.Logger) *UserRepoMongo {
	return &UserRepoMongo{coll: db.Collection(CollectionName), log: log}
}

// UserDocument is the stored shape of a user.
type UserDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       int                `bson:"age"`
	Address   string             `bson:"address,omitempty"`
	Bio       string             `bson:"bio,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// EnsureIndexes creates the unique email index used to reject duplicates at write time.
func (r *UserRepoMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// Ping reports whether the deployment is reachable.
func (r *UserRepoMongo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// Create inserts a new user document.
func (r *UserRepoMongo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	now := storeTime()
	doc := fromDomain(u)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warn("duplicate email on insert", logger.Email(u.Email))
			return nil, fmt.Errorf("failed to create user: %w", user.NewEmailTakenError())
		}
		r.log.Error("failed to insert user", zap.Error(err), logger.Email(u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in mongo", zap.String("id", doc.ID.Hex()))
	return doc.toDomain(), nil
}

// GetByID finds a user by its ObjectID hex string.
func (r *UserRepoMongo) GetByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc UserDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warn("user not found", zap.String("id", id))
			return nil, user.NewNotFoundError()
		}
		r.log.Error("failed to find user", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return doc.toDomain(), nil
}

// GetByEmail finds a user by email. A missing user is not an error.
func (r *UserRepoMongo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var doc UserDocument
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Debug("user not found by email", logger.Email(email))
			return nil, nil
		}
		r.log.Error("failed to find user by email", zap.Error(err), logger.Email(email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return doc.toDomain(), nil
}

// Update replaces the stored document and returns it as written.
func (r *UserRepoMongo) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}
	oid, err := parseID(u.ID)
	if err != nil {
		return nil, err
	}

	doc := fromDomain(u)
	doc.ID = oid
	doc.UpdatedAt = storeTime()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}

	opts := options.FindOneAndReplace().SetReturnDocument(options.After)

	var out UserDocument
	if err := r.coll.FindOneAndReplace(ctx, bson.M{"_id": oid}, doc, opts).Decode(&out); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, user.NewNotFoundError()
		case mongo.IsDuplicateKeyError(err):
			r.log.Warn("duplicate email on update", zap.String("id", u.ID), logger.Email(u.Email))
			return nil, fmt.Errorf("failed to update user: %w", user.NewEmailTakenError())
		}
		r.log.Error("failed to replace user", zap.Error(err), zap.String("id", u.ID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in mongo", zap.String("id", u.ID))
	return out.toDomain(), nil
}

// Delete removes a user document permanently.
func (r *UserRepoMongo) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Error("failed to delete user", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return user.NewNotFoundError()
	}

	r.log.Info("user deleted in mongo", zap.String("id", id))
	return nil
}

// List returns every user ordered by insertion.
func (r *UserRepoMongo) List(ctx context.Context) ([]user.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		r.log.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []UserDocument
	if err := cur.All(ctx, &docs); err != nil {
		r.log.Error("failed to decode users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(docs))
	for i := range docs {
		users[i] = *docs[i].toDomain()
	}
	return users, nil
}

// storeTime matches the millisecond precision BSON dates are stored with.
func storeTime() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// parseID converts a hex id; malformed ids are store errors, not misses.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	return oid, nil
}

func fromDomain(u *user.User) UserDocument {
	return UserDocument{
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		Address:   u.Address,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d *UserDocument) toDomain() *user.User {
	return &user.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		Address:   d.Address,
		Bio:       d.Bio,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
