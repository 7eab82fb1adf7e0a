package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/model"
)

// UserStore holds registered users.
type UserStore struct {
	client *Client
	coll   *mongo.Collection
}

// NewUserStore creates a user store.
func NewUserStore(c *Client) *UserStore {
	return &UserStore{client: c, coll: c.db.Collection(collUsers)}
}

// Create inserts a new user. Duplicate username or email is a validation
// error, backed by the unique indexes.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	user.CreatedAt = time.Now().UTC()

	res, err := s.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Validation("username or email already exists")
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	return nil
}

// FindByUsername fetches one user by username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	var user model.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user %s", username)
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
