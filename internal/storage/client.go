// Package storage provides the MongoDB client and the document stores for
// conversations, catalogs and users.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

const (
	collConversations = "conversations"
	collFAQs          = "faqs"
	collServices      = "services"
	collUsers         = "users"
)

// Client wraps the mongo client and database handle.
type Client struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	logger  *logger.Logger
}

// Connect establishes a connection to MongoDB and verifies it with a ping.
func Connect(ctx context.Context, uri, database string, timeout time.Duration, log *logger.Logger) (*Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mc, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := mc.Ping(connectCtx, nil); err != nil {
		_ = mc.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client:  mc,
		db:      mc.Database(database),
		timeout: timeout,
		logger:  log,
	}, nil
}

// EnsureIndexes creates the indexes the stores rely on.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	_, err := c.db.Collection(collConversations).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("conversations index: %w", err)
	}

	_, err = c.db.Collection(collUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = c.db.Collection(collFAQs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "language", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("faqs index: %w", err)
	}

	return nil
}

// Ping reports whether the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	return c.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// opCtx bounds a single store operation so a slow database cannot stall a
// pipeline task indefinitely.
func (c *Client) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
