package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/model"
)

// ConversationStore is the append-only per-session message log.
type ConversationStore struct {
	client *Client
	coll   *mongo.Collection
}

// NewConversationStore creates a conversation store.
func NewConversationStore(c *Client) *ConversationStore {
	return &ConversationStore{client: c, coll: c.db.Collection(collConversations)}
}

// AppendTurn appends a user message and the bot reply to the session's
// conversation, creating it on first use. The pair is pushed in a single
// upsert so concurrent turns on one session can never interleave a pair.
func (s *ConversationStore) AppendTurn(ctx context.Context, sessionID, userText, botText string) error {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	turn := []model.Message{
		{Sender: model.SenderUser, Text: userText, Timestamp: now},
		{Sender: model.SenderBot, Text: botText, Timestamp: now},
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{
			"$push":        bson.M{"messages": bson.M{"$each": turn}},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"started_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &apperr.PersistenceError{Cause: err}
	}

	return nil
}

// Get fetches one conversation by session identifier.
func (s *ConversationStore) Get(ctx context.Context, sessionID string) (*model.Conversation, error) {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	var conv model.Conversation
	err := s.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("conversation %s", sessionID)
	}
	if err != nil {
		return nil, &apperr.PersistenceError{Cause: err}
	}

	return &conv, nil
}

// ListRecent returns the most recently active conversations, newest first.
func (s *ConversationStore) ListRecent(ctx context.Context, limit int) ([]model.Conversation, error) {
	ctx, cancel := s.client.opCtx(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "updated_at", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, &apperr.PersistenceError{Cause: err}
	}
	defer cur.Close(ctx)

	var convs []model.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, &apperr.PersistenceError{Cause: err}
	}

	return convs, nil
}
