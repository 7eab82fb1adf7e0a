// Package model defines data structures for the chatbot backend.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry in a conversation. Immutable once appended.
type Message struct {
	Sender    Sender    `bson:"sender" json:"sender"`
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Conversation is the per-session message log. Created lazily on the first
// message of a session; the pipeline only ever appends to it.
type Conversation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Messages  []Message          `bson:"messages" json:"messages"`
	StartedAt time.Time          `bson:"started_at" json:"started_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
