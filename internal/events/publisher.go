// Package events publishes completed chat turns to NATS JetStream for
// downstream consumers (audit, analytics). Publishing is best effort and
// never sits on the delivery critical path.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

const (
	// StreamName is the name of the chat turns stream.
	StreamName = "CHAT_TURNS"

	// SubjectPrefix is the prefix for all turn subjects.
	SubjectPrefix = "chat.turn"
)

// TurnEvent is one completed user/bot exchange.
type TurnEvent struct {
	SessionID string    `json:"session_id"`
	UserText  string    `json:"user_text"`
	BotText   string    `json:"bot_text"`
	Intent    string    `json:"intent,omitempty"`
	Language  string    `json:"language,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Config holds NATS connection configuration.
type Config struct {
	URL   string
	Token string
}

// Publisher wraps the NATS connection and JetStream context.
type Publisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// Connect establishes a connection to NATS and ensures the turns stream
// exists.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{conn: nc, js: js, logger: log}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}

	return p, nil
}

// ensureStream ensures the chat turns stream exists with proper configuration.
func (p *Publisher) ensureStream(ctx context.Context) error {
	_, err := p.js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	_, err = p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Completed chatbot turns",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// TurnSubject returns the subject for a session's turns.
func TurnSubject(sessionID string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, sessionID)
}

// PublishTurn publishes a completed turn.
func (p *Publisher) PublishTurn(ctx context.Context, turn *TurnEvent) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	if _, err := p.js.Publish(ctx, TurnSubject(turn.SessionID), data); err != nil {
		return fmt.Errorf("failed to publish turn: %w", err)
	}

	return nil
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
