// Package ws is the realtime session gateway. Each websocket connection is
// one session: its identifier is minted at upgrade time and keys the
// conversation history for the connection's lifetime.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dkl-health/chatbot-backend/pkg/logger"
	"github.com/dkl-health/chatbot-backend/pkg/metrics"
)

const (
	// EventMessage is the inbound event carrying raw user text.
	EventMessage = "message"
	// EventResponse is the outbound event carrying the finalized reply.
	EventResponse = "response"

	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// Frame is the wire format on the realtime channel.
type Frame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Responder produces the reply for one inbound message.
type Responder interface {
	Process(ctx context.Context, sessionID, text string) string
}

// Gateway upgrades connections and shuttles frames between the client and
// the message pipeline.
type Gateway struct {
	responder Responder
	logger    *logger.Logger
	upgrader  websocket.Upgrader
}

// NewGateway creates a gateway.
func NewGateway(responder Responder, log *logger.Logger) *Gateway {
	return &Gateway{
		responder: responder,
		logger:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades the request and serves the session until disconnect.
func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sessionID := uuid.New().String()
	log := g.logger.WithSession(sessionID)
	log.Info("session connected", zap.String("remote_addr", r.RemoteAddr))

	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	s := &session{
		id:        sessionID,
		conn:      conn,
		out:       make(chan Frame, 16),
		done:      make(chan struct{}),
		writeDone: make(chan struct{}),
		log:       log,
	}

	go s.writePump()
	s.readLoop(g.responder)

	log.Info("session disconnected")
}

// session is one live connection.
type session struct {
	id        string
	conn      *websocket.Conn
	out       chan Frame
	done      chan struct{} // closed when readLoop exits
	writeDone chan struct{} // closed when writePump exits
	log       *logger.Logger
}

// readLoop consumes inbound frames and processes them one at a time: the
// channel is ordered and the client does not pipeline, so per-session
// sequencing falls out of the loop itself. Sessions run concurrently.
func (s *session) readLoop(responder Responder) {
	defer func() {
		close(s.done)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)

	for {
		var frame Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("read error", zap.Error(err))
			}
			return
		}

		if frame.Event != EventMessage {
			continue
		}

		// Detached from the connection's lifetime: a disconnect mid-run lets
		// the pipeline finish and the reply is dropped, not an error.
		reply := responder.Process(context.Background(), s.id, frame.Data)
		s.deliver(Frame{Event: EventResponse, Data: reply})
	}
}

// deliver queues an outbound frame, dropping it if either side of the
// session is gone. Blocking here would wedge readLoop and leak the session.
func (s *session) deliver(frame Frame) {
	select {
	case s.out <- frame:
	case <-s.done:
	case <-s.writeDone:
	}
}

// writePump closes the connection on exit so a dead writer tears the whole
// session down: the close fails readLoop's next read and its cleanup runs.
func (s *session) writePump() {
	defer func() {
		close(s.writeDone)
		s.conn.Close()
	}()

	for {
		select {
		case frame := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(frame); err != nil {
				s.log.Warn("write error", zap.Error(err))
				return
			}
		case <-s.done:
			return
		}
	}
}
