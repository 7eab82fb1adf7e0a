package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

// adminConversationLimit caps the admin listing at the most recent entries.
const adminConversationLimit = 100

// ConversationReader is the read surface of the conversation store.
type ConversationReader interface {
	Get(ctx context.Context, sessionID string) (*model.Conversation, error)
	ListRecent(ctx context.Context, limit int) ([]model.Conversation, error)
}

// ConversationHandler handles conversation history endpoints.
type ConversationHandler struct {
	store  ConversationReader
	logger *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(store ConversationReader, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{store: store, logger: log}
}

// Get handles GET /conversations/{sessionID}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conv, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// ListRecent handles GET /admin/conversations
func (h *ConversationHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	convs, err := h.store.ListRecent(r.Context(), adminConversationLimit)
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		writeAppError(w, err)
		return
	}
	if convs == nil {
		convs = []model.Conversation{}
	}

	writeJSON(w, http.StatusOK, convs)
}
