package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dkl-health/chatbot-backend/internal/catalog"
	"github.com/dkl-health/chatbot-backend/internal/middleware"
	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

// FAQStore is the FAQ persistence surface the handler needs.
type FAQStore interface {
	Create(ctx context.Context, faq *model.FAQ) error
	List(ctx context.Context) ([]model.FAQ, error)
	GetByID(ctx context.Context, id string) (*model.FAQ, error)
	Update(ctx context.Context, id string, req *model.UpdateFAQRequest) (*model.FAQ, error)
	Delete(ctx context.Context, id string) error
}

// FAQSearcher is the public search surface.
type FAQSearcher interface {
	FindFAQs(ctx context.Context, q model.FAQQuery, language string, multi bool, limit int) (*catalog.FAQResult, error)
}

// FAQHandler handles the admin FAQ CRUD and the public FAQ search.
type FAQHandler struct {
	store    FAQStore
	searcher FAQSearcher
	logger   *logger.Logger
}

// NewFAQHandler creates a new FAQ handler.
func NewFAQHandler(store FAQStore, searcher FAQSearcher, log *logger.Logger) *FAQHandler {
	return &FAQHandler{
		store:    store,
		searcher: searcher,
		logger:   log,
	}
}

// Create handles POST /admin/faqs
func (h *FAQHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateFAQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateFAQ(&req); err != nil {
		writeAppError(w, err)
		return
	}

	faq := &model.FAQ{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Tags:     req.Tags,
		Language: req.Language,
	}

	if err := h.store.Create(r.Context(), faq); err != nil {
		h.logger.Error("failed to create FAQ", zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, faq)
}

// List handles GET /admin/faqs
func (h *FAQHandler) List(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list FAQs", zap.Error(err))
		writeAppError(w, err)
		return
	}
	if faqs == nil {
		faqs = []model.FAQ{}
	}

	writeJSON(w, http.StatusOK, faqs)
}

// Get handles GET /admin/faqs/{id}
func (h *FAQHandler) Get(w http.ResponseWriter, r *http.Request) {
	faq, err := h.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, faq)
}

// Update handles PUT /admin/faqs/{id}
func (h *FAQHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateFAQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	faq, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, faq)
}

// Delete handles DELETE /admin/faqs/{id}
func (h *FAQHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "FAQ deleted"})
}

// Search handles GET /faqs — the public search with the language fallback and
// multi-language behavior of the catalog lookup.
func (h *FAQHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	language := params.Get("language")
	multi, _ := strconv.ParseBool(params.Get("multi"))

	limit := 20
	if l := params.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	q := model.FAQQuery{
		Keyword:  params.Get("keyword"),
		Category: params.Get("category"),
		Tag:      params.Get("tag"),
	}

	result, err := h.searcher.FindFAQs(r.Context(), q, language, multi, limit)
	if err != nil {
		h.logger.Error("faq search failed", zap.Error(err))
		writeAppError(w, err)
		return
	}
	if result.FAQs == nil {
		result.FAQs = []model.FAQ{}
	}

	writeJSON(w, http.StatusOK, result)
}
