package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/catalog"
	"github.com/dkl-health/chatbot-backend/internal/middleware"
	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

const testAdminKey = "admin-secret"

type fakeFAQStore struct {
	byID map[string]*model.FAQ
}

func newFakeFAQStore() *fakeFAQStore {
	return &fakeFAQStore{byID: make(map[string]*model.FAQ)}
}

func (s *fakeFAQStore) Create(_ context.Context, faq *model.FAQ) error {
	faq.ID = primitive.NewObjectID()
	if faq.Language == "" {
		faq.Language = "en"
	}
	s.byID[faq.ID.Hex()] = faq
	return nil
}

func (s *fakeFAQStore) List(_ context.Context) ([]model.FAQ, error) {
	out := make([]model.FAQ, 0, len(s.byID))
	for _, faq := range s.byID {
		out = append(out, *faq)
	}
	return out, nil
}

func (s *fakeFAQStore) GetByID(_ context.Context, id string) (*model.FAQ, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, apperr.Validation("invalid id %q", id)
	}
	faq, ok := s.byID[id]
	if !ok {
		return nil, apperr.NotFound("FAQ %s", id)
	}
	return faq, nil
}

func (s *fakeFAQStore) Update(ctx context.Context, id string, req *model.UpdateFAQRequest) (*model.FAQ, error) {
	faq, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Question != nil {
		faq.Question = *req.Question
	}
	if req.Answer != nil {
		faq.Answer = *req.Answer
	}
	if req.Category != nil {
		faq.Category = *req.Category
	}
	if req.Tags != nil {
		faq.Tags = *req.Tags
	}
	if req.Language != nil {
		faq.Language = *req.Language
	}
	return faq, nil
}

func (s *fakeFAQStore) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	delete(s.byID, id)
	return nil
}

type fakeFAQSearcher struct {
	lastLanguage string
	lastMulti    bool
	lastLimit    int
	lastQuery    model.FAQQuery
	result       *catalog.FAQResult
}

func (s *fakeFAQSearcher) FindFAQs(_ context.Context, q model.FAQQuery, language string, multi bool, limit int) (*catalog.FAQResult, error) {
	s.lastQuery = q
	s.lastLanguage = language
	s.lastMulti = multi
	s.lastLimit = limit
	if s.result != nil {
		return s.result, nil
	}
	return &catalog.FAQResult{}, nil
}

func newFAQRouter(store *fakeFAQStore, searcher *fakeFAQSearcher) *chi.Mux {
	h := NewFAQHandler(store, searcher, logger.Global())
	r := chi.NewRouter()
	r.Get("/faqs", h.Search)
	r.Route("/admin/faqs", func(r chi.Router) {
		r.Use(middleware.AdminKey(testAdminKey))
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func adminRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFAQAdminCRUD(t *testing.T) {
	router := newFAQRouter(newFakeFAQStore(), &fakeFAQSearcher{})

	// Create
	rec := adminRequest(t, router, http.MethodPost, "/admin/faqs/", model.CreateFAQRequest{
		Question: "What are your opening hours?",
		Answer:   "We are open 8am to 6pm.",
		Category: "general",
		Tags:     []string{"hours"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.FAQ
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.False(t, created.ID.IsZero())
	assert.Equal(t, "en", created.Language)

	id := created.ID.Hex()

	// Read back, identical fields
	rec = adminRequest(t, router, http.MethodGet, "/admin/faqs/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched model.FAQ
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)

	// Partial update changes only the targeted field
	rec = adminRequest(t, router, http.MethodPut, "/admin/faqs/"+id, map[string]string{
		"answer": "We are open 24/7.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.FAQ
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "We are open 24/7.", updated.Answer)
	assert.Equal(t, created.Question, updated.Question)
	assert.Equal(t, created.Category, updated.Category)
	assert.Equal(t, created.Tags, updated.Tags)

	// Delete
	rec = adminRequest(t, router, http.MethodDelete, "/admin/faqs/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"FAQ deleted"}`, rec.Body.String())

	// Gone
	rec = adminRequest(t, router, http.MethodGet, "/admin/faqs/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFAQCreateValidation(t *testing.T) {
	router := newFAQRouter(newFakeFAQStore(), &fakeFAQSearcher{})

	rec := adminRequest(t, router, http.MethodPost, "/admin/faqs/", model.CreateFAQRequest{
		Question: "Question without an answer?",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFAQGetInvalidID(t *testing.T) {
	router := newFAQRouter(newFakeFAQStore(), &fakeFAQSearcher{})

	rec := adminRequest(t, router, http.MethodGet, "/admin/faqs/not-a-hex-id", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFAQAdminRequiresKey(t *testing.T) {
	router := newFAQRouter(newFakeFAQStore(), &fakeFAQSearcher{})

	cases := []struct {
		name string
		key  string
	}{
		{"missing key", ""},
		{"wrong key", "wrong"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/faqs/", nil)
			if tc.key != "" {
				req.Header.Set(middleware.AdminKeyHeader, tc.key)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Unauthorized")
		})
	}
}

func TestFAQSearchParsesQuery(t *testing.T) {
	searcher := &fakeFAQSearcher{result: &catalog.FAQResult{
		FAQs:     []model.FAQ{{Question: "Heures d'ouverture?", Language: "fr"}},
		Fallback: false,
	}}
	router := newFAQRouter(newFakeFAQStore(), searcher)

	req := httptest.NewRequest(http.MethodGet, "/faqs?language=fr&keyword=hours&multi=true&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr", searcher.lastLanguage)
	assert.True(t, searcher.lastMulti)
	assert.Equal(t, 5, searcher.lastLimit)
	assert.Equal(t, "hours", searcher.lastQuery.Keyword)

	var result catalog.FAQResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.FAQs, 1)
}

func TestFAQSearchDefaults(t *testing.T) {
	searcher := &fakeFAQSearcher{}
	router := newFAQRouter(newFakeFAQStore(), searcher)

	req := httptest.NewRequest(http.MethodGet, "/faqs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, searcher.lastLimit)
	assert.False(t, searcher.lastMulti)
	// The empty list serializes as [], never null.
	assert.Contains(t, rec.Body.String(), `"faqs":[]`)
}
