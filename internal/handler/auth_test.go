package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/middleware"
	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

const testJWTSecret = "test-secret"

type fakeUserStore struct {
	byUsername map[string]*model.User
	findErr    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byUsername: make(map[string]*model.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *model.User) error {
	if _, exists := s.byUsername[user.Username]; exists {
		return apperr.Validation("username or email already exists")
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	s.byUsername[user.Username] = user
	return nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	user, ok := s.byUsername[username]
	if !ok {
		return nil, apperr.NotFound("user %q", username)
	}
	return user, nil
}

func newAuthRouter(store *fakeUserStore) *chi.Mux {
	h := NewAuthHandler(store, testJWTSecret, time.Hour, logger.Global())
	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	router := newAuthRouter(newFakeUserStore())

	rec := postJSON(t, router, "/auth/register", model.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter22")
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = postJSON(t, router, "/auth/login", model.LoginRequest{
		Username: "alice",
		Password: "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	router := newAuthRouter(store)

	rec := postJSON(t, router, "/auth/register", model.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Wrong password and unknown user produce the same status and message.
	wrongPass := postJSON(t, router, "/auth/login", model.LoginRequest{Username: "bob", Password: "nope"})
	unknownUser := postJSON(t, router, "/auth/login", model.LoginRequest{Username: "eve", Password: "nope"})

	assert.Equal(t, http.StatusBadRequest, wrongPass.Code)
	assert.Equal(t, http.StatusBadRequest, unknownUser.Code)
	assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestLoginStoreFailureIsNotACredentialMismatch(t *testing.T) {
	store := newFakeUserStore()
	store.findErr = &apperr.PersistenceError{Cause: errors.New("connection reset")}
	router := newAuthRouter(store)

	rec := postJSON(t, router, "/auth/login", model.LoginRequest{Username: "alice", Password: "hunter22"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "invalid username or password")
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router := newAuthRouter(newFakeUserStore())

	first := postJSON(t, router, "/auth/register", model.RegisterRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, router, "/auth/register", model.RegisterRequest{
		Username: "carol",
		Email:    "carol2@example.com",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, second.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := newAuthRouter(newFakeUserStore())

	cases := []struct {
		name string
		req  model.RegisterRequest
	}{
		{"missing username", model.RegisterRequest{Email: "a@example.com", Password: "secret123"}},
		{"bad email", model.RegisterRequest{Username: "dave", Email: "not-an-email", Password: "secret123"}},
		{"short password", model.RegisterRequest{Username: "dave", Email: "d@example.com", Password: "ab"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, router, "/auth/register", tc.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// A valid end-user bearer token is not an admin credential.
func TestBearerTokenDoesNotGrantAdminAccess(t *testing.T) {
	token, err := middleware.IssueToken(testJWTSecret, primitive.NewObjectID().Hex(), "alice", time.Hour)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminKey("admin-secret"))
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
}
