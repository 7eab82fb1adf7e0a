// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/middleware"
	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

// UserStore is the user persistence surface the auth handler needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	users     UserStore
	jwtSecret string
	jwtExpiry time.Duration
	logger    *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users UserStore, jwtSecret string, jwtExpiry time.Duration, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		logger:    log,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateRegistration(&req); err != nil {
		writeAppError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		writeAppError(w, err)
		return
	}

	h.logger.Info("user registered", zap.String("username", user.Username))
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	// Credential mismatch is always a 400 with the same message, never a
	// 404: do not reveal which of the two was wrong. An infrastructure
	// failure is not a mismatch and surfaces as a 500.
	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if errors.Is(err, apperr.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "invalid username or password")
		return
	}
	if err != nil {
		h.logger.Error("failed to look up user", zap.Error(err))
		writeAppError(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusBadRequest, "invalid username or password")
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID.Hex(), user.Username, h.jwtExpiry)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{Token: token})
}
