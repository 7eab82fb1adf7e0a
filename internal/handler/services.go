package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dkl-health/chatbot-backend/internal/middleware"
	"github.com/dkl-health/chatbot-backend/internal/model"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
)

// ServiceStore is the service-catalog persistence surface the handler needs.
type ServiceStore interface {
	Create(ctx context.Context, svc *model.Service) error
	List(ctx context.Context) ([]model.Service, error)
	GetByID(ctx context.Context, id string) (*model.Service, error)
	Update(ctx context.Context, id string, req *model.UpdateServiceRequest) (*model.Service, error)
	Delete(ctx context.Context, id string) error
}

// ServiceHandler handles the admin service-catalog CRUD.
type ServiceHandler struct {
	store  ServiceStore
	logger *logger.Logger
}

// NewServiceHandler creates a new service handler.
func NewServiceHandler(store ServiceStore, log *logger.Logger) *ServiceHandler {
	return &ServiceHandler{store: store, logger: log}
}

// Create handles POST /admin/services
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateService(&req); err != nil {
		writeAppError(w, err)
		return
	}

	svc := &model.Service{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}

	if err := h.store.Create(r.Context(), svc); err != nil {
		h.logger.Error("failed to create service", zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, svc)
}

// List handles GET /admin/services
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", zap.Error(err))
		writeAppError(w, err)
		return
	}
	if services == nil {
		services = []model.Service{}
	}

	writeJSON(w, http.StatusOK, services)
}

// Get handles GET /admin/services/{id}
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	svc, err := h.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, svc)
}

// Update handles PUT /admin/services/{id}
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, svc)
}

// Delete handles DELETE /admin/services/{id}
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "service deleted"})
}
