package request

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/request-management/internal/auth"
	"github.com/frahmantamala/request-management/internal/transport"
	"github.com/frahmantamala/request-management/pkg/logger"
)

type ServiceAPI interface {
	CreateRequest(actor *auth.User, dto CreateRequestDTO) (*Request, error)
	ListRequests(actor *auth.User) ([]*Request, error)
	DecideRequest(actor *auth.User, requestID string, dto DecideRequestDTO) (*Request, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateRequest: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.CreateRequest(user, dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err, "email", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateRequest: request created",
		"request_id", req.ID,
		"category", req.Category,
		"requestor", user.Email)

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ListRequests: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.Service.ListRequests(user)
	if err != nil {
		h.Logger.Error("ListRequests: service error", "error", err, "email", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("DecideRequest: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing request id")
		return
	}

	var dto DecideRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("DecideRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.DecideRequest(user, requestID, dto)
	if err != nil {
		h.Logger.Error("DecideRequest: service error",
			"error", err,
			"request_id", requestID,
			"actor", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DecideRequest: request decided",
		"request_id", requestID,
		"status", req.Status,
		"superior", user.Email)

	h.WriteJSON(w, http.StatusOK, req)
}
