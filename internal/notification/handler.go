package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/request-management/internal/auth"
	"github.com/frahmantamala/request-management/internal/transport"
	"github.com/frahmantamala/request-management/pkg/logger"
)

type ServiceAPI interface {
	SendOnBehalf(ctx context.Context, actingEmail string, recipients []string, subject, body string) error
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

// Notify sends a message on behalf of the authenticated caller. The
// acting mailbox always comes from the verified identity, not from the
// payload.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("Notify: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto NotifyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Notify: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.Logger.Error("Notify: validation error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.SendOnBehalf(r.Context(), user.Email, dto.Recipients, dto.Subject, dto.Content); err != nil {
		h.Logger.Error("Notify: service error", "error", err, "email", user.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
