package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/request-management/internal"
	"github.com/frahmantamala/request-management/internal/transport"
	"github.com/frahmantamala/request-management/pkg/logger"
)

const stateCookieName = "oauth_state"

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	FrontendURL string
}

func NewHandler(svc ServiceAPI, frontendURL string) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		FrontendURL: frontendURL,
	}
}

// GoogleLogin starts the consent flow. The state nonce goes into a
// short-lived cookie so the callback can reject forged redirects without
// any server-side session.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.Service.LoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback finishes the flow and hands the bearer token to the
// client as a query parameter on the dashboard redirect. This is the one
// place the token travels in a URL.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		h.Logger.Error("oauth callback: state mismatch")
		h.WriteError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	// consume the state cookie
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Logger.Error("oauth callback: missing authorization code")
		h.WriteError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	bearer, err := h.Service.HandleCallback(r.Context(), code)
	if err != nil {
		h.Logger.Error("oauth callback failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("%s/dashboard?token=%s", h.FrontendURL, bearer), http.StatusTemporaryRedirect)
}

// GetUser returns the identity resolved by the gate. No store lookup: the
// token is the source of truth for the whole of its lifetime.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, user)
}

// AuthMiddleware is the identity gate applied to every protected route:
// extract bearer, verify signature and expiry locally, attach the identity
// to the context. Missing token is 401; a token that fails verification is
// 403. The invalid token itself is never echoed back.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("identity gate: missing authorization token", "path", r.URL.Path)
			h.WriteAppError(w, internal.ErrTokenMissing)
			return
		}

		claims, err := h.Service.VerifyToken(token)
		if err != nil {
			h.Logger.Warn("identity gate: token rejected", "path", r.URL.Path, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		user := &User{
			ID:    claims.Subject,
			Email: claims.Email,
			Name:  claims.Name,
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = internal.ContextWithEmail(ctx, user.Email)
		ctx = logger.With(ctx, "email", user.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
