package notification

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/frahmantamala/request-management/internal"
)

// DelegateAPI exchanges a stored refresh grant for a short-lived access
// token. Each call derives a fresh token; the provider owns the token
// lifetime, so nothing is cached here.
type DelegateAPI interface {
	AccessTokenFor(refreshGrant string) (*oauth2.Token, error)
}

// OAuthDelegate talks to the provider's token endpoint using the same
// client registration the login flow consented under.
type OAuthDelegate struct {
	cfg     *oauth2.Config
	timeout time.Duration
	logger  *slog.Logger
}

func NewOAuthDelegate(cfg *oauth2.Config, timeout time.Duration, logger *slog.Logger) *OAuthDelegate {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OAuthDelegate{
		cfg:     cfg,
		timeout: timeout,
		logger:  logger,
	}
}

// AccessTokenFor runs the refresh exchange under its own deadline,
// independent of whatever request context triggered the send. A provider
// rejection of the grant means the user revoked consent and must log in
// again; everything else is a retryable upstream fault.
func (d *OAuthDelegate) AccessTokenFor(refreshGrant string) (*oauth2.Token, error) {
	if refreshGrant == "" {
		return nil, internal.ErrDelegationRevoked
	}

	ctx, cancel := internal.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	source := d.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshGrant})
	token, err := source.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode >= http.StatusBadRequest &&
			retrieveErr.Response.StatusCode < http.StatusInternalServerError {
			d.logger.Warn("refresh grant rejected by provider",
				"status", retrieveErr.Response.StatusCode,
				"oauth_error", retrieveErr.ErrorCode)
			return nil, internal.ErrDelegationRevoked
		}

		d.logger.Error("token endpoint unreachable", "error", err)
		return nil, internal.NewExternalError("token exchange failed", internal.ErrCodeUpstreamUnavailable, err)
	}

	return token, nil
}
