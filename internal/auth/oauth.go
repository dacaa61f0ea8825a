package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/frahmantamala/request-management/internal"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the subset of the provider's userinfo response we keep.
type Profile struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// ConsentProvider abstracts the OAuth provider for the login flow: build
// the consent URL, swap the authorization code, fetch the profile.
type ConsentProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// GoogleProvider implements ConsentProvider against Google. The mail scope
// is requested up front so the refresh grant stored at login can later be
// exchanged for send-mail credentials without another consent round.
type GoogleProvider struct {
	cfg *oauth2.Config
}

func NewGoogleProvider(cfg internal.OAuthConfig) *GoogleProvider {
	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://mail.google.com/",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthCodeURL forces the consent prompt; Google only returns a refresh
// token on a consented offline grant, and we rotate the stored grant on
// every login.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.cfg.Exchange(ctx, code)
}

func (p *GoogleProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := p.cfg.Client(ctx, token)

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	if profile.Email == "" {
		return nil, fmt.Errorf("userinfo response missing email")
	}

	return &profile, nil
}

// TokenConfig exposes the underlying oauth2 config so the notifier's
// delegate can reuse the same client registration for refresh exchanges.
func (p *GoogleProvider) TokenConfig() *oauth2.Config {
	return p.cfg
}
