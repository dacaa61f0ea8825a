package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/request-management/internal"
)

// JWTCodec is the HS256 implementation of TokenCodec. Signature and expiry
// checks only; verification never touches the network or the store.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTCodec(secret string, ttl time.Duration) *JWTCodec {
	return &JWTCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue mints a token carrying the identity and both delegated
// credentials. The access token is a snapshot and may expire well before
// the bearer token does; holders re-derive it from the refresh grant.
func (c *JWTCodec) Issue(identity *Identity, accessToken string) (string, error) {
	now := time.Now()

	claims := &Claims{
		Email:        identity.Email,
		Name:         identity.Name,
		AccessToken:  accessToken,
		RefreshToken: identity.RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (c *JWTCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}

type ServiceAPI interface {
	LoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (string, error)
	VerifyToken(tokenString string) (*Claims, error)
}

// Service owns the consent round trip: exchange the authorization code,
// upsert the credential store, mint the bearer token.
type Service struct {
	repo     IdentityRepository
	codec    TokenCodec
	provider ConsentProvider
	logger   *slog.Logger
}

func NewService(repo IdentityRepository, codec TokenCodec, provider ConsentProvider, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		codec:    codec,
		provider: provider,
		logger:   logger,
	}
}

func (s *Service) LoginURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// HandleCallback completes the consent flow and returns the signed bearer
// token handed to the client on the post-login redirect.
func (s *Service) HandleCallback(ctx context.Context, code string) (string, error) {
	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("oauth code exchange failed", "error", err)
		return "", internal.NewExternalError("authorization code exchange failed", internal.ErrCodeUpstreamUnavailable, err)
	}

	profile, err := s.provider.FetchProfile(ctx, token)
	if err != nil {
		s.logger.Error("failed to fetch user profile", "error", err)
		return "", internal.NewExternalError("could not fetch user profile", internal.ErrCodeUpstreamUnavailable, err)
	}

	identity := &Identity{
		Subject:      profile.Subject,
		Email:        profile.Email,
		Name:         profile.Name,
		RefreshToken: token.RefreshToken,
	}

	// Forced consent means Google normally sends a fresh refresh grant;
	// if it didn't, keep the one already on file rather than wiping it.
	if identity.RefreshToken == "" {
		if stored, err := s.repo.GetByEmail(profile.Email); err == nil {
			identity.RefreshToken = stored.RefreshToken
		}
	}

	if err := s.repo.Upsert(identity); err != nil {
		s.logger.Error("failed to upsert identity", "error", err, "email", profile.Email)
		return "", internal.NewInternalError("failed to persist identity", err)
	}

	bearer, err := s.codec.Issue(identity, token.AccessToken)
	if err != nil {
		s.logger.Error("failed to issue bearer token", "error", err, "email", profile.Email)
		return "", internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("identity logged in",
		"email", profile.Email,
		"name", profile.Name,
		"grant_rotated", token.RefreshToken != "")

	return bearer, nil
}

func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	return s.codec.Verify(tokenString)
}
