package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/request-management/internal"
	"github.com/frahmantamala/request-management/internal/auth"
)

// Service is the notifier: credential store lookup, refresh exchange,
// dispatch. Stateless per call; every send re-derives its own access
// token.
type Service struct {
	identities  auth.IdentityRepository
	delegate    DelegateAPI
	mailer      Mailer
	sendTimeout time.Duration
	logger      *slog.Logger
}

func NewService(identities auth.IdentityRepository, delegate DelegateAPI, mailer Mailer, sendTimeout time.Duration, logger *slog.Logger) *Service {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &Service{
		identities:  identities,
		delegate:    delegate,
		mailer:      mailer,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// SendOnBehalf delivers a message from the acting user's own mailbox.
// Failure classes matter to the caller: IdentityNotFound means we never
// saw this user consent, DelegationRevoked means they must re-consent,
// UpstreamUnavailable is retryable, DeliveryFailed is a transport fault
// after a successful exchange.
func (s *Service) SendOnBehalf(ctx context.Context, actingEmail string, recipients []string, subject, body string) error {
	identity, err := s.identities.GetByEmail(actingEmail)
	if err != nil {
		s.logger.Error("notifier: identity lookup failed", "error", err, "email", actingEmail)
		return err
	}

	token, err := s.delegate.AccessTokenFor(identity.RefreshToken)
	if err != nil {
		s.logger.Error("notifier: delegated exchange failed", "error", err, "email", actingEmail)
		return err
	}

	msg := &Message{
		From:     identity.Email,
		FromName: identity.Name,
		To:       recipients,
		Subject:  subject,
		Body:     body,
	}

	sendCtx, cancel := internal.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	creds := Credentials{Email: identity.Email, AccessToken: token.AccessToken}
	if err := s.mailer.Send(sendCtx, creds, msg); err != nil {
		s.logger.Error("notifier: delivery failed",
			"error", err,
			"from", actingEmail,
			"recipients", len(recipients))
		return internal.NewExternalError("mail delivery failed", internal.ErrCodeDeliveryFailed, err)
	}

	s.logger.Info("notification sent",
		"from", actingEmail,
		"recipients", len(recipients),
		"subject", subject)

	return nil
}
