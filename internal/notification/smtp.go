package notification

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// xoauth2Auth implements the SASL XOAUTH2 mechanism: a single base64
// blob of "user=<addr>\x01auth=Bearer <token>\x01\x01". Gmail accepts it
// over STARTTLS on port 587.
type xoauth2Auth struct {
	user  string
	token string
}

func (a *xoauth2Auth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("xoauth2 requires a TLS connection")
	}
	resp := []byte("user=" + a.user + "\x01auth=Bearer " + a.token + "\x01\x01")
	return "XOAUTH2", resp, nil
}

func (a *xoauth2Auth) Next(fromServer []byte, more bool) ([]byte, error) {
	// On failure the server sends a JSON challenge; an empty reply makes
	// it return the final SMTP error.
	if more {
		return []byte{}, nil
	}
	return nil, nil
}

// SMTPMailer dispatches mail over SMTP with STARTTLS and XOAUTH2,
// authenticating as the acting user with their short-lived access token.
type SMTPMailer struct {
	host    string
	port    int
	timeout time.Duration
	logger  *slog.Logger
}

func NewSMTPMailer(host string, port int, timeout time.Duration, logger *slog.Logger) *SMTPMailer {
	if host == "" {
		host = "smtp.gmail.com"
	}
	if port <= 0 {
		port = 587
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMTPMailer{
		host:    host,
		port:    port,
		timeout: timeout,
		logger:  logger,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, creds Credentials, msg *Message) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}

	// one deadline for the whole SMTP conversation
	deadline := time.Now().Add(m.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("smtp set deadline failed: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
		return fmt.Errorf("smtp starttls failed: %w", err)
	}

	if err := client.Auth(&xoauth2Auth{user: creds.Email, token: creds.AccessToken}); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	for _, recipient := range msg.To {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("smtp rcpt to %s failed: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err := writer.Write(buildRFC822(msg)); err != nil {
		writer.Close()
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp message rejected: %w", err)
	}

	if err := client.Quit(); err != nil {
		// delivery already accepted; a failed QUIT is not a send failure
		m.logger.Debug("smtp quit failed", "error", err)
	}

	return nil
}

func buildRFC822(msg *Message) []byte {
	var b strings.Builder

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	return []byte(b.String())
}
