package notification

import (
	"context"
	"strings"

	"github.com/frahmantamala/request-management/internal"
)

// Message is one outbound mail, sent "from" the acting user's own
// mailbox.
type Message struct {
	From     string
	FromName string
	To       []string
	Subject  string
	Body     string
}

// Credentials binds a short-lived access token to the mailbox it
// authorizes. Derived per send; never cached.
type Credentials struct {
	Email       string
	AccessToken string
}

// Mailer is the transport contract. Implementations report transport
// failures as-is; the service layer classifies them as DeliveryFailed.
type Mailer interface {
	Send(ctx context.Context, creds Credentials, msg *Message) error
}

// NotifyDTO is the POST /notify payload.
type NotifyDTO struct {
	Type       string   `json:"type"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Content    string   `json:"content"`
}

func (dto NotifyDTO) Validate() error {
	if len(dto.Recipients) == 0 {
		return internal.NewValidationFieldError("recipients", "at least one recipient is required", internal.ErrCodeValidationFailed)
	}
	for _, recipient := range dto.Recipients {
		if strings.TrimSpace(recipient) == "" {
			return internal.NewValidationFieldError("recipients", "recipients must not be empty", internal.ErrCodeValidationFailed)
		}
	}
	if strings.TrimSpace(dto.Subject) == "" {
		return internal.NewValidationFieldError("subject", "subject is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
