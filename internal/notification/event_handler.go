package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/request-management/internal/core/events"
)

// EventHandler turns workflow lifecycle events into emails. Handlers run
// on the bus's goroutines, after the workflow write has committed; a
// failed delivery is logged by the bus and never reaches the workflow.
type EventHandler struct {
	notifier ServiceAPI
	logger   *slog.Logger
}

func NewEventHandler(notifier ServiceAPI, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// HandleRequestCreated mails the superior from the requestor's mailbox.
func (h *EventHandler) HandleRequestCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.RequestCreatedEvent)
	if !ok {
		h.logger.Error("invalid event type for request created handler", "event_type", event.EventType())
		return fmt.Errorf("expected RequestCreatedEvent, got %T", event)
	}

	subject := fmt.Sprintf("New %s request: %s", created.Category, created.Title)
	body := fmt.Sprintf("%s filed a new %s request awaiting your decision.\r\n\r\nTitle: %s\r\nRequest ID: %s\r\n",
		created.RequestorName, created.Category, created.Title, created.RequestID)

	if err := h.notifier.SendOnBehalf(ctx, created.RequestorEmail, []string{created.SuperiorEmail}, subject, body); err != nil {
		h.logger.Error("failed to notify superior of new request",
			"error", err,
			"request_id", created.RequestID,
			"superior", created.SuperiorEmail)
		return err
	}

	return nil
}

// HandleRequestDecided mails the requestor from the superior's mailbox.
func (h *EventHandler) HandleRequestDecided(ctx context.Context, event events.Event) error {
	decided, ok := event.(*events.RequestDecidedEvent)
	if !ok {
		h.logger.Error("invalid event type for request decided handler", "event_type", event.EventType())
		return fmt.Errorf("expected RequestDecidedEvent, got %T", event)
	}

	subject := fmt.Sprintf("Your request was %s: %s", decided.Status, decided.Title)
	body := fmt.Sprintf("Your request %q has been %s.\r\nRequest ID: %s\r\n",
		decided.Title, decided.Status, decided.RequestID)

	if err := h.notifier.SendOnBehalf(ctx, decided.SuperiorEmail, []string{decided.RequestorEmail}, subject, body); err != nil {
		h.logger.Error("failed to notify requestor of decision",
			"error", err,
			"request_id", decided.RequestID,
			"requestor", decided.RequestorEmail)
		return err
	}

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeRequestCreated, h.HandleRequestCreated)
	eventBus.Subscribe(events.EventTypeRequestDecided, h.HandleRequestDecided)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeRequestCreated, events.EventTypeRequestDecided})
}
