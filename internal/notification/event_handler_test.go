package notification_test

import (
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/request-management/internal/core/events"
	"github.com/frahmantamala/request-management/internal/notification"
)

type mockNotifier struct {
	calls []notifierCall
	err   error
}

type notifierCall struct {
	actingEmail string
	recipients  []string
	subject     string
}

func (m *mockNotifier) SendOnBehalf(ctx context.Context, actingEmail string, recipients []string, subject, body string) error {
	m.calls = append(m.calls, notifierCall{actingEmail: actingEmail, recipients: recipients, subject: subject})
	return m.err
}

var _ = Describe("NotificationEventHandler", func() {
	var (
		handler  *notification.EventHandler
		notifier *mockNotifier
		bus      *events.EventBus
	)

	BeforeEach(func() {
		notifier = &mockNotifier{}
		handler = notification.NewEventHandler(notifier, slog.Default())
		bus = events.NewEventBus(slog.Default())
		handler.RegisterEventHandlers(bus)
	})

	Describe("HandleRequestCreated", func() {
		It("should mail the superior from the requestor's mailbox", func() {
			event := events.NewRequestCreatedEvent("req-1", "Annual leave next week", "Leave",
				"fadhil@mail.com", "Fadhil", "padil@mail.com")

			err := bus.PublishSync(context.Background(), event)

			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.calls).To(HaveLen(1))
			Expect(notifier.calls[0].actingEmail).To(Equal("fadhil@mail.com"))
			Expect(notifier.calls[0].recipients).To(Equal([]string{"padil@mail.com"}))
			Expect(notifier.calls[0].subject).To(ContainSubstring("Annual leave next week"))
		})

		It("should reject an event of the wrong type", func() {
			err := handler.HandleRequestCreated(context.Background(),
				events.NewRequestDecidedEvent("req-1", "t", "approved", "a@mail.com", "b@mail.com"))

			Expect(err).To(HaveOccurred())
			Expect(notifier.calls).To(BeEmpty())
		})
	})

	Describe("HandleRequestDecided", func() {
		It("should mail the requestor from the superior's mailbox", func() {
			event := events.NewRequestDecidedEvent("req-1", "Annual leave next week", "approved",
				"fadhil@mail.com", "padil@mail.com")

			err := bus.PublishSync(context.Background(), event)

			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.calls).To(HaveLen(1))
			Expect(notifier.calls[0].actingEmail).To(Equal("padil@mail.com"))
			Expect(notifier.calls[0].recipients).To(Equal([]string{"fadhil@mail.com"}))
			Expect(notifier.calls[0].subject).To(ContainSubstring("approved"))
		})
	})

	Describe("delivery failures", func() {
		It("should surface the notifier error to the bus", func() {
			notifier.err = errors.New("smtp: connection refused")
			event := events.NewRequestCreatedEvent("req-1", "t", "Leave",
				"fadhil@mail.com", "Fadhil", "padil@mail.com")

			err := bus.PublishSync(context.Background(), event)

			Expect(err).To(HaveOccurred())
		})
	})
})
