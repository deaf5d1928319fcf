package payment_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/debtflow/collections/internal/core/events"
	"github.com/debtflow/collections/internal/payment"
)

var _ = Describe("Payment EventHandler", func() {
	var (
		eventBus *events.EventBus
		handler  *payment.EventHandler
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus = events.NewEventBus(logger)
		handler = payment.NewEventHandler(logger)
		handler.RegisterEventHandlers(eventBus)
	})

	It("records activity for every lifecycle event type", func() {
		ctx := context.Background()

		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentProcessedEvent("pay-1", "debtor-1", 12550, "REF-001"))).To(Succeed())
		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentDeclinedEvent("pay-2", "debtor-1", "insufficient_funds", false))).To(Succeed())
		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentDeclinedEvent("pay-3", "debtor-2", "gateway timeout", true))).To(Succeed())
		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentPostedEvent("pay-1", "debtor-1", 12550))).To(Succeed())
		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentReversedEvent("pay-1", "debtor-1", "debtor disputed the charge", 1))).To(Succeed())
		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentSeriesCanceledEvent("pay-4", "debtor-1", "series-1", "pay-1"))).To(Succeed())

		entries := handler.Recent(10)
		Expect(entries).To(HaveLen(6))

		types := make([]string, 0, len(entries))
		for _, entry := range entries {
			types = append(types, entry.EventType)
		}
		Expect(types).To(ConsistOf(
			events.EventTypePaymentProcessed,
			events.EventTypePaymentDeclined,
			events.EventTypePaymentFailed,
			events.EventTypePaymentPosted,
			events.EventTypePaymentReversed,
			events.EventTypePaymentSeriesCanceled,
		))
	})

	It("returns entries newest first and honors the limit", func() {
		ctx := context.Background()
		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentPostedEvent("pay-1", "debtor-1", 100))).To(Succeed())
		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentPostedEvent("pay-2", "debtor-1", 200))).To(Succeed())
		Expect(eventBus.PublishSync(ctx,
			events.NewPaymentPostedEvent("pay-3", "debtor-1", 300))).To(Succeed())

		entries := handler.Recent(2)
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].PaymentID).To(Equal("pay-3"))
		Expect(entries[1].PaymentID).To(Equal("pay-2"))
	})

	It("rejects events of the wrong concrete type", func() {
		err := handler.HandlePaymentProcessed(context.Background(),
			events.NewPaymentPostedEvent("pay-1", "debtor-1", 100))
		Expect(err).To(HaveOccurred())
	})
})
