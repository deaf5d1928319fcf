package payment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/debtflow/collections/internal/core/events"
)

// ActivityEntry is one line of the collector activity feed, derived from a
// lifecycle event.
type ActivityEntry struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	PaymentID  string    `json:"payment_id"`
	DebtorID   string    `json:"debtor_id"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const activityCapacity = 200

// EventHandler consumes payment lifecycle events and maintains the recent
// activity feed served under /payments/activity. Delivery is at-most-once, so
// the feed is an operational convenience, not an audit record.
type EventHandler struct {
	mu      sync.RWMutex
	entries []ActivityEntry
	logger  *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{
		entries: make([]ActivityEntry, 0, activityCapacity),
		logger:  logger,
	}
}

func (h *EventHandler) HandlePaymentProcessed(ctx context.Context, event events.Event) error {
	processedEvent, ok := event.(*events.PaymentProcessedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment processed handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentProcessedEvent, got %T", event)
	}

	h.record(ActivityEntry{
		EventID:    processedEvent.EventID(),
		EventType:  processedEvent.EventType(),
		PaymentID:  processedEvent.PaymentID,
		DebtorID:   processedEvent.DebtorID,
		Detail:     fmt.Sprintf("charged %d cents, reference %s", processedEvent.AmountCents, processedEvent.ReferenceNumber),
		OccurredAt: processedEvent.OccurredAt(),
	})
	return nil
}

// HandlePaymentDeclined covers both gateway declines and transport failures;
// the event type distinguishes them.
func (h *EventHandler) HandlePaymentDeclined(ctx context.Context, event events.Event) error {
	declinedEvent, ok := event.(*events.PaymentDeclinedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment declined handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentDeclinedEvent, got %T", event)
	}

	if declinedEvent.Transport {
		h.logger.Warn("payment attempt failed in transit, eligible for rerun",
			"payment_id", declinedEvent.PaymentID,
			"debtor_id", declinedEvent.DebtorID)
	}

	h.record(ActivityEntry{
		EventID:    declinedEvent.EventID(),
		EventType:  declinedEvent.EventType(),
		PaymentID:  declinedEvent.PaymentID,
		DebtorID:   declinedEvent.DebtorID,
		Detail:     declinedEvent.DeclineReason,
		OccurredAt: declinedEvent.OccurredAt(),
	})
	return nil
}

func (h *EventHandler) HandlePaymentPosted(ctx context.Context, event events.Event) error {
	postedEvent, ok := event.(*events.PaymentPostedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment posted handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentPostedEvent, got %T", event)
	}

	h.record(ActivityEntry{
		EventID:    postedEvent.EventID(),
		EventType:  postedEvent.EventType(),
		PaymentID:  postedEvent.PaymentID,
		DebtorID:   postedEvent.DebtorID,
		Detail:     fmt.Sprintf("posted %d cents to the debtor account", postedEvent.AmountCents),
		OccurredAt: postedEvent.OccurredAt(),
	})
	return nil
}

func (h *EventHandler) HandlePaymentReversed(ctx context.Context, event events.Event) error {
	reversedEvent, ok := event.(*events.PaymentReversedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment reversed handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentReversedEvent, got %T", event)
	}

	h.record(ActivityEntry{
		EventID:    reversedEvent.EventID(),
		EventType:  reversedEvent.EventType(),
		PaymentID:  reversedEvent.PaymentID,
		DebtorID:   reversedEvent.DebtorID,
		Detail:     reversedEvent.ReversalReason,
		OccurredAt: reversedEvent.OccurredAt(),
	})
	return nil
}

func (h *EventHandler) HandleSeriesCanceled(ctx context.Context, event events.Event) error {
	canceledEvent, ok := event.(*events.PaymentSeriesCanceledEvent)
	if !ok {
		h.logger.Error("invalid event type for series canceled handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentSeriesCanceledEvent, got %T", event)
	}

	h.record(ActivityEntry{
		EventID:    canceledEvent.EventID(),
		EventType:  canceledEvent.EventType(),
		PaymentID:  canceledEvent.PaymentID,
		DebtorID:   canceledEvent.DebtorID,
		Detail:     fmt.Sprintf("cancelled after reversal of %s", canceledEvent.ReversedID),
		OccurredAt: canceledEvent.OccurredAt(),
	})
	return nil
}

// Recent returns up to limit entries, newest first.
func (h *EventHandler) Recent(limit int) []ActivityEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > len(h.entries) {
		limit = len(h.entries)
	}

	recent := make([]ActivityEntry, 0, limit)
	for i := len(h.entries) - 1; i >= len(h.entries)-limit; i-- {
		recent = append(recent, h.entries[i])
	}
	return recent
}

func (h *EventHandler) record(entry ActivityEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	if len(h.entries) > activityCapacity {
		h.entries = h.entries[len(h.entries)-activityCapacity:]
	}

	h.logger.Info("payment activity recorded",
		"event_type", entry.EventType,
		"payment_id", entry.PaymentID,
		"debtor_id", entry.DebtorID,
		"detail", entry.Detail)
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentProcessed, h.HandlePaymentProcessed)
	eventBus.Subscribe(events.EventTypePaymentDeclined, h.HandlePaymentDeclined)
	eventBus.Subscribe(events.EventTypePaymentFailed, h.HandlePaymentDeclined)
	eventBus.Subscribe(events.EventTypePaymentPosted, h.HandlePaymentPosted)
	eventBus.Subscribe(events.EventTypePaymentReversed, h.HandlePaymentReversed)
	eventBus.Subscribe(events.EventTypePaymentSeriesCanceled, h.HandleSeriesCanceled)

	h.logger.Info("payment event handlers registered",
		"handlers", []string{
			events.EventTypePaymentProcessed,
			events.EventTypePaymentDeclined,
			events.EventTypePaymentFailed,
			events.EventTypePaymentPosted,
			events.EventTypePaymentReversed,
			events.EventTypePaymentSeriesCanceled,
		})
}
