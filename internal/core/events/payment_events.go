package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentProcessed      = "payment.processed"
	EventTypePaymentDeclined       = "payment.declined"
	EventTypePaymentFailed         = "payment.failed"
	EventTypePaymentPosted         = "payment.posted"
	EventTypePaymentReversed       = "payment.reversed"
	EventTypePaymentSeriesCanceled = "payment.series_canceled"
)

type PaymentProcessedEvent struct {
	BaseEvent
	PaymentID       string `json:"payment_id"`
	DebtorID        string `json:"debtor_id"`
	AmountCents     int64  `json:"amount_cents"`
	ReferenceNumber string `json:"reference_number"`
}

func NewPaymentProcessedEvent(paymentID, debtorID string, amountCents int64, referenceNumber string) *PaymentProcessedEvent {
	return &PaymentProcessedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentProcessed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":       paymentID,
				"debtor_id":        debtorID,
				"amount_cents":     amountCents,
				"reference_number": referenceNumber,
			},
		},
		PaymentID:       paymentID,
		DebtorID:        debtorID,
		AmountCents:     amountCents,
		ReferenceNumber: referenceNumber,
	}
}

type PaymentDeclinedEvent struct {
	BaseEvent
	PaymentID     string `json:"payment_id"`
	DebtorID      string `json:"debtor_id"`
	DeclineReason string `json:"decline_reason"`
	Transport     bool   `json:"transport"`
}

// NewPaymentDeclinedEvent covers both gateway declines and transport
// failures; transport=true means the attempt is retryable via rerun.
func NewPaymentDeclinedEvent(paymentID, debtorID, declineReason string, transport bool) *PaymentDeclinedEvent {
	eventType := EventTypePaymentDeclined
	if transport {
		eventType = EventTypePaymentFailed
	}
	return &PaymentDeclinedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"debtor_id":      debtorID,
				"decline_reason": declineReason,
				"transport":      transport,
			},
		},
		PaymentID:     paymentID,
		DebtorID:      debtorID,
		DeclineReason: declineReason,
		Transport:     transport,
	}
}

type PaymentPostedEvent struct {
	BaseEvent
	PaymentID   string `json:"payment_id"`
	DebtorID    string `json:"debtor_id"`
	AmountCents int64  `json:"amount_cents"`
}

func NewPaymentPostedEvent(paymentID, debtorID string, amountCents int64) *PaymentPostedEvent {
	return &PaymentPostedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentPosted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":   paymentID,
				"debtor_id":    debtorID,
				"amount_cents": amountCents,
			},
		},
		PaymentID:   paymentID,
		DebtorID:    debtorID,
		AmountCents: amountCents,
	}
}

type PaymentReversedEvent struct {
	BaseEvent
	PaymentID      string `json:"payment_id"`
	DebtorID       string `json:"debtor_id"`
	ReversalReason string `json:"reversal_reason"`
	CanceledCount  int    `json:"canceled_count"`
}

type PaymentSeriesCanceledEvent struct {
	BaseEvent
	PaymentID  string `json:"payment_id"`
	DebtorID   string `json:"debtor_id"`
	SeriesID   string `json:"series_id"`
	ReversedID string `json:"reversed_id"`
}

// NewPaymentSeriesCanceledEvent is published once per sibling cancelled by a
// reversal cascade; ReversedID names the reversal that triggered it.
func NewPaymentSeriesCanceledEvent(paymentID, debtorID, seriesID, reversedID string) *PaymentSeriesCanceledEvent {
	return &PaymentSeriesCanceledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentSeriesCanceled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":  paymentID,
				"debtor_id":   debtorID,
				"series_id":   seriesID,
				"reversed_id": reversedID,
			},
		},
		PaymentID:  paymentID,
		DebtorID:   debtorID,
		SeriesID:   seriesID,
		ReversedID: reversedID,
	}
}

func NewPaymentReversedEvent(paymentID, debtorID, reversalReason string, canceledCount int) *PaymentReversedEvent {
	return &PaymentReversedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentReversed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":      paymentID,
				"debtor_id":       debtorID,
				"reversal_reason": reversalReason,
				"canceled_count":  canceledCount,
			},
		},
		PaymentID:      paymentID,
		DebtorID:       debtorID,
		ReversalReason: reversalReason,
		CanceledCount:  canceledCount,
	}
}
