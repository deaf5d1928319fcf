package payment

import (
	"encoding/json"
	"time"

	paymentDatamodel "github.com/debtflow/collections/internal/core/datamodel/payment"
)

const (
	MethodACH   = "ach"
	MethodCard  = "card"
	MethodCheck = "check"
)

// Statuses for a payment record. A record is created pending, moves through
// exactly one settlement attempt at a time, and ends in a terminal state that
// is retained for audit and remittance.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusDeclined  = "declined"
	StatusFailed    = "failed"
	StatusPosted    = "posted"
	StatusReversed  = "reversed"
	StatusCancelled = "cancelled"
)

const transportFailureReason = "payment gateway unreachable, attempt can be rerun"

type Payment struct {
	ID                     string          `json:"id"`
	DebtorID               string          `json:"debtor_id"`
	ProcessedByCollectorID string          `json:"processed_by_collector_id"`
	AmountCents            int64           `json:"amount_cents"`
	Method                 string          `json:"method"`
	CardID                 *string         `json:"card_id,omitempty"`
	Frequency              string          `json:"frequency"`
	ScheduledDate          time.Time       `json:"scheduled_date"`
	SeriesID               *string         `json:"series_id,omitempty"`
	Status                 string          `json:"status"`
	ReferenceNumber        *string         `json:"reference_number,omitempty"`
	DeclineReason          *string         `json:"decline_reason,omitempty"`
	ReversalReason         *string         `json:"reversal_reason,omitempty"`
	CancelReason           *string         `json:"cancel_reason,omitempty"`
	NextPaymentDate        *time.Time      `json:"next_payment_date,omitempty"`
	NeedsReview            bool            `json:"needs_review"`
	GatewayResponse        json.RawMessage `json:"-"`
	ProcessedAt            *time.Time      `json:"processed_at,omitempty"`
	PostedAt               *time.Time      `json:"posted_at,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func (p *Payment) CanSubmit() bool {
	return p.Status == StatusPending
}

func (p *Payment) CanRerun() bool {
	return p.Status == StatusDeclined || p.Status == StatusFailed
}

func (p *Payment) CanPost() bool {
	return p.Status == StatusProcessed
}

func (p *Payment) CanReverse() bool {
	return p.Status == StatusProcessed || p.Status == StatusPosted
}

// IsSeriesTerminal reports whether this occurrence has reached a state from
// which the series either advances (posted) or stops (reversed, cancelled).
func (p *Payment) IsSeriesTerminal() bool {
	return p.Status == StatusPosted || p.Status == StatusReversed || p.Status == StatusCancelled
}

func (p *Payment) MarkProcessed(referenceNumber string, gatewayResponse json.RawMessage) {
	now := time.Now().UTC()
	p.Status = StatusProcessed
	p.ReferenceNumber = &referenceNumber
	p.DeclineReason = nil
	p.GatewayResponse = gatewayResponse
	p.ProcessedAt = &now
	p.UpdatedAt = now
}

func (p *Payment) MarkDeclined(reason string, gatewayResponse json.RawMessage) {
	now := time.Now().UTC()
	p.Status = StatusDeclined
	p.DeclineReason = &reason
	p.GatewayResponse = gatewayResponse
	p.UpdatedAt = now
}

// MarkTransportFailed records a gateway/transport failure. The attempt stays
// distinguishable from a business decline so rerun can target it.
func (p *Payment) MarkTransportFailed() {
	now := time.Now().UTC()
	reason := transportFailureReason
	p.Status = StatusFailed
	p.DeclineReason = &reason
	p.UpdatedAt = now
}

// MarkPosted is the irreversible money-recognized boundary. Posting an
// already-posted record is a no-op, not an error.
func (p *Payment) MarkPosted() {
	if p.Status == StatusPosted {
		return
	}
	now := time.Now().UTC()
	p.Status = StatusPosted
	p.PostedAt = &now
	p.UpdatedAt = now
}

func (p *Payment) MarkReversed(reason string) {
	now := time.Now().UTC()
	p.Status = StatusReversed
	p.ReversalReason = &reason
	// a reversed occurrence must not spawn further installments
	p.NextPaymentDate = nil
	p.UpdatedAt = now
}

func (p *Payment) MarkCancelled(reason string) {
	now := time.Now().UTC()
	p.Status = StatusCancelled
	p.CancelReason = &reason
	p.NextPaymentDate = nil
	p.UpdatedAt = now
}

// ResetForRerun puts a declined or failed record back on the submit path,
// mutating the same record id rather than forking a new attempt.
func (p *Payment) ResetForRerun() {
	now := time.Now().UTC()
	p.Status = StatusPending
	p.ReferenceNumber = nil
	p.DeclineReason = nil
	p.GatewayResponse = nil
	p.ProcessedAt = nil
	p.UpdatedAt = now
}

func ValidMethod(m string) bool {
	switch m {
	case MethodACH, MethodCard, MethodCheck:
		return true
	default:
		return false
	}
}

func ToDataModel(p *Payment) *paymentDatamodel.PaymentRecord {
	return &paymentDatamodel.PaymentRecord{
		ID:                     p.ID,
		DebtorID:               p.DebtorID,
		ProcessedByCollectorID: p.ProcessedByCollectorID,
		AmountCents:            p.AmountCents,
		Method:                 p.Method,
		CardID:                 p.CardID,
		Frequency:              p.Frequency,
		ScheduledDate:          p.ScheduledDate,
		SeriesID:               p.SeriesID,
		Status:                 p.Status,
		ReferenceNumber:        p.ReferenceNumber,
		DeclineReason:          p.DeclineReason,
		ReversalReason:         p.ReversalReason,
		CancelReason:           p.CancelReason,
		NextPaymentDate:        p.NextPaymentDate,
		NeedsReview:            p.NeedsReview,
		GatewayResponse:        p.GatewayResponse,
		ProcessedAt:            p.ProcessedAt,
		PostedAt:               p.PostedAt,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

func FromDataModel(r *paymentDatamodel.PaymentRecord) *Payment {
	return &Payment{
		ID:                     r.ID,
		DebtorID:               r.DebtorID,
		ProcessedByCollectorID: r.ProcessedByCollectorID,
		AmountCents:            r.AmountCents,
		Method:                 r.Method,
		CardID:                 r.CardID,
		Frequency:              r.Frequency,
		ScheduledDate:          r.ScheduledDate,
		SeriesID:               r.SeriesID,
		Status:                 r.Status,
		ReferenceNumber:        r.ReferenceNumber,
		DeclineReason:          r.DeclineReason,
		ReversalReason:         r.ReversalReason,
		CancelReason:           r.CancelReason,
		NextPaymentDate:        r.NextPaymentDate,
		NeedsReview:            r.NeedsReview,
		GatewayResponse:        r.GatewayResponse,
		ProcessedAt:            r.ProcessedAt,
		PostedAt:               r.PostedAt,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}
