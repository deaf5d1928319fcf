package gateway

import "context"

type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeDeclined Outcome = "declined"
	OutcomeError    Outcome = "error"
)

// ChargeRequest carries everything the processor needs for one settlement
// attempt. Card details travel as stored-card metadata, never a PAN.
type ChargeRequest struct {
	PaymentID   string            `json:"payment_id"`
	AmountCents int64             `json:"amount_cents"`
	Method      string            `json:"method"`
	CardID      string            `json:"card_id,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

type ChargeResult struct {
	Outcome         Outcome `json:"outcome"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

// Gateway is the external settlement collaborator. Which processor answers
// (NMI, USAePay, Authorize.net) is resolved by merchant configuration behind
// the base URL; this service is processor-agnostic.
//
// A non-nil error means transport failure: nothing is known about the charge
// and the caller must record a retryable failed attempt. Business declines
// come back as OutcomeDeclined with a nil error.
type Gateway interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
}
