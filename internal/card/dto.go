package card

import (
	"github.com/debtflow/collections/internal/core/common/validation"
)

// IdentifyRequest is the live-typing identification payload. The number is
// identified and discarded, never logged or persisted.
type IdentifyRequest struct {
	CardNumber string `json:"card_number"`
}

func (r *IdentifyRequest) Validate() error {
	validator := validation.NewValidator()
	validator.Field("card_number", r.CardNumber).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type IdentifyResponse struct {
	Brand     string `json:"brand"`
	CardType  string `json:"card_type"`
	IsValid   bool   `json:"is_valid"`
	Category  string `json:"category"`
	Formatted string `json:"formatted"`
}

type CreateStoredCardRequest struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
}

func (r *CreateStoredCardRequest) Validate() error {
	validator := validation.NewValidator()
	validator.Field("card_number", r.CardNumber).Required()
	validator.Field("expiry", r.Expiry).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type StoredCardResponse struct {
	ID          string `json:"id"`
	DebtorID    string `json:"debtor_id"`
	Brand       string `json:"brand"`
	Last4       string `json:"last4"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
}
