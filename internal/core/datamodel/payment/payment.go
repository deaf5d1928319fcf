package payment

import (
	"encoding/json"
	"time"
)

// PaymentRecord is one money-movement attempt. Terminal records are never
// deleted; remittance reporting reads them back by scheduled date.
type PaymentRecord struct {
	ID                     string          `gorm:"primaryKey"`
	DebtorID               string          `gorm:"column:debtor_id;not null;index"`
	ProcessedByCollectorID string          `gorm:"column:processed_by_collector_id;not null"`
	AmountCents            int64           `gorm:"column:amount_cents;not null"`
	Method                 string          `gorm:"column:method;not null"`
	CardID                 *string         `gorm:"column:card_id"`
	Frequency              string          `gorm:"column:frequency;not null"`
	ScheduledDate          time.Time       `gorm:"column:scheduled_date;not null;index"`
	SeriesID               *string         `gorm:"column:series_id;index"`
	Status                 string          `gorm:"column:status;default:pending;index"`
	ReferenceNumber        *string         `gorm:"column:reference_number"`
	DeclineReason          *string         `gorm:"column:decline_reason"`
	ReversalReason         *string         `gorm:"column:reversal_reason"`
	CancelReason           *string         `gorm:"column:cancel_reason"`
	NextPaymentDate        *time.Time      `gorm:"column:next_payment_date"`
	NeedsReview            bool            `gorm:"column:needs_review;default:false"`
	GatewayResponse        json.RawMessage `gorm:"column:gateway_response;type:jsonb"`
	ProcessedAt            *time.Time      `gorm:"column:processed_at"`
	PostedAt               *time.Time      `gorm:"column:posted_at"`
	CreatedAt              time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt              time.Time       `gorm:"column:updated_at;default:now()"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}
