package card

import "time"

// StoredCard keeps only what the UI and gateway need after identification.
// The raw PAN is never persisted.
type StoredCard struct {
	ID          string    `gorm:"primaryKey"`
	DebtorID    string    `gorm:"column:debtor_id;not null;index"`
	Brand       string    `gorm:"column:brand;not null"`
	Last4       string    `gorm:"column:last4;not null"`
	ExpiryMonth int       `gorm:"column:expiry_month;not null"`
	ExpiryYear  int       `gorm:"column:expiry_year;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (StoredCard) TableName() string {
	return "stored_cards"
}
