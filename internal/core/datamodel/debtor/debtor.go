package debtor

import "time"

type Debtor struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	ClientID    *string   `gorm:"column:client_id;index"`
	PortfolioID *string   `gorm:"column:portfolio_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Debtor) TableName() string {
	return "debtors"
}

// Client is the originating creditor that remittance reconciles against.
type Client struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Client) TableName() string {
	return "clients"
}

type Portfolio struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	ClientID  *string   `gorm:"column:client_id;index"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}
