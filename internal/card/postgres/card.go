package postgres

import (
	"gorm.io/gorm"

	cardpkg "github.com/debtflow/collections/internal/card"
	cardDatamodel "github.com/debtflow/collections/internal/core/datamodel/card"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) cardpkg.RepositoryAPI {
	return &CardRepository{
		db: db,
	}
}

func (r *CardRepository) Create(c *cardDatamodel.StoredCard) error {
	return r.db.Create(c).Error
}

func (r *CardRepository) GetByID(id string) (*cardDatamodel.StoredCard, error) {
	var c cardDatamodel.StoredCard
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CardRepository) GetByDebtorID(debtorID string) ([]*cardDatamodel.StoredCard, error) {
	var cards []*cardDatamodel.StoredCard
	err := r.db.Where("debtor_id = ?", debtorID).Order("created_at DESC").Find(&cards).Error
	return cards, err
}
